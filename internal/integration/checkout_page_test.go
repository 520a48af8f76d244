package integration_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/metinatakli/storefront/internal/domain"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CheckoutPageTestSuite struct {
	BaseSuite
}

func TestCheckoutPageSuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(CheckoutPageTestSuite))
}

func readBody(t testing.TB, res *http.Response) string {
	t.Helper()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return string(raw)
}

func (s *CheckoutPageTestSuite) TestCheckoutPage() {
	cookies := guestCookies(s.T(), s.server.URL)
	basketID := cookies[0].Value

	scenarios := []Scenario{
		{
			Name:           "renders the empty basket state",
			Method:         http.MethodGet,
			URL:            "/checkout",
			Cookies:        cookies,
			ExpectedStatus: http.StatusOK,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				body := readBody(t, res)
				require.Contains(t, body, "Tu bolsa de compra está vacía.")
				require.Contains(t, body, "Continuar Comprando")
			},
		},
		{
			Name:           "sends a submit with an empty basket back to the page",
			Method:         http.MethodPost,
			URL:            "/checkout",
			Cookies:        cookies,
			ExpectedStatus: http.StatusSeeOther,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				require.Equal(t, "/checkout", res.Header.Get("Location"))
				require.Empty(t, app.PaymentProvider.Requests())
			},
		},
		{
			Name:           "renders grouped items with totals",
			Method:         http.MethodGet,
			URL:            "/checkout",
			Cookies:        cookies,
			ExpectedStatus: http.StatusOK,
			BeforeTestFunc: func(t testing.TB, app *TestApp) {
				addToBasket(t, app, cookies, TestProductCamiseta, 1)
				addToBasket(t, app, cookies, TestProductGorra, 1)
				addToBasket(t, app, cookies, TestProductCamiseta, 1)
			},
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				body := readBody(t, res)
				require.Contains(t, body, "Revisa tu bolsa de compra.")
				require.Contains(t, body, "Camiseta básica")
				require.Contains(t, body, "2 x €19.99")
				require.Contains(t, body, "€52.48")
				require.Contains(t, body, "GRATIS")
			},
		},
		{
			Name:           "hands the visitor off to the hosted payment page",
			Method:         http.MethodPost,
			URL:            "/checkout",
			Cookies:        cookies,
			ExpectedStatus: http.StatusSeeOther,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				require.Equal(t, TestCheckoutSessionURL, res.Header.Get("Location"))

				p := latestPayment(t, app)
				require.Equal(t, basketID, p.BasketID)
				require.Equal(t, "52.48", p.Amount.StringFixed(2))
				require.Equal(t, domain.PaymentStatusPending, p.Status)
			},
		},
		{
			Name:           "reports a second submit as in progress while the lock is held",
			Method:         http.MethodPost,
			URL:            "/checkout",
			Cookies:        cookies,
			ExpectedStatus: http.StatusConflict,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				require.Contains(t, readBody(t, res), "Tu pago ya se está procesando.")
			},
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *CheckoutPageTestSuite) TestSubmitFailureRendersBanner() {
	cookies := guestCookies(s.T(), s.server.URL)
	addToBasket(s.T(), s.app, cookies, TestProductBolsa, 2)

	s.app.PaymentProvider.Err = domain.ErrPaymentProviderUnavailable

	req, err := prepareRequest(http.MethodPost, "/checkout", nil, nil, cookies)
	s.Require().NoError(err)

	rec := httptest.NewRecorder()
	s.app.App.Routes().ServeHTTP(rec, req)

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Empty(rec.Header().Get("Location"))
	s.Contains(rec.Body.String(), "No se pudo iniciar el pago.")
	s.Contains(rec.Body.String(), "€16.00")
}
