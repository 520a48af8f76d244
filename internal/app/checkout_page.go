package app

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/metinatakli/storefront/internal/basket"
	"github.com/metinatakli/storefront/internal/checkout"
	"github.com/metinatakli/storefront/internal/client"
	"github.com/metinatakli/storefront/internal/domain"
)

//go:embed "templates"
var templateFS embed.FS

const (
	msgCheckoutInProgress = "Tu pago ya se está procesando. Espera un momento."
	msgCheckoutFailed     = "No se pudo iniciar el pago. Inténtalo de nuevo."
)

func mustParseTemplates() *template.Template {
	return template.Must(template.New("pages").ParseFS(templateFS, "templates/*.tmpl"))
}

type checkoutPageGroup struct {
	ProductID string
	Name      string
	Image     string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

type checkoutPageData struct {
	Empty    bool
	Busy     bool
	Error    string
	Groups   []checkoutPageGroup
	Subtotal string
	Total    string
}

func (app *Application) newCheckoutPageData(view basket.View, busy bool) checkoutPageData {
	currency := app.config.Checkout.Currency

	data := checkoutPageData{
		Empty:    view.IsEmpty(),
		Busy:     busy,
		Subtotal: formatPrice(view.Total, currency),
		Total:    formatPrice(view.Total, currency),
	}

	for _, group := range view.Groups.Groups() {
		item := group.Representative()

		data.Groups = append(data.Groups, checkoutPageGroup{
			ProductID: group.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  group.Quantity(),
			UnitPrice: formatPrice(item.Price, currency),
			Subtotal:  formatPrice(group.Subtotal(), currency),
		})
	}

	return data
}

// CheckoutPageHandler renders the grouped basket, its total and the payment
// methods, or the empty basket state.
func (app *Application) CheckoutPageHandler(w http.ResponseWriter, r *http.Request) {
	basketID := app.sessionManager.Token(r.Context())

	view, err := app.baskets.View(r.Context(), basketID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.renderCheckoutPage(w, r, http.StatusOK, app.newCheckoutPageData(view, app.checkouts.Busy(basketID)))
}

// CheckoutSubmitHandler runs one checkout attempt for the visitor and answers
// with the hand-off to the hosted payment page, or re-renders the page with the
// failure.
func (app *Application) CheckoutSubmitHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)
	basketID := app.sessionManager.Token(r.Context())

	view, err := app.baskets.View(r.Context(), basketID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if view.IsEmpty() {
		http.Redirect(w, r, "/checkout", http.StatusSeeOther)
		return
	}

	o := app.checkouts.Get(basketID)
	defer app.checkouts.Release(basketID, o)

	unsubscribe := o.Subscribe(func(st checkout.Status) {
		logger.Debug("checkout state changed", "state", st.State.String(), "busy", st.Busy)
	})
	defer unsubscribe()

	attempt := &checkoutAttempt{}
	redirector := checkout.NewResponseRedirector(w, r)
	ctx := withCheckoutAttempt(client.ContextWithCookies(r.Context(), r.Cookies()), attempt)

	err = o.Checkout(ctx, view.Items, redirector)
	if err == nil {
		app.serverMetrics.Checkouts.WithLabelValues("redirected").Inc()
		return
	}

	var redirectErr *checkout.RedirectError
	if errors.As(err, &redirectErr) {
		app.abandonCheckout(r.Context(), attempt)
	}

	if redirector.Sent() {
		logger.Error("checkout failed after the redirect was written", "error", err)
		return
	}

	data := app.newCheckoutPageData(view, app.checkouts.Busy(basketID))

	switch {
	case inProgress(err):
		app.serverMetrics.Checkouts.WithLabelValues("rejected").Inc()

		data.Error = msgCheckoutInProgress
		app.renderCheckoutPage(w, r, http.StatusConflict, data)

	case errors.Is(err, domain.ErrBasketEmpty):
		http.Redirect(w, r, "/checkout", http.StatusSeeOther)

	default:
		app.serverMetrics.Checkouts.WithLabelValues("failed").Inc()

		data.Error = msgCheckoutFailed
		app.renderCheckoutPage(w, r, checkoutFailureStatus(err), data)
	}
}

// inProgress reports a rejection by the local busy guard or by the per-basket
// lock of the session backend.
func inProgress(err error) bool {
	if errors.Is(err, domain.ErrCheckoutInProgress) || errors.Is(err, domain.ErrCheckoutHandedOff) {
		return true
	}

	var serverErr *checkout.ServerError

	return errors.As(err, &serverErr) && serverErr.StatusCode == http.StatusConflict
}

func checkoutFailureStatus(err error) int {
	var serverErr *checkout.ServerError
	if errors.As(err, &serverErr) && serverErr.StatusCode >= http.StatusBadRequest {
		return serverErr.StatusCode
	}

	return http.StatusBadGateway
}

func (app *Application) renderCheckoutPage(w http.ResponseWriter, r *http.Request, status int, data checkoutPageData) {
	buf := new(bytes.Buffer)

	err := app.templates.ExecuteTemplate(buf, "checkout", data)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
