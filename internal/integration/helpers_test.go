package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
}

func prepareRequest(
	method, path string,
	body io.Reader,
	headers map[string]string,
	cookies []*http.Cookie) (*http.Request, error) {

	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		return k == "timestamp" || k == "requestId" || k == "createdAt"
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

// guestCookies opens a visitor session through the running server and returns
// the session cookie it was issued.
func guestCookies(t testing.TB, serverURL string) []*http.Cookie {
	t.Helper()

	res, err := http.Get(serverURL + "/api/basket")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	for _, c := range res.Cookies() {
		if c.Name == "session_id" {
			return []*http.Cookie{c}
		}
	}

	t.Fatal("no session cookie issued")
	return nil
}

// addToBasket puts quantity copies of productID into the visitor basket.
func addToBasket(t testing.TB, app *TestApp, cookies []*http.Cookie, productID string, quantity int) {
	t.Helper()

	body := fmt.Sprintf(`{"productId":"%s","quantity":%d}`, productID, quantity)

	req, err := prepareRequest(http.MethodPost, "/api/basket/items", strings.NewReader(body), nil, cookies)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.App.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func setProductActive(t testing.TB, app *TestApp, productID string, active bool) {
	t.Helper()

	_, err := app.DB.Exec(context.Background(), `UPDATE products SET active = $2 WHERE id = $1`, productID, active)
	require.NoError(t, err)
}

func truncatePayments(t testing.TB, db *pgxpool.Pool) {
	t.Helper()

	_, err := db.Exec(context.Background(), `TRUNCATE TABLE payments RESTART IDENTITY`)
	require.NoError(t, err)
}

func flushCache(t testing.TB, client *redis.Client) {
	t.Helper()

	err := client.FlushDB(context.Background()).Err()
	require.NoError(t, err)
}

// signedWebhookEvent builds a webhook request signed with the suite secret.
func signedWebhookEvent(t testing.TB, eventType stripe.EventType, object string) *http.Request {
	t.Helper()

	payload := fmt.Sprintf(
		`{"id":"evt_integration","object":"event","api_version":"%s","type":"%s","data":{"object":%s}}`,
		stripe.APIVersion, eventType, object,
	)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    TestWebhookSecret,
		Timestamp: time.Now(),
	})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signed.Header)

	return req
}
