package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/metinatakli/storefront/api"
	"github.com/metinatakli/storefront/internal/checkout"
	"github.com/metinatakli/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testItems = []domain.Item{
	{ProductID: "p1", Name: "Camiseta", Price: decimal.NewFromInt(10)},
	{ProductID: "p2", Name: "Gorra", Price: decimal.NewFromInt(5)},
	{ProductID: "p1", Name: "Camiseta", Price: decimal.NewFromInt(10)},
}

func TestSessionClient_CreateSession(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantSession *domain.CheckoutSession
		wantServer  *checkout.ServerError
		wantErr     error
	}{
		{
			name: "should return the created session",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"id":"sess_123","url":"https://checkout.stripe.com/c/pay/sess_123","status":"open"}`))
			},
			wantSession: &domain.CheckoutSession{
				ID:     "sess_123",
				URL:    "https://checkout.stripe.com/c/pay/sess_123",
				Status: domain.CheckoutSessionStatusOpen,
			},
		},
		{
			name: "should report a server error signaled in the body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"statusCode":500,"message":"boom"}`))
			},
			wantServer: &checkout.ServerError{StatusCode: 500, Message: "boom"},
		},
		{
			name: "should report a server error signaled with a 200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"statusCode":500,"message":"boom"}`))
			},
			wantServer: &checkout.ServerError{StatusCode: 500, Message: "boom"},
		},
		{
			name: "should fall back to the status text when the failure body is not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("<html>bad gateway</html>"))
			},
			wantServer: &checkout.ServerError{StatusCode: 502, Message: "Bad Gateway"},
		},
		{
			name: "should fail when the session has no id",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"url":"https://checkout.stripe.com/c/pay/x"}`))
			},
			wantErr: domain.ErrMissingCheckoutSessionID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewSessionClient(srv.URL, time.Second)
			got, err := c.CreateSession(context.Background(), testItems)

			switch {
			case tt.wantServer != nil:
				var serverErr *checkout.ServerError
				require.True(t, errors.As(err, &serverErr), "expected a server error, got %v", err)
				assert.Equal(t, tt.wantServer, serverErr)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantSession, got)
			}
		})
	}
}

func TestSessionClient_SendsItemsAndCookies(t *testing.T) {
	var (
		gotBody   api.CreateCheckoutSessionRequest
		gotCookie string
		gotPath   string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		if c, err := r.Cookie("session_id"); err == nil {
			gotCookie = c.Value
		}

		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"id":"sess_1","url":"https://checkout.stripe.com/c/pay/sess_1","status":"open"}`))
	}))
	defer srv.Close()

	ctx := ContextWithCookies(context.Background(), []*http.Cookie{{Name: "session_id", Value: "visitor-token"}})

	c := NewSessionClient(srv.URL+"/", time.Second)
	_, err := c.CreateSession(ctx, testItems)
	require.NoError(t, err)

	assert.Equal(t, "/api/checkout_sessions", gotPath)
	assert.Equal(t, "visitor-token", gotCookie)
	require.Len(t, gotBody.Items, 3)
	assert.Equal(t, "p1", gotBody.Items[0].Id)
	assert.Equal(t, "p2", gotBody.Items[1].Id)
	assert.True(t, decimal.NewFromInt(5).Equal(*gotBody.Items[1].Price))
	assert.Nil(t, gotBody.Items[0].Image)
}

func TestSessionClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewSessionClient(url, time.Second)
	_, err := c.CreateSession(context.Background(), testItems)

	require.Error(t, err)

	var serverErr *checkout.ServerError
	assert.False(t, errors.As(err, &serverErr), "transport failures are not server errors")
}
