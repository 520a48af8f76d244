// Package client talks to a remote checkout API when the storefront page and the
// API are deployed separately.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/metinatakli/storefront/api"
	"github.com/metinatakli/storefront/internal/checkout"
	"github.com/metinatakli/storefront/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	checkoutSessionsPath = "/api/checkout_sessions"
	maxResponseBytes     = 1 << 20
)

type cookiesKey struct{}

// ContextWithCookies attaches the visitor cookies that must be forwarded to the
// checkout API so it resolves the same basket.
func ContextWithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, cookiesKey{}, cookies)
}

func cookiesFromContext(ctx context.Context) []*http.Cookie {
	cookies, _ := ctx.Value(cookiesKey{}).([]*http.Cookie)
	return cookies
}

type SessionClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewSessionClient(baseURL string, timeout time.Duration) *SessionClient {
	return &SessionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// sessionResponse covers both answers of the endpoint: a session object or a
// server failure with statusCode and message.
type sessionResponse struct {
	Id         string `json:"id"`
	Url        string `json:"url"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// CreateSession implements checkout.SessionCreator.
func (c *SessionClient) CreateSession(ctx context.Context, items []domain.Item) (*domain.CheckoutSession, error) {
	body, err := json.Marshal(api.CreateCheckoutSessionRequest{Items: toApiItems(items)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkout session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+checkoutSessionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout session request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	for _, cookie := range cookiesFromContext(ctx) {
		req.AddCookie(cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout session request failed: %w", err)
	}
	defer resp.Body.Close()

	var out sessionResponse

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	err = dec.Decode(&out)
	if err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &checkout.ServerError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}

		return nil, fmt.Errorf("failed to decode checkout session response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || out.StatusCode >= http.StatusBadRequest {
		status := out.StatusCode
		if status == 0 {
			status = resp.StatusCode
		}

		message := out.Message
		if message == "" {
			message = http.StatusText(status)
		}

		return nil, &checkout.ServerError{StatusCode: status, Message: message}
	}

	if out.Id == "" {
		return nil, domain.ErrMissingCheckoutSessionID
	}

	return &domain.CheckoutSession{
		ID:     out.Id,
		URL:    out.Url,
		Status: domain.CheckoutSessionStatus(out.Status),
	}, nil
}

func toApiItems(items []domain.Item) []api.Item {
	out := make([]api.Item, len(items))

	for i, item := range items {
		out[i] = api.Item{
			Id:    item.ProductID,
			Name:  &item.Name,
			Price: &item.Price,
		}

		if item.Image != "" {
			out[i].Image = &item.Image
		}
	}

	return out
}
