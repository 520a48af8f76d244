package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/metinatakli/storefront/internal/domain"
)

var ErrRedirectAlreadySent = errors.New("redirect response was already written")

// ResponseRedirector hands the visitor off by answering the current request with a
// 303 pointing at the hosted payment page.
type ResponseRedirector struct {
	w    http.ResponseWriter
	r    *http.Request
	sent bool
}

func NewResponseRedirector(w http.ResponseWriter, r *http.Request) *ResponseRedirector {
	return &ResponseRedirector{
		w: w,
		r: r,
	}
}

func (rr *ResponseRedirector) Redirect(_ context.Context, session *domain.CheckoutSession) error {
	if rr.sent {
		return ErrRedirectAlreadySent
	}

	u, err := ParseRedirectURL(session.URL)
	if err != nil {
		return err
	}

	http.Redirect(rr.w, rr.r, u.String(), http.StatusSeeOther)
	rr.sent = true

	return nil
}

// Sent reports whether the hand-off response was written.
func (rr *ResponseRedirector) Sent() bool {
	return rr.sent
}

// ParseRedirectURL accepts only absolute http(s) URLs. Every failure wraps
// domain.ErrMissingCheckoutRedirectURL.
func ParseRedirectURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, domain.ErrMissingCheckoutRedirectURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMissingCheckoutRedirectURL, err)
	}

	if !u.IsAbs() || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("%w: must be absolute http(s): %q", domain.ErrMissingCheckoutRedirectURL, raw)
	}

	return u, nil
}
