package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/metinatakli/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v82"
)

const (
	breakerConsecutiveFailures = 5
	breakerOpenTimeout         = 30 * time.Second
)

// BreakerProvider fails fast with domain.ErrPaymentProviderUnavailable once the
// wrapped provider keeps failing.
type BreakerProvider struct {
	next domain.PaymentProvider
	cb   *gobreaker.CircuitBreaker[*stripe.CheckoutSession]
}

func NewBreakerProvider(next domain.PaymentProvider, logger *slog.Logger) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        "payment-provider",
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
		// An empty basket is a caller mistake, not a provider outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrBasketEmpty)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerProvider{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*stripe.CheckoutSession](settings),
	}
}

func (b *BreakerProvider) CreateCheckoutSession(
	ctx context.Context,
	req domain.CheckoutRequest) (*stripe.CheckoutSession, error) {

	cs, err := b.cb.Execute(func() (*stripe.CheckoutSession, error) {
		return b.next.CreateCheckoutSession(ctx, req)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, domain.ErrPaymentProviderUnavailable
	}

	return cs, err
}

func (b *BreakerProvider) State() gobreaker.State {
	return b.cb.State()
}
