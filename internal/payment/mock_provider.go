package payment

import (
	"context"
	"sync"

	"github.com/metinatakli/storefront/internal/domain"
	"github.com/stripe/stripe-go/v82"
)

// MockPaymentProvider answers with a fixed session or error and records the
// requests it received.
type MockPaymentProvider struct {
	CheckoutSession *stripe.CheckoutSession
	Err             error

	mu       sync.Mutex
	requests []domain.CheckoutRequest
}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{
		CheckoutSession: &stripe.CheckoutSession{
			ID:     "cs_test_mock",
			URL:    "https://checkout.stripe.com/c/pay/cs_test_mock",
			Status: stripe.CheckoutSessionStatusOpen,
		},
	}
}

func (m *MockPaymentProvider) CreateCheckoutSession(
	ctx context.Context,
	req domain.CheckoutRequest) (*stripe.CheckoutSession, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.Err != nil {
		return nil, m.Err
	}

	return m.CheckoutSession, nil
}

func (m *MockPaymentProvider) Requests() []domain.CheckoutRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.CheckoutRequest, len(m.requests))
	copy(out, m.requests)

	return out
}
