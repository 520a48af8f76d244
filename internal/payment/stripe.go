package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/metinatakli/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

var hundred = decimal.NewFromInt(100)

type StripePaymentProvider struct {
	cancelUrl  string
	successUrl string
	newSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewStripePaymentProvider(cancelUrl, successUrl string) *StripePaymentProvider {
	return &StripePaymentProvider{
		cancelUrl:  cancelUrl,
		successUrl: successUrl,
		newSession: session.New,
	}
}

func (s *StripePaymentProvider) CreateCheckoutSession(
	ctx context.Context,
	req domain.CheckoutRequest) (*stripe.CheckoutSession, error) {

	if req.Groups.IsEmpty() {
		return nil, domain.ErrBasketEmpty
	}

	params := s.checkoutSessionParams(req)
	params.Context = ctx

	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	cs, err := s.newSession(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session creation failed: %w", err)
	}

	return cs, nil
}

// checkoutSessionParams builds one line item per product group.
func (s *StripePaymentProvider) checkoutSessionParams(req domain.CheckoutRequest) *stripe.CheckoutSessionParams {
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyEUR)
	}

	groups := req.Groups.Groups()
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(groups))

	for _, group := range groups {
		item := group.Representative()
		priceCents := item.Price.Mul(hundred).Round(0).IntPart()

		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}

		// Stripe only accepts publicly reachable images.
		if strings.HasPrefix(item.Image, "https://") {
			productData.Images = stripe.StringSlice([]string{item.Image})
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				UnitAmount:  stripe.Int64(priceCents),
				ProductData: productData,
			},
			Quantity: stripe.Int64(int64(group.Quantity())),
		})
	}

	return &stripe.CheckoutSessionParams{
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successUrl),
		CancelURL:  stripe.String(s.cancelUrl),
		Metadata: map[string]string{
			"basket_id": req.BasketID,
		},
		ClientReferenceID: stripe.String(req.BasketID),
	}
}
