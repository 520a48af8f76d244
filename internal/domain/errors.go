package domain

import "errors"

var (
	ErrRecordNotFound             = errors.New("record not found")
	ErrEditConflict               = errors.New("edit conflict")
	ErrBasketEmpty                = errors.New("basket is empty")
	ErrItemNotInBasket            = errors.New("product is not in the basket")
	ErrBasketFull                 = errors.New("basket is full")
	ErrUnknownProduct             = errors.New("product is not available")
	ErrCheckoutInProgress         = errors.New("a checkout is already in progress for this basket")
	ErrCheckoutHandedOff          = errors.New("checkout was already handed off to the payment provider")
	ErrDuplicateCheckoutSession   = errors.New("checkout session already recorded")
	ErrPaymentProviderUnavailable = errors.New("payment provider is temporarily unavailable")
	ErrMissingCheckoutRedirectURL = errors.New("checkout session has no hosted payment page")
	ErrMissingCheckoutSessionID   = errors.New("checkout session response has no id")
)

