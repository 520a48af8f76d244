package domain

type CheckoutSessionStatus string

const (
	CheckoutSessionStatusOpen     CheckoutSessionStatus = "open"
	CheckoutSessionStatusComplete CheckoutSessionStatus = "complete"
	CheckoutSessionStatusExpired  CheckoutSessionStatus = "expired"
)

// CheckoutSession is the hosted payment session created by the provider. It is
// only held long enough to hand the visitor over to URL.
type CheckoutSession struct {
	ID     string
	URL    string
	Status CheckoutSessionStatus
}

// CheckoutRequest carries everything the payment provider needs to open a session.
type CheckoutRequest struct {
	BasketID       string
	Groups         GroupedItems
	Currency       string
	IdempotencyKey string
}
