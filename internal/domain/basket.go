package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MaxBasketItems bounds the item list of a basket, counting repetitions. It matches
// the largest item list a checkout session request accepts.
const MaxBasketItems = 100

// Basket is the ordered list of items a visitor selected. Its ID is the visitor
// session token.
type Basket struct {
	ID        string
	Items     []Item
	UpdatedAt time.Time
}

func NewBasket(id string) *Basket {
	return &Basket{
		ID:    id,
		Items: make([]Item, 0),
	}
}

func (b *Basket) Add(item Item) {
	b.Items = append(b.Items, item)
	b.UpdatedAt = time.Now()
}

// Remove drops the first occurrence of the product. It reports whether an item
// was removed.
func (b *Basket) Remove(productID string) bool {
	for i, item := range b.Items {
		if item.ProductID == productID {
			b.Items = append(b.Items[:i:i], b.Items[i+1:]...)
			b.UpdatedAt = time.Now()

			return true
		}
	}

	return false
}

// RemoveAll drops every occurrence of the product and returns how many were removed.
func (b *Basket) RemoveAll(productID string) int {
	kept := make([]Item, 0, len(b.Items))

	for _, item := range b.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}

	removed := len(b.Items) - len(kept)
	if removed > 0 {
		b.Items = kept
		b.UpdatedAt = time.Now()
	}

	return removed
}

func (b *Basket) Clear() {
	b.Items = make([]Item, 0)
	b.UpdatedAt = time.Now()
}

func (b *Basket) IsEmpty() bool {
	return len(b.Items) == 0
}

func (b *Basket) Total() decimal.Decimal {
	return Total(b.Items)
}

func (b *Basket) Grouped() GroupedItems {
	return GroupItems(b.Items)
}

type BasketRepository interface {
	// Get returns an empty basket when none is stored under id.
	Get(ctx context.Context, id string) (*Basket, error)
	// Update applies fn to the stored basket and persists the result atomically.
	// An error returned by fn aborts the update and is returned unchanged.
	Update(ctx context.Context, id string, fn func(*Basket) error) (*Basket, error)
	Delete(ctx context.Context, id string) error
}
