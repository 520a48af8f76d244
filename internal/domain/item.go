package domain

import (
	"github.com/shopspring/decimal"
)

// Item is a single basket entry. Quantity is expressed by repetition: a product
// bought three times appears as three items sharing the same ProductID.
type Item struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Image     string
}

// Total returns the sum of every item price. An empty list totals zero.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero

	for _, item := range items {
		total = total.Add(item.Price)
	}

	return total
}
