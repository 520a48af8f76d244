package domain

import "github.com/shopspring/decimal"

// ItemGroup is every occurrence of one product in a basket, in basket order.
type ItemGroup struct {
	ProductID string
	Items     []Item
}

func (g ItemGroup) Quantity() int {
	return len(g.Items)
}

func (g ItemGroup) Subtotal() decimal.Decimal {
	return Total(g.Items)
}

// Representative returns the first occurrence of the product, used for display
// fields such as name and image.
func (g ItemGroup) Representative() Item {
	if len(g.Items) == 0 {
		return Item{ProductID: g.ProductID}
	}

	return g.Items[0]
}

// GroupedItems maps a product ID to its occurrences. Keys keep the order in which
// each product was first seen in the basket.
type GroupedItems struct {
	keys   []string
	groups map[string][]Item
}

// GroupItems folds the items left to right, appending each one to the group of its
// product and creating the group on first encounter.
func GroupItems(items []Item) GroupedItems {
	grouped := GroupedItems{
		keys:   make([]string, 0),
		groups: make(map[string][]Item),
	}

	for _, item := range items {
		group, ok := grouped.groups[item.ProductID]
		if !ok {
			grouped.keys = append(grouped.keys, item.ProductID)
		}

		grouped.groups[item.ProductID] = append(group, item)
	}

	return grouped
}

// Len returns the number of distinct products.
func (g GroupedItems) Len() int {
	return len(g.keys)
}

func (g GroupedItems) IsEmpty() bool {
	return len(g.keys) == 0
}

// Keys returns the product IDs in first-seen order.
func (g GroupedItems) Keys() []string {
	keys := make([]string, len(g.keys))
	copy(keys, g.keys)

	return keys
}

func (g GroupedItems) Get(productID string) ([]Item, bool) {
	items, ok := g.groups[productID]
	if !ok {
		return nil, false
	}

	out := make([]Item, len(items))
	copy(out, items)

	return out, true
}

// Groups returns the groups in first-seen order.
func (g GroupedItems) Groups() []ItemGroup {
	groups := make([]ItemGroup, len(g.keys))

	for i, key := range g.keys {
		items := make([]Item, len(g.groups[key]))
		copy(items, g.groups[key])

		groups[i] = ItemGroup{
			ProductID: key,
			Items:     items,
		}
	}

	return groups
}

// Flatten concatenates the groups in key order. The result is a permutation of the
// original basket that keeps the relative order of items within each product.
func (g GroupedItems) Flatten() []Item {
	items := make([]Item, 0)

	for _, key := range g.keys {
		items = append(items, g.groups[key]...)
	}

	return items
}

// Count returns the total number of items across all groups.
func (g GroupedItems) Count() int {
	count := 0

	for _, key := range g.keys {
		count += len(g.groups[key])
	}

	return count
}
