// Package basket holds the per-visitor basket state. The Store is the only writer;
// every read returns a freshly computed View so grouping and totals always reflect
// the current item list.
package basket

import (
	"context"
	"fmt"
	"sync"

	"github.com/metinatakli/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// View is a read-only projection of a basket.
type View struct {
	ID     string
	Items  []domain.Item
	Groups domain.GroupedItems
	Total  decimal.Decimal
}

func NewView(b *domain.Basket) View {
	items := make([]domain.Item, len(b.Items))
	copy(items, b.Items)

	return View{
		ID:     b.ID,
		Items:  items,
		Groups: domain.GroupItems(items),
		Total:  domain.Total(items),
	}
}

func (v View) IsEmpty() bool {
	return len(v.Items) == 0
}

// Listener observes committed basket mutations.
type Listener func(ctx context.Context, view View)

type Store struct {
	repo domain.BasketRepository

	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

func NewStore(repo domain.BasketRepository) *Store {
	return &Store{
		repo:      repo,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.listeners, id)
	}
}

func (s *Store) View(ctx context.Context, id string) (View, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return View{}, fmt.Errorf("failed to load basket: %w", err)
	}

	return NewView(b), nil
}

// Add appends quantity copies of item to the basket. It fails with
// domain.ErrBasketFull when the basket would exceed domain.MaxBasketItems.
func (s *Store) Add(ctx context.Context, id string, item domain.Item, quantity int) (View, error) {
	if quantity < 1 {
		quantity = 1
	}

	return s.mutate(ctx, id, func(b *domain.Basket) error {
		if len(b.Items)+quantity > domain.MaxBasketItems {
			return fmt.Errorf("%w: it holds %d of at most %d items", domain.ErrBasketFull, len(b.Items), domain.MaxBasketItems)
		}

		for range quantity {
			b.Add(item)
		}

		return nil
	})
}

// Remove drops one occurrence of the product, or all of them when all is set.
// It fails with domain.ErrItemNotInBasket when the product is absent.
func (s *Store) Remove(ctx context.Context, id, productID string, all bool) (View, error) {
	return s.mutate(ctx, id, func(b *domain.Basket) error {
		if all {
			if b.RemoveAll(productID) == 0 {
				return domain.ErrItemNotInBasket
			}

			return nil
		}

		if !b.Remove(productID) {
			return domain.ErrItemNotInBasket
		}

		return nil
	})
}

func (s *Store) Clear(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to clear basket: %w", err)
	}

	s.notify(ctx, NewView(domain.NewBasket(id)))

	return nil
}

func (s *Store) mutate(ctx context.Context, id string, fn func(*domain.Basket) error) (View, error) {
	b, err := s.repo.Update(ctx, id, fn)
	if err != nil {
		return View{}, err
	}

	view := NewView(b)
	s.notify(ctx, view)

	return view, nil
}

func (s *Store) notify(ctx context.Context, view View) {
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, view)
	}
}
