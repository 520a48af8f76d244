package mocks

import (
	"context"
	"sync"

	"github.com/metinatakli/storefront/internal/domain"
)

// MockBasketRepo is an in-memory basket store. Err, when set, fails every call.
type MockBasketRepo struct {
	Err error

	mu      sync.Mutex
	baskets map[string][]domain.Item
}

func NewMockBasketRepo() *MockBasketRepo {
	return &MockBasketRepo{
		baskets: make(map[string][]domain.Item),
	}
}

// Seed replaces the items stored under id.
func (m *MockBasketRepo) Seed(id string, items ...domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.baskets[id] = append([]domain.Item(nil), items...)
}

func (m *MockBasketRepo) Get(ctx context.Context, id string) (*domain.Basket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	return m.load(id), nil
}

func (m *MockBasketRepo) Update(
	ctx context.Context,
	id string,
	fn func(*domain.Basket) error) (*domain.Basket, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	b := m.load(id)

	err := fn(b)
	if err != nil {
		return nil, err
	}

	m.baskets[id] = append([]domain.Item(nil), b.Items...)

	return m.load(id), nil
}

func (m *MockBasketRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	delete(m.baskets, id)

	return nil
}

func (m *MockBasketRepo) load(id string) *domain.Basket {
	b := domain.NewBasket(id)
	b.Items = append(b.Items, m.baskets[id]...)

	return b
}
