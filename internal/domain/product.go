package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Image     string
	Active    bool
	CreatedAt time.Time
}

// ToItem returns a basket item priced from the catalog.
func (p Product) ToItem() Item {
	return Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
	}
}

type ProductRepository interface {
	GetAll(ctx context.Context) ([]Product, error)
	GetById(ctx context.Context, id string) (*Product, error)
	GetByIds(ctx context.Context, ids []string) ([]Product, error)
}
