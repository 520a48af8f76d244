package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/storefront/internal/domain"
)

type PostgresProductRepository struct {
	db *pgxpool.Pool
}

func NewPostgresProductRepository(db *pgxpool.Pool) *PostgresProductRepository {
	return &PostgresProductRepository{
		db: db,
	}
}

const productColumns = `id, name, price, image_url, active, created_at`

func (p *PostgresProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE active
		ORDER BY name, id`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return collectProducts(rows)
}

func (p *PostgresProductRepository) GetById(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND active`

	var product domain.Product

	err := p.db.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Image,
		&product.Active,
		&product.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &product, nil
}

// GetByIds returns the active products among ids. Unknown or inactive ids are
// simply absent from the result.
func (p *PostgresProductRepository) GetByIds(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1) AND active`

	rows, err := p.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}

	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()

	products := make([]domain.Product, 0)

	for rows.Next() {
		var product domain.Product

		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Price,
			&product.Image,
			&product.Active,
			&product.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
