package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/metinatakli/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	DefaultBasketTTL = 24 * time.Hour
	maxUpdateRetries = 5
)

func BasketKey(id string) string {
	return fmt.Sprintf("basket:%s", id)
}

type basketRecord struct {
	Items     []basketItemRecord `json:"items"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type basketItemRecord struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
}

// RedisBasketRepository stores each basket as a JSON document with a sliding TTL.
type RedisBasketRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisBasketRepository(client redis.UniversalClient, ttl time.Duration) *RedisBasketRepository {
	if ttl <= 0 {
		ttl = DefaultBasketTTL
	}

	return &RedisBasketRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisBasketRepository) Get(ctx context.Context, id string) (*domain.Basket, error) {
	data, err := r.client.Get(ctx, BasketKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NewBasket(id), nil
		}

		return nil, fmt.Errorf("failed to get basket %s: %w", id, err)
	}

	return decodeBasket(id, data)
}

// Update runs fn inside an optimistic transaction on the basket key and retries
// when a concurrent writer touched the key first.
func (r *RedisBasketRepository) Update(
	ctx context.Context,
	id string,
	fn func(*domain.Basket) error) (*domain.Basket, error) {

	key := BasketKey(id)

	var updated *domain.Basket

	txf := func(tx *redis.Tx) error {
		basket := domain.NewBasket(id)

		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			basket, err = decodeBasket(id, data)
			if err != nil {
				return err
			}
		}

		err = fn(basket)
		if err != nil {
			return err
		}

		encoded, err := encodeBasket(basket)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = basket

		return nil
	}

	for range maxUpdateRetries {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, fmt.Errorf("basket %s: %w", id, domain.ErrEditConflict)
}

func (r *RedisBasketRepository) Delete(ctx context.Context, id string) error {
	err := r.client.Del(ctx, BasketKey(id)).Err()
	if err != nil {
		return fmt.Errorf("failed to delete basket %s: %w", id, err)
	}

	return nil
}

func encodeBasket(b *domain.Basket) ([]byte, error) {
	record := basketRecord{
		Items:     make([]basketItemRecord, len(b.Items)),
		UpdatedAt: b.UpdatedAt,
	}

	for i, item := range b.Items {
		record.Items[i] = basketItemRecord{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Image:     item.Image,
		}
	}

	return json.Marshal(record)
}

func decodeBasket(id string, data []byte) (*domain.Basket, error) {
	var record basketRecord

	err := json.Unmarshal(data, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal basket %s: %w", id, err)
	}

	basket := domain.NewBasket(id)
	basket.UpdatedAt = record.UpdatedAt

	for _, item := range record.Items {
		basket.Items = append(basket.Items, domain.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Image:     item.Image,
		})
	}

	return basket, nil
}
