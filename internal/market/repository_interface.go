package market

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Repository interface {
	List(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, name string, price decimal.Decimal, quantity int) (*Item, error)
	// GetForUpdate locks the rows for ids in ascending id order. Every id
	// must exist.
	GetForUpdate(ctx context.Context, q sqlx.ExtContext, ids []int) (map[int]Item, error)
	// AdjustQuantity moves stock by delta and fails rather than going
	// below zero.
	AdjustQuantity(ctx context.Context, q sqlx.ExtContext, id, delta int) error
	Restock(ctx context.Context, id, quantity int) (*Item, error)
}
