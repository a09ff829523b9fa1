package wallet

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Get(ctx context.Context, userID int) (*Balance, error)
	GetOrCreate(ctx context.Context, userID int) (*Balance, error)
	Create(ctx context.Context, q sqlx.ExtContext, userID int) error
	// GetForUpdate reads and row-locks the wallet inside q's transaction.
	GetForUpdate(ctx context.Context, q sqlx.ExtContext, userID int) (*Balance, error)
	// GetManyForUpdate locks several wallets in ascending user id order.
	GetManyForUpdate(ctx context.Context, q sqlx.ExtContext, userIDs []int) (map[int]*Balance, error)
	Save(ctx context.Context, q sqlx.ExtContext, b *Balance) error
}
