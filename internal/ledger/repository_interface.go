package ledger

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Append(ctx context.Context, q sqlx.ExtContext, txs []Transaction) error
	ListByUser(ctx context.Context, userID int, limit, offset int) ([]Transaction, error)
	List(ctx context.Context, f Filter) ([]Transaction, error)
	Summary(ctx context.Context, from, to time.Time) ([]SummaryRow, error)
}
