package bundle

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, b Bundle) (*Bundle, error)
	ListActive(ctx context.Context) ([]Bundle, error)
	Get(ctx context.Context, q sqlx.QueryerContext, id int) (*Bundle, error)
}
