package activity

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Repository interface {
	CreateActivity(ctx context.Context, name string, credits decimal.Decimal, capacity int, semiPrivate bool) (*Activity, error)
	ListActivities(ctx context.Context) ([]Activity, error)
	// GetActivity reads through q so callers inside a transaction see a
	// consistent row.
	GetActivity(ctx context.Context, q sqlx.QueryerContext, id int) (*Activity, error)
	CreateCoach(ctx context.Context, name, email string) (*Coach, error)
	ListCoaches(ctx context.Context) ([]Coach, error)
	GetCoach(ctx context.Context, q sqlx.QueryerContext, id int) (*Coach, error)
}
