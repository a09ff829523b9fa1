package bundle

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/db"
)

const bundleColumns = `id, kind, name, price, private_token, semi_private_token, public_token,
	workout_day_token, shake_token, essential_days, active, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b Bundle) (*Bundle, error) {
	out := &Bundle{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO bundles (kind, name, price, private_token, semi_private_token, public_token,
			workout_day_token, shake_token, essential_days, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+bundleColumns,
		b.Kind, b.Name, b.Price, b.PrivateToken, b.SemiPrivateToken, b.PublicToken,
		b.WorkoutDayToken, b.ShakeToken, b.EssentialDays, b.Active,
	).StructScan(out)
	if err != nil {
		return nil, apperr.StoreWrite("create bundle", err)
	}
	return out, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Bundle, error) {
	bundles := []Bundle{}
	err := r.db.SelectContext(ctx, &bundles, `
		SELECT `+bundleColumns+`
		FROM bundles
		WHERE active
		ORDER BY kind, price
	`)
	return bundles, err
}

func (r *repository) Get(ctx context.Context, q sqlx.QueryerContext, id int) (*Bundle, error) {
	if q == nil {
		q = r.db
	}
	b := &Bundle{}
	if err := sqlx.GetContext(ctx, q, b, `SELECT `+bundleColumns+` FROM bundles WHERE id = $1`, id); err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("bundle %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}
