package activity

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/db"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateActivity(ctx context.Context, name string, credits decimal.Decimal, capacity int, semiPrivate bool) (*Activity, error) {
	query := `
		INSERT INTO activities (name, credits, capacity, semi_private)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, credits, capacity, semi_private, created_at
	`

	var a Activity
	if err := r.db.GetContext(ctx, &a, query, name, credits, capacity, semiPrivate); err != nil {
		return nil, apperr.StoreWrite("create activity", err)
	}
	return &a, nil
}

func (r *repository) ListActivities(ctx context.Context) ([]Activity, error) {
	query := `
		SELECT id, name, credits, capacity, semi_private, created_at
		FROM activities
		ORDER BY name
	`

	activities := []Activity{}
	if err := r.db.SelectContext(ctx, &activities, query); err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *repository) GetActivity(ctx context.Context, q sqlx.QueryerContext, id int) (*Activity, error) {
	if q == nil {
		q = r.db
	}
	query := `
		SELECT id, name, credits, capacity, semi_private, created_at
		FROM activities
		WHERE id = $1
	`

	var a Activity
	if err := sqlx.GetContext(ctx, q, &a, query, id); err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("activity %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) CreateCoach(ctx context.Context, name, email string) (*Coach, error) {
	query := `
		INSERT INTO coaches (name, email)
		VALUES ($1, $2)
		RETURNING id, name, email, created_at
	`

	var c Coach
	if err := r.db.GetContext(ctx, &c, query, name, email); err != nil {
		return nil, apperr.StoreWrite("create coach", err)
	}
	return &c, nil
}

func (r *repository) ListCoaches(ctx context.Context) ([]Coach, error) {
	coaches := []Coach{}
	if err := r.db.SelectContext(ctx, &coaches, `SELECT id, name, email, created_at FROM coaches ORDER BY name`); err != nil {
		return nil, err
	}
	return coaches, nil
}

func (r *repository) GetCoach(ctx context.Context, q sqlx.QueryerContext, id int) (*Coach, error) {
	if q == nil {
		q = r.db
	}
	var c Coach
	if err := sqlx.GetContext(ctx, q, &c, `SELECT id, name, email, created_at FROM coaches WHERE id = $1`, id); err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("coach %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}
