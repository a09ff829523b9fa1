package market

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
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

func (r *repository) List(ctx context.Context) ([]Item, error) {
	items := []Item{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, name, price, quantity, created_at
		FROM market_items
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Create(ctx context.Context, name string, price decimal.Decimal, quantity int) (*Item, error) {
	var item Item
	err := r.db.GetContext(ctx, &item, `
		INSERT INTO market_items (name, price, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, name, price, quantity, created_at
	`, name, price, quantity)
	if err != nil {
		return nil, apperr.StoreWrite("create market item", err)
	}
	return &item, nil
}

func (r *repository) GetForUpdate(ctx context.Context, q sqlx.ExtContext, ids []int) (map[int]Item, error) {
	out := make(map[int]Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	uniq := make([]int64, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, int64(id))
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })

	var rows []Item
	err := sqlx.SelectContext(ctx, q, &rows, `
		SELECT id, name, price, quantity, created_at
		FROM market_items
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, pq.Int64Array(uniq))
	if err != nil {
		return nil, err
	}
	for _, it := range rows {
		out[it.ID] = it
	}
	for _, id := range uniq {
		if _, ok := out[int(id)]; !ok {
			return nil, fmt.Errorf("market item %d: %w", id, apperr.ErrNotFound)
		}
	}
	return out, nil
}

func (r *repository) AdjustQuantity(ctx context.Context, q sqlx.ExtContext, id, delta int) error {
	res, err := q.ExecContext(ctx, `
		UPDATE market_items
		SET quantity = quantity + $1
		WHERE id = $2 AND quantity + $1 >= 0
	`, delta, id)
	if err != nil {
		return apperr.StoreWrite(fmt.Sprintf("adjust stock of item %d", id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.StoreWrite(fmt.Sprintf("adjust stock of item %d", id), err)
	}
	if n == 0 {
		if delta < 0 {
			return fmt.Errorf("%w: market item %d is out of stock", apperr.ErrValidation, id)
		}
		return fmt.Errorf("market item %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *repository) Restock(ctx context.Context, id, quantity int) (*Item, error) {
	var item Item
	err := r.db.GetContext(ctx, &item, `
		UPDATE market_items
		SET quantity = quantity + $1
		WHERE id = $2
		RETURNING id, name, price, quantity, created_at
	`, quantity, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("market item %d: %w", id, apperr.ErrNotFound)
		}
		return nil, apperr.StoreWrite("restock market item", err)
	}
	return &item, nil
}
