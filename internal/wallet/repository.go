package wallet

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/db"
)

const balanceColumns = `user_id, credits, private_token, semi_private_token, public_token,
	workout_day_token, shake_token, punches, is_free, essential_till, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, userID int) (*Balance, error) {
	b := &Balance{}
	err := r.db.GetContext(ctx, b, `SELECT `+balanceColumns+` FROM wallets WHERE user_id = $1`, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("wallet for user %d: %w", userID, apperr.ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (r *repository) GetOrCreate(ctx context.Context, userID int) (*Balance, error) {
	b, err := r.Get(ctx, userID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	b = &Balance{}
	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id)
		 VALUES ($1)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING `+balanceColumns,
		userID,
	).StructScan(b)
	if err != nil {
		return nil, apperr.StoreWrite("create wallet", err)
	}
	return b, nil
}

func (r *repository) Create(ctx context.Context, q sqlx.ExtContext, userID int) error {
	if _, err := q.ExecContext(ctx,
		`INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return apperr.StoreWrite("create wallet", err)
	}
	return nil
}

func (r *repository) GetForUpdate(ctx context.Context, q sqlx.ExtContext, userID int) (*Balance, error) {
	b := &Balance{}
	err := sqlx.GetContext(ctx, q, b,
		`SELECT `+balanceColumns+`
		 FROM wallets
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("wallet for user %d: %w", userID, apperr.ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (r *repository) GetManyForUpdate(ctx context.Context, q sqlx.ExtContext, userIDs []int) (map[int]*Balance, error) {
	out := make(map[int]*Balance, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, int64(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var rows []Balance
	err := sqlx.SelectContext(ctx, q, &rows,
		`SELECT `+balanceColumns+`
		 FROM wallets
		 WHERE user_id = ANY($1)
		 ORDER BY user_id
		 FOR UPDATE`,
		pq.Int64Array(ids),
	)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].UserID] = &rows[i]
	}
	for _, id := range userIDs {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("wallet for user %d: %w", id, apperr.ErrNotFound)
		}
	}
	return out, nil
}

func (r *repository) Save(ctx context.Context, q sqlx.ExtContext, b *Balance) error {
	res, err := q.ExecContext(ctx,
		`UPDATE wallets
		 SET credits = $1, private_token = $2, semi_private_token = $3, public_token = $4,
		     workout_day_token = $5, shake_token = $6, punches = $7, is_free = $8,
		     essential_till = $9, updated_at = NOW()
		 WHERE user_id = $10`,
		b.Credits, b.PrivateToken, b.SemiPrivateToken, b.PublicToken,
		b.WorkoutDayToken, b.ShakeToken, b.Punches, b.IsFree,
		b.EssentialTill, b.UserID,
	)
	if err != nil {
		return apperr.StoreWrite("save wallet", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("wallet for user %d: %w", b.UserID, apperr.ErrNotFound)
	}
	return nil
}
