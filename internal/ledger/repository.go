package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
)

const maxPageSize = 500

const appendQuery = `INSERT INTO transactions (user_id, currency, amount, type, description)
	VALUES (:user_id, :currency, :amount, :type, :description)`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Append inserts txs in one statement on q, normally the caller's open
// transaction. Rows are never updated or deleted afterwards.
func (r *repository) Append(ctx context.Context, q sqlx.ExtContext, txs []Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	if _, err := sqlx.NamedExecContext(ctx, q, appendQuery, txs); err != nil {
		return apperr.StoreWrite("append transactions", err)
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID int, limit, offset int) ([]Transaction, error) {
	return r.List(ctx, Filter{UserID: &userID, Limit: limit, Offset: offset})
}

func (r *repository) List(ctx context.Context, f Filter) ([]Transaction, error) {
	if f.Limit <= 0 || f.Limit > maxPageSize {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.Currency != "" {
		add("currency = $%d", string(f.Currency))
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}

	query := `SELECT id, user_id, currency, amount, type, description, created_at FROM transactions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	txs := []Transaction{}
	if err := r.db.SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *repository) Summary(ctx context.Context, from, to time.Time) ([]SummaryRow, error) {
	query := `
		SELECT type, currency, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY type, currency
		ORDER BY type, currency
	`

	rows := []SummaryRow{}
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, err
	}
	return rows, nil
}
