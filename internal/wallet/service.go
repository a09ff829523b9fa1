package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/db"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/metrics"
)

type Service interface {
	GetBalance(ctx context.Context, userID int) (*Balance, error)
	Adjust(ctx context.Context, userID int, req AdjustRequest) (*Balance, error)
	UpdateTokens(ctx context.Context, userID int, u TokenUpdate) (*Balance, error)
	UpdateEssentials(ctx context.Context, userID int, till *time.Time) (*Balance, error)
	RemovePunches(ctx context.Context, userID, n int) (*Balance, error)
	SetFree(ctx context.Context, userID int, free bool) (*Balance, error)
}

type service struct {
	tx     db.Transactor
	repo   Repository
	ledger ledger.Repository
}

func NewService(tx db.Transactor, repo Repository, ledgerRepo ledger.Repository) Service {
	return &service{tx: tx, repo: repo, ledger: ledgerRepo}
}

func (s *service) GetBalance(ctx context.Context, userID int) (*Balance, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

// mutate locks the wallet, lets fn change it, then saves it together with
// the transactions fn returns.
func (s *service) mutate(ctx context.Context, userID int, fn func(b *Balance) ([]ledger.Transaction, error)) (*Balance, error) {
	var out *Balance
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		b, err := s.repo.GetForUpdate(ctx, q, userID)
		if err != nil {
			return err
		}
		txs, err := fn(b)
		if err != nil {
			return err
		}
		if err := s.repo.Save(ctx, q, b); err != nil {
			return err
		}
		if err := s.ledger.Append(ctx, q, txs); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Adjust(ctx context.Context, userID int, req AdjustRequest) (*Balance, error) {
	txType, err := req.Kind.txType()
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperr.ErrValidation)
	}
	desc := req.Description
	if desc == "" {
		desc = fmt.Sprintf("Admin %s of %s credits", req.Kind, req.Amount.StringFixed(2))
	}

	b, err := s.mutate(ctx, userID, func(b *Balance) ([]ledger.Transaction, error) {
		amount := req.Amount
		if req.Kind == AdjustDeduction {
			if err := b.Debit(amount); err != nil {
				return nil, err
			}
			amount = amount.Neg()
		} else {
			b.Credits = b.Credits.Add(amount)
		}
		return []ledger.Transaction{ledger.New(userID, ledger.CurrencyCredits, amount, txType, desc)}, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordWalletAdjustment(string(req.Kind))
	return b, nil
}

func (s *service) UpdateTokens(ctx context.Context, userID int, u TokenUpdate) (*Balance, error) {
	b, err := s.mutate(ctx, userID, func(b *Balance) ([]ledger.Transaction, error) {
		var txs []ledger.Transaction
		for _, f := range u.fields() {
			if f.value == nil {
				continue
			}
			if *f.value < 0 {
				return nil, fmt.Errorf("%w: %s cannot be negative", apperr.ErrValidation, f.currency)
			}
			delta := *f.value - b.Count(f.currency)
			if delta == 0 {
				continue
			}
			if err := b.AddCount(f.currency, delta); err != nil {
				return nil, err
			}
			txs = append(txs, ledger.New(userID, f.currency, ledger.Units(delta), ledger.TypeTokenUpdate,
				fmt.Sprintf("Admin set %s to %d", f.currency, *f.value)))
		}
		return txs, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordWalletAdjustment("tokens")
	return b, nil
}

func (s *service) UpdateEssentials(ctx context.Context, userID int, till *time.Time) (*Balance, error) {
	b, err := s.mutate(ctx, userID, func(b *Balance) ([]ledger.Transaction, error) {
		b.EssentialTill = till
		desc := "Essentials cleared"
		if till != nil {
			desc = "Essentials until " + till.Format("2006-01-02")
		}
		return []ledger.Transaction{
			ledger.New(userID, ledger.CurrencyNone, decimal.Zero, ledger.TypeEssentialsUpdate, desc),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordWalletAdjustment("essentials")
	return b, nil
}

func (s *service) RemovePunches(ctx context.Context, userID, n int) (*Balance, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: punches must be positive", apperr.ErrValidation)
	}
	b, err := s.mutate(ctx, userID, func(b *Balance) ([]ledger.Transaction, error) {
		if err := b.AddCount(ledger.CurrencyPunches, -n); err != nil {
			return nil, err
		}
		return []ledger.Transaction{
			ledger.New(userID, ledger.CurrencyPunches, ledger.Units(-n), ledger.TypePunchRemove,
				fmt.Sprintf("Admin removed %d punches", n)),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordWalletAdjustment("punches")
	return b, nil
}

// SetFree toggles the free-membership flag. It moves no currency, so no
// transaction is written.
func (s *service) SetFree(ctx context.Context, userID int, free bool) (*Balance, error) {
	return s.mutate(ctx, userID, func(b *Balance) ([]ledger.Transaction, error) {
		b.IsFree = free
		return nil, nil
	})
}
