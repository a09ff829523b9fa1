package bundle

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/db"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/metrics"
	"github.com/qwerty-development/gym-webapp-sub000/internal/wallet"
)

type Service interface {
	List(ctx context.Context) ([]Bundle, error)
	Create(ctx context.Context, req CreateRequest) (*Bundle, error)
	Purchase(ctx context.Context, userID, bundleID int) (*wallet.Balance, error)
}

type service struct {
	tx      db.Transactor
	repo    Repository
	wallets wallet.Repository
	ledger  ledger.Repository
	now     func() time.Time
}

func NewService(tx db.Transactor, repo Repository, wallets wallet.Repository, ledgerRepo ledger.Repository) Service {
	return &service{tx: tx, repo: repo, wallets: wallets, ledger: ledgerRepo, now: time.Now}
}

func (s *service) List(ctx context.Context) ([]Bundle, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Bundle, error) {
	if _, err := req.Kind.TxType(); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", apperr.ErrValidation)
	}
	b := req.Bundle()
	if len(b.grants()) == 0 && b.EssentialDays == 0 {
		return nil, fmt.Errorf("%w: bundle grants nothing", apperr.ErrValidation)
	}
	return s.repo.Create(ctx, b)
}

// Purchase charges the bundle price and credits its grants. Essentials
// days extend from the later of now and the current expiry.
func (s *service) Purchase(ctx context.Context, userID, bundleID int) (*wallet.Balance, error) {
	var out *wallet.Balance
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		bal, err := s.wallets.GetForUpdate(ctx, q, userID)
		if err != nil {
			return err
		}
		b, err := s.repo.Get(ctx, q, bundleID)
		if err != nil {
			return err
		}
		if !b.Active {
			return fmt.Errorf("%w: bundle %d is no longer sold", apperr.ErrValidation, bundleID)
		}
		grantType, err := b.Kind.TxType()
		if err != nil {
			return err
		}

		if err := bal.Debit(b.Price); err != nil {
			return err
		}
		txs := []ledger.Transaction{
			ledger.New(userID, ledger.CurrencyCredits, b.Price.Neg(), ledger.TypeBundlePurchase, b.Name),
		}

		for _, g := range b.grants() {
			if err := bal.AddCount(g.currency, g.n); err != nil {
				return err
			}
			txs = append(txs, ledger.New(userID, g.currency, ledger.Units(g.n), grantType, b.Name))
		}

		if b.EssentialDays > 0 {
			from := s.now().UTC()
			if bal.EssentialTill != nil && bal.EssentialTill.After(from) {
				from = *bal.EssentialTill
			}
			till := from.AddDate(0, 0, b.EssentialDays)
			bal.EssentialTill = &till
			txs = append(txs, ledger.New(userID, ledger.CurrencyNone, ledger.Units(0), ledger.TypeBundleEssential,
				fmt.Sprintf("%s: essentials until %s", b.Name, till.Format("2006-01-02"))))
		}

		if err := s.wallets.Save(ctx, q, bal); err != nil {
			return err
		}
		if err := s.ledger.Append(ctx, q, txs); err != nil {
			return err
		}
		out = bal
		return nil
	})
	metrics.RecordPurchase("bundle", apperr.Kind(err))
	if err != nil {
		return nil, err
	}
	return out, nil
}
