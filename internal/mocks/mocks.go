// Package mocks holds testify doubles for the store interfaces shared by the
// booking, cancellation, purchase and bundle services.
package mocks

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/qwerty-development/gym-webapp-sub000/internal/activity"
	"github.com/qwerty-development/gym-webapp-sub000/internal/booking"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/market"
	"github.com/qwerty-development/gym-webapp-sub000/internal/notify"
	"github.com/qwerty-development/gym-webapp-sub000/internal/user"
	"github.com/qwerty-development/gym-webapp-sub000/internal/wallet"
)

// Tx runs the unit of work without a database. Commits counts the units
// that returned nil.
type Tx struct {
	Commits   int
	Rollbacks int
}

func (t *Tx) WithinTx(ctx context.Context, fn func(q sqlx.ExtContext) error) error {
	if err := fn(nil); err != nil {
		t.Rollbacks++
		return err
	}
	t.Commits++
	return nil
}

type WalletRepo struct{ mock.Mock }

func (m *WalletRepo) Get(ctx context.Context, userID int) (*wallet.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Balance), args.Error(1)
}

func (m *WalletRepo) GetOrCreate(ctx context.Context, userID int) (*wallet.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Balance), args.Error(1)
}

func (m *WalletRepo) Create(ctx context.Context, q sqlx.ExtContext, userID int) error {
	return m.Called(ctx, q, userID).Error(0)
}

func (m *WalletRepo) GetForUpdate(ctx context.Context, q sqlx.ExtContext, userID int) (*wallet.Balance, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Balance), args.Error(1)
}

func (m *WalletRepo) GetManyForUpdate(ctx context.Context, q sqlx.ExtContext, userIDs []int) (map[int]*wallet.Balance, error) {
	args := m.Called(ctx, q, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]*wallet.Balance), args.Error(1)
}

func (m *WalletRepo) Save(ctx context.Context, q sqlx.ExtContext, b *wallet.Balance) error {
	return m.Called(ctx, q, b).Error(0)
}

type LedgerRepo struct{ mock.Mock }

func (m *LedgerRepo) Append(ctx context.Context, q sqlx.ExtContext, txs []ledger.Transaction) error {
	return m.Called(ctx, q, txs).Error(0)
}

func (m *LedgerRepo) ListByUser(ctx context.Context, userID int, limit, offset int) ([]ledger.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *LedgerRepo) List(ctx context.Context, f ledger.Filter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *LedgerRepo) Summary(ctx context.Context, from, to time.Time) ([]ledger.SummaryRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.SummaryRow), args.Error(1)
}

// Appended returns every transaction passed to Append, in call order.
func (m *LedgerRepo) Appended() []ledger.Transaction {
	var out []ledger.Transaction
	for _, c := range m.Calls {
		if c.Method == "Append" {
			out = append(out, c.Arguments.Get(2).([]ledger.Transaction)...)
		}
	}
	return out
}

type MarketRepo struct{ mock.Mock }

func (m *MarketRepo) List(ctx context.Context) ([]market.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]market.Item), args.Error(1)
}

func (m *MarketRepo) Create(ctx context.Context, name string, price decimal.Decimal, quantity int) (*market.Item, error) {
	args := m.Called(ctx, name, price, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*market.Item), args.Error(1)
}

func (m *MarketRepo) GetForUpdate(ctx context.Context, q sqlx.ExtContext, ids []int) (map[int]market.Item, error) {
	args := m.Called(ctx, q, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]market.Item), args.Error(1)
}

func (m *MarketRepo) AdjustQuantity(ctx context.Context, q sqlx.ExtContext, id, delta int) error {
	return m.Called(ctx, q, id, delta).Error(0)
}

func (m *MarketRepo) Restock(ctx context.Context, id, quantity int) (*market.Item, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*market.Item), args.Error(1)
}

type ActivityRepo struct{ mock.Mock }

func (m *ActivityRepo) CreateActivity(ctx context.Context, name string, credits decimal.Decimal, capacity int, semiPrivate bool) (*activity.Activity, error) {
	args := m.Called(ctx, name, credits, capacity, semiPrivate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.Activity), args.Error(1)
}

func (m *ActivityRepo) ListActivities(ctx context.Context) ([]activity.Activity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]activity.Activity), args.Error(1)
}

func (m *ActivityRepo) GetActivity(ctx context.Context, q sqlx.QueryerContext, id int) (*activity.Activity, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.Activity), args.Error(1)
}

func (m *ActivityRepo) CreateCoach(ctx context.Context, name, email string) (*activity.Coach, error) {
	args := m.Called(ctx, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.Coach), args.Error(1)
}

func (m *ActivityRepo) ListCoaches(ctx context.Context) ([]activity.Coach, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]activity.Coach), args.Error(1)
}

func (m *ActivityRepo) GetCoach(ctx context.Context, q sqlx.QueryerContext, id int) (*activity.Coach, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.Coach), args.Error(1)
}

type BookingRepo struct{ mock.Mock }

func (m *BookingRepo) CreateSession(ctx context.Context, s *booking.Session) (*booking.Session, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Session), args.Error(1)
}

func (m *BookingRepo) CreateGroupSession(ctx context.Context, g *booking.GroupSession) (*booking.GroupSession, error) {
	args := m.Called(ctx, g)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.GroupSession), args.Error(1)
}

func (m *BookingRepo) GetSessionForUpdate(ctx context.Context, q sqlx.ExtContext, id int) (*booking.Session, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Session), args.Error(1)
}

func (m *BookingRepo) GetGroupForUpdate(ctx context.Context, q sqlx.ExtContext, id int) (*booking.GroupSession, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.GroupSession), args.Error(1)
}

func (m *BookingRepo) SaveSession(ctx context.Context, q sqlx.ExtContext, s *booking.Session) error {
	return m.Called(ctx, q, s).Error(0)
}

func (m *BookingRepo) SaveGroup(ctx context.Context, q sqlx.ExtContext, g *booking.GroupSession) error {
	return m.Called(ctx, q, g).Error(0)
}

func (m *BookingRepo) ListSessions(ctx context.Context, from, to time.Time) ([]booking.SessionView, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.SessionView), args.Error(1)
}

func (m *BookingRepo) ListUserSessions(ctx context.Context, userID int) ([]booking.SessionView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.SessionView), args.Error(1)
}

func (m *BookingRepo) ListGroupSessions(ctx context.Context, from, to time.Time) ([]booking.GroupSessionView, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.GroupSessionView), args.Error(1)
}

func (m *BookingRepo) ListUserGroupSessions(ctx context.Context, userID int) ([]booking.GroupSessionView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.GroupSessionView), args.Error(1)
}

type UserRepo struct{ mock.Mock }

func (m *UserRepo) Create(ctx context.Context, q sqlx.ExtContext, name, email, passwordHash, role string) (*user.User, error) {
	args := m.Called(ctx, q, name, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *UserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *UserRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type Notifier struct{ mock.Mock }

func (m *Notifier) NotifyCancellation(ctx context.Context, c notify.Cancellation) error {
	return m.Called(ctx, c).Error(0)
}
