package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/qwerty-development/gym-webapp-sub000/internal/activity"
	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/db"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/metrics"
	"github.com/qwerty-development/gym-webapp-sub000/internal/wallet"
)

type Service interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error)
	CreateGroupSession(ctx context.Context, req CreateSessionRequest) (*GroupSession, error)
	BookSession(ctx context.Context, sessionID, userID int, useToken bool) (*Session, error)
	JoinGroup(ctx context.Context, groupID, userID int, useToken bool) (*GroupSession, error)
	ListSessions(ctx context.Context, from, to time.Time) ([]SessionView, error)
	ListGroupSessions(ctx context.Context, from, to time.Time) ([]GroupSessionView, error)
	ListMySessions(ctx context.Context, userID int) (*MySessions, error)
}

type service struct {
	tx           db.Transactor
	bookingRepo  Repository
	activityRepo activity.Repository
	walletRepo   wallet.Repository
	ledgerRepo   ledger.Repository
}

func NewService(
	tx db.Transactor,
	bookingRepo Repository,
	activityRepo activity.Repository,
	walletRepo wallet.Repository,
	ledgerRepo ledger.Repository,
) Service {
	return &service{
		tx:           tx,
		bookingRepo:  bookingRepo,
		activityRepo: activityRepo,
		walletRepo:   walletRepo,
		ledgerRepo:   ledgerRepo,
	}
}

func parseSlot(req CreateSessionRequest) (time.Time, error) {
	date, err := time.Parse(DateLayout, req.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must look like %s", apperr.ErrValidation, DateLayout)
	}
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start_time must look like 15:04", apperr.ErrValidation)
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: end_time must look like 15:04", apperr.ErrValidation)
	}
	if !end.After(start) {
		return time.Time{}, fmt.Errorf("%w: end_time must be after start_time", apperr.ErrValidation)
	}
	return date, nil
}

func (s *service) checkSlotRefs(ctx context.Context, req CreateSessionRequest) error {
	if _, err := s.activityRepo.GetActivity(ctx, nil, req.ActivityID); err != nil {
		return err
	}
	if _, err := s.activityRepo.GetCoach(ctx, nil, req.CoachID); err != nil {
		return err
	}
	return nil
}

func (s *service) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	date, err := parseSlot(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkSlotRefs(ctx, req); err != nil {
		return nil, err
	}
	return s.bookingRepo.CreateSession(ctx, &Session{
		ActivityID: req.ActivityID,
		CoachID:    req.CoachID,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
}

func (s *service) CreateGroupSession(ctx context.Context, req CreateSessionRequest) (*GroupSession, error) {
	date, err := parseSlot(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkSlotRefs(ctx, req); err != nil {
		return nil, err
	}
	return s.bookingRepo.CreateGroupSession(ctx, &GroupSession{
		ActivityID: req.ActivityID,
		CoachID:    req.CoachID,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
}

// charge pays for one seat and returns the payment kind and its transaction.
// A requested token always wins; free members otherwise book at no cost.
func charge(b *wallet.Balance, kind ledger.SessionKind, tokenCurrency ledger.Currency, price decimal.Decimal, useToken bool, desc string) (ledger.Payment, ledger.Transaction, error) {
	switch {
	case useToken:
		if err := b.AddCount(tokenCurrency, -1); err != nil {
			return "", ledger.Transaction{}, err
		}
		return ledger.PaymentToken, ledger.New(b.UserID, tokenCurrency, ledger.Units(-1),
			ledger.SessionType(kind, ledger.PaymentToken), desc), nil
	case b.IsFree:
		return ledger.PaymentFree, ledger.New(b.UserID, ledger.CurrencyNone, decimal.Zero,
			ledger.SessionType(kind, ledger.PaymentFree), desc), nil
	default:
		if err := b.Debit(price); err != nil {
			return "", ledger.Transaction{}, err
		}
		return ledger.PaymentCredit, ledger.New(b.UserID, ledger.CurrencyCredits, price.Neg(),
			ledger.SessionType(kind, ledger.PaymentCredit), desc), nil
	}
}

func describe(a *activity.Activity, date time.Time, start string) string {
	return fmt.Sprintf("%s on %s at %s", a.Name, date.Format(DateLayout), start)
}

func (s *service) BookSession(ctx context.Context, sessionID, userID int, useToken bool) (*Session, error) {
	var (
		out     *Session
		payment ledger.Payment
	)
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		sess, err := s.bookingRepo.GetSessionForUpdate(ctx, q, sessionID)
		if err != nil {
			return err
		}
		if sess.Booked {
			return fmt.Errorf("%w: session %d is already booked", apperr.ErrValidation, sessionID)
		}

		bal, err := s.walletRepo.GetForUpdate(ctx, q, userID)
		if err != nil {
			return err
		}
		act, err := s.activityRepo.GetActivity(ctx, q, sess.ActivityID)
		if err != nil {
			return err
		}

		var txn ledger.Transaction
		payment, txn, err = charge(bal, ledger.KindIndividual, ledger.CurrencyPrivateToken,
			act.Credits, useToken, describe(act, sess.Date, sess.StartTime))
		if err != nil {
			return err
		}

		uid := userID
		sess.UserID = &uid
		sess.Booked = true
		sess.BookedWithToken = payment == ledger.PaymentToken
		sess.Additions = Items{}

		if err := s.bookingRepo.SaveSession(ctx, q, sess); err != nil {
			return err
		}
		if err := s.walletRepo.Save(ctx, q, bal); err != nil {
			return err
		}
		if err := s.ledgerRepo.Append(ctx, q, []ledger.Transaction{txn}); err != nil {
			return err
		}
		out = sess
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(ledger.KindIndividual), string(payment))
	return out, nil
}

// GroupKind picks the tag family and the token that pays for a group seat.
func GroupKind(a *activity.Activity) (ledger.SessionKind, ledger.Currency) {
	if a.SemiPrivate {
		return ledger.KindSemi, ledger.CurrencySemiPrivateToken
	}
	return ledger.KindGroup, ledger.CurrencyPublicToken
}

func (s *service) JoinGroup(ctx context.Context, groupID, userID int, useToken bool) (*GroupSession, error) {
	var (
		out     *GroupSession
		kind    ledger.SessionKind
		payment ledger.Payment
	)
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		g, err := s.bookingRepo.GetGroupForUpdate(ctx, q, groupID)
		if err != nil {
			return err
		}
		act, err := s.activityRepo.GetActivity(ctx, q, g.ActivityID)
		if err != nil {
			return err
		}
		if g.Has(userID) {
			return fmt.Errorf("%w: already booked into group session %d", apperr.ErrValidation, groupID)
		}
		if g.Booked(act.Capacity) {
			return fmt.Errorf("%w: group session %d is full", apperr.ErrValidation, groupID)
		}

		bal, err := s.walletRepo.GetForUpdate(ctx, q, userID)
		if err != nil {
			return err
		}

		var (
			tokenCurrency ledger.Currency
			txn           ledger.Transaction
		)
		kind, tokenCurrency = GroupKind(act)
		payment, txn, err = charge(bal, kind, tokenCurrency, act.Credits, useToken, describe(act, g.Date, g.StartTime))
		if err != nil {
			return err
		}

		g.Join(userID, payment == ledger.PaymentToken)

		if err := s.bookingRepo.SaveGroup(ctx, q, g); err != nil {
			return err
		}
		if err := s.walletRepo.Save(ctx, q, bal); err != nil {
			return err
		}
		if err := s.ledgerRepo.Append(ctx, q, []ledger.Transaction{txn}); err != nil {
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(kind), string(payment))
	return out, nil
}

func (s *service) ListSessions(ctx context.Context, from, to time.Time) ([]SessionView, error) {
	return s.bookingRepo.ListSessions(ctx, from, to)
}

func (s *service) ListGroupSessions(ctx context.Context, from, to time.Time) ([]GroupSessionView, error) {
	return s.bookingRepo.ListGroupSessions(ctx, from, to)
}

func (s *service) ListMySessions(ctx context.Context, userID int) (*MySessions, error) {
	individual, err := s.bookingRepo.ListUserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	group, err := s.bookingRepo.ListUserGroupSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MySessions{Individual: individual, Group: group}, nil
}
