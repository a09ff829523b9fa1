// Package cancellation cancels bookings and returns what was paid for them.
//
// Every cancellation runs inside one database transaction. Rows are locked
// in a fixed order (booking, then wallets by user id, then market items by
// id) so two participants leaving the same group session serialize instead
// of overwriting each other's refunds. Notifications go out after commit
// and never fail the cancellation.
package cancellation

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/qwerty-development/gym-webapp-sub000/internal/activity"
	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/booking"
	"github.com/qwerty-development/gym-webapp-sub000/internal/db"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/logger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/market"
	"github.com/qwerty-development/gym-webapp-sub000/internal/metrics"
	"github.com/qwerty-development/gym-webapp-sub000/internal/notify"
	"github.com/qwerty-development/gym-webapp-sub000/internal/refund"
	"github.com/qwerty-development/gym-webapp-sub000/internal/user"
	"github.com/qwerty-development/gym-webapp-sub000/internal/wallet"
)

type Notifier interface {
	NotifyCancellation(ctx context.Context, c notify.Cancellation) error
}

// Result is what callers see. Err carries the wrapped cause for the HTTP
// layer and is never serialized.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

type Service struct {
	tx         db.Transactor
	bookings   booking.Repository
	wallets    wallet.Repository
	activities activity.Repository
	items      market.Repository
	ledger     ledger.Repository
	users      user.Repository
	notifier   Notifier
}

func NewService(
	tx db.Transactor,
	bookings booking.Repository,
	wallets wallet.Repository,
	activities activity.Repository,
	items market.Repository,
	ledgerRepo ledger.Repository,
	users user.Repository,
	notifier Notifier,
) *Service {
	return &Service{
		tx:         tx,
		bookings:   bookings,
		wallets:    wallets,
		activities: activities,
		items:      items,
		ledger:     ledgerRepo,
		users:      users,
		notifier:   notifier,
	}
}

// slot describes the cancelled booking for notifications.
type slot struct {
	activity *activity.Activity
	coach    *activity.Coach
	date     string
	start    string
	end      string
}

type outcome struct {
	slot  slot
	plans []refund.Plan
}

func describe(a *activity.Activity, date, start string) string {
	return fmt.Sprintf("%s on %s at %s", a.Name, date, start)
}

// CancelIndividual cancels a private session held by userID.
func (s *Service) CancelIndividual(ctx context.Context, sessionID, userID int) Result {
	return s.run(ctx, refund.ScopeIndividual, func() (outcome, error) {
		var out outcome
		err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
			sess, err := s.bookings.GetSessionForUpdate(ctx, q, sessionID)
			if err != nil {
				return err
			}
			if !sess.OwnedBy(userID) {
				return fmt.Errorf("%w: session %d is not booked by user %d", apperr.ErrUnauthorized, sessionID, userID)
			}

			bal, err := s.wallets.GetForUpdate(ctx, q, userID)
			if err != nil {
				return err
			}
			sl, err := s.loadSlot(ctx, q, sess.ActivityID, sess.CoachID)
			if err != nil {
				return err
			}
			sl.date, sl.start, sl.end = sess.Date.Format(booking.DateLayout), sess.StartTime, sess.EndTime

			catalog, err := s.lockItems(ctx, q, sess.Additions.IDs())
			if err != nil {
				return err
			}

			plan, err := refund.Compute(refund.Request{
				Scope:         refund.ScopeIndividual,
				UserID:        userID,
				PaidWithToken: sess.BookedWithToken,
				Credits:       sl.activity.Credits,
				SemiPrivate:   sl.activity.SemiPrivate,
				IsFree:        bal.IsFree,
				Punches:       bal.Punches,
				ShakeToken:    bal.ShakeToken,
				Additions:     sess.Additions,
				Catalog:       catalog,
				Description:   describe(sl.activity, sl.date, sl.start),
			})
			if err != nil {
				return err
			}

			sess.Clear()
			if err := s.bookings.SaveSession(ctx, q, sess); err != nil {
				return err
			}
			if err := s.settle(ctx, q, []refund.Plan{plan}, map[int]*wallet.Balance{userID: bal}); err != nil {
				return err
			}

			out = outcome{slot: sl, plans: []refund.Plan{plan}}
			return nil
		})
		return out, err
	})
}

// CancelGroup removes userID from a group session. Other participants keep
// their seats, token flags and additions.
func (s *Service) CancelGroup(ctx context.Context, groupID, userID int) Result {
	return s.run(ctx, refund.ScopeGroup, func() (outcome, error) {
		var out outcome
		err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
			g, err := s.bookings.GetGroupForUpdate(ctx, q, groupID)
			if err != nil {
				return err
			}
			if !g.Has(userID) {
				return fmt.Errorf("%w: user %d is not booked into group session %d", apperr.ErrUnauthorized, userID, groupID)
			}

			bal, err := s.wallets.GetForUpdate(ctx, q, userID)
			if err != nil {
				return err
			}
			sl, err := s.loadSlot(ctx, q, g.ActivityID, g.CoachID)
			if err != nil {
				return err
			}
			sl.date, sl.start, sl.end = g.Date.Format(booking.DateLayout), g.StartTime, g.EndTime

			own := g.Additions.For(userID)
			catalog, err := s.lockItems(ctx, q, own.IDs())
			if err != nil {
				return err
			}

			plan, err := refund.Compute(s.groupRequest(g, sl, bal, own, catalog))
			if err != nil {
				return err
			}

			g.Remove(userID)
			if err := s.bookings.SaveGroup(ctx, q, g); err != nil {
				return err
			}
			if err := s.settle(ctx, q, []refund.Plan{plan}, map[int]*wallet.Balance{userID: bal}); err != nil {
				return err
			}

			out = outcome{slot: sl, plans: []refund.Plan{plan}}
			return nil
		})
		return out, err
	})
}

// CancelGroupForAll refunds every participant and empties the slot.
func (s *Service) CancelGroupForAll(ctx context.Context, groupID int) Result {
	return s.run(ctx, refund.ScopeGroup, func() (outcome, error) {
		var out outcome
		err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
			g, err := s.bookings.GetGroupForUpdate(ctx, q, groupID)
			if err != nil {
				return err
			}
			if g.Count() == 0 {
				return fmt.Errorf("%w: group session %d has no participants", apperr.ErrValidation, groupID)
			}

			participants := append([]int(nil), g.UserIDs...)
			sort.Ints(participants)

			balances, err := s.wallets.GetManyForUpdate(ctx, q, participants)
			if err != nil {
				return err
			}
			sl, err := s.loadSlot(ctx, q, g.ActivityID, g.CoachID)
			if err != nil {
				return err
			}
			sl.date, sl.start, sl.end = g.Date.Format(booking.DateLayout), g.StartTime, g.EndTime

			var ids []int
			for _, uid := range participants {
				ids = append(ids, g.Additions.For(uid).IDs()...)
			}
			catalog, err := s.lockItems(ctx, q, ids)
			if err != nil {
				return err
			}

			plans := make([]refund.Plan, 0, len(participants))
			for _, uid := range participants {
				plan, err := refund.Compute(s.groupRequest(g, sl, balances[uid], g.Additions.For(uid), catalog))
				if err != nil {
					return err
				}
				plans = append(plans, plan)
			}

			g.ClearAll()
			if err := s.bookings.SaveGroup(ctx, q, g); err != nil {
				return err
			}
			if err := s.settle(ctx, q, plans, balances); err != nil {
				return err
			}

			out = outcome{slot: sl, plans: plans}
			return nil
		})
		return out, err
	})
}

func (s *Service) groupRequest(g *booking.GroupSession, sl slot, bal *wallet.Balance, own booking.Items, catalog map[int]market.Item) refund.Request {
	return refund.Request{
		Scope:         refund.ScopeGroup,
		UserID:        bal.UserID,
		PaidWithToken: g.PaidWithToken(bal.UserID),
		Credits:       sl.activity.Credits,
		SemiPrivate:   sl.activity.SemiPrivate,
		IsFree:        bal.IsFree,
		Punches:       bal.Punches,
		ShakeToken:    bal.ShakeToken,
		Additions:     own,
		Catalog:       catalog,
		Description:   describe(sl.activity, sl.date, sl.start),
	}
}

func (s *Service) loadSlot(ctx context.Context, q sqlx.ExtContext, activityID, coachID int) (slot, error) {
	act, err := s.activities.GetActivity(ctx, q, activityID)
	if err != nil {
		return slot{}, err
	}
	coach, err := s.activities.GetCoach(ctx, q, coachID)
	if err != nil {
		return slot{}, err
	}
	return slot{activity: act, coach: coach}, nil
}

func (s *Service) lockItems(ctx context.Context, q sqlx.ExtContext, ids []int) (map[int]market.Item, error) {
	if len(ids) == 0 {
		return map[int]market.Item{}, nil
	}
	return s.items.GetForUpdate(ctx, q, ids)
}

// settle restocks the refunded add-ons, writes the wallets and appends the
// transactions of every plan. Any failure aborts the whole cancellation.
func (s *Service) settle(ctx context.Context, q sqlx.ExtContext, plans []refund.Plan, balances map[int]*wallet.Balance) error {
	restock := map[int]int{}
	var txs []ledger.Transaction
	for _, p := range plans {
		for _, id := range p.ItemsToRestock {
			restock[id]++
		}
		txs = append(txs, p.Transactions...)
	}

	ids := make([]int, 0, len(restock))
	for id := range restock {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if err := s.items.AdjustQuantity(ctx, q, id, restock[id]); err != nil {
			return fmt.Errorf("restock item %d: %w", id, err)
		}
	}

	for _, p := range plans {
		bal := balances[p.UserID]
		if err := p.Apply(bal); err != nil {
			return err
		}
		if err := s.wallets.Save(ctx, q, bal); err != nil {
			return err
		}
	}

	return s.ledger.Append(ctx, q, txs)
}

// run converts the unit of work into a Result, sends notifications on
// success and records metrics either way.
func (s *Service) run(ctx context.Context, scope refund.Scope, work func() (outcome, error)) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("cancellation panicked", "scope", string(scope), "panic", r)
			err := fmt.Errorf("cancellation aborted: %v", r)
			metrics.RecordCancellation(string(scope), apperr.Kind(err))
			res = Result{Error: "internal error", Err: err}
		}
	}()

	out, err := work()
	metrics.RecordCancellation(string(scope), apperr.Kind(err))
	if err != nil {
		logger.Warn("cancellation failed", "scope", string(scope), "error", err)
		msg := err.Error()
		if apperr.Status(err) >= 500 {
			msg = "internal error"
		}
		return Result{Error: msg, Err: err}
	}

	for _, p := range out.plans {
		metrics.RecordRefund(p.CreditDelta.InexactFloat64(), string(p.TokenCurrency), p.TokenDelta, p.PenaltyApplied > 0)
		s.notify(ctx, out.slot, p)
	}

	if len(out.plans) == 1 {
		return Result{Success: true, Message: fmt.Sprintf("Booking cancelled: %s", out.plans[0].Details())}
	}
	return Result{Success: true, Message: fmt.Sprintf("Group session cancelled for %d participants", len(out.plans))}
}

func (s *Service) notify(ctx context.Context, sl slot, p refund.Plan) {
	if s.notifier == nil {
		return
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		logger.Warn("skipping cancellation notice", "user_id", p.UserID, "error", err)
		return
	}
	c := notify.Cancellation{
		UserName:      u.Name,
		UserEmail:     u.Email,
		ActivityName:  sl.activity.Name,
		Date:          sl.date,
		StartTime:     sl.start,
		EndTime:       sl.end,
		CoachName:     sl.coach.Name,
		RefundDetails: p.Details(),
	}
	if err := s.notifier.NotifyCancellation(ctx, c); err != nil {
		logger.Warn("cancellation notice not queued", "user_id", p.UserID, "error", err)
	}
}
