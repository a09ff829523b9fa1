// Package purchase charges members for market items, either as add-ons to
// a booked session or as a plain shop checkout.
package purchase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/booking"
	"github.com/qwerty-development/gym-webapp-sub000/internal/db"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/market"
	"github.com/qwerty-development/gym-webapp-sub000/internal/metrics"
	"github.com/qwerty-development/gym-webapp-sub000/internal/wallet"
)

const (
	kindSessionItems = "session_items"
	kindGroupItems   = "group_items"
	kindCheckout     = "checkout"
)

var validate = validator.New()

type Service struct {
	tx       db.Transactor
	bookings booking.Repository
	wallets  wallet.Repository
	items    market.Repository
	ledger   ledger.Repository
}

func NewService(tx db.Transactor, bookings booking.Repository, wallets wallet.Repository, items market.Repository, ledgerRepo ledger.Repository) *Service {
	return &Service{
		tx:       tx,
		bookings: bookings,
		wallets:  wallets,
		items:    items,
		ledger:   ledgerRepo,
	}
}

func validateCart(cart Cart) error {
	if err := validate.Struct(cart); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrValidation, err.Error())
	}
	return nil
}

// PayForItems adds items to the private session userID holds.
func (s *Service) PayForItems(ctx context.Context, sessionID, userID int, cart Cart) (*Receipt, error) {
	return s.record(kindSessionItems, func() (*Receipt, error) {
		if err := validateCart(cart); err != nil {
			return nil, err
		}
		var out *Receipt
		err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
			sess, err := s.bookings.GetSessionForUpdate(ctx, q, sessionID)
			if err != nil {
				return err
			}
			if !sess.OwnedBy(userID) {
				return fmt.Errorf("%w: session %d is not booked by user %d", apperr.ErrUnauthorized, sessionID, userID)
			}

			r, err := s.buy(ctx, q, userID, cart)
			if err != nil {
				return err
			}
			sess.Additions = append(sess.Additions, r.Items...)
			if err := s.bookings.SaveSession(ctx, q, sess); err != nil {
				return err
			}
			out = r
			return nil
		})
		return out, err
	})
}

// PayForGroupItems adds items to userID's own entry of a group session.
func (s *Service) PayForGroupItems(ctx context.Context, groupID, userID int, cart Cart) (*Receipt, error) {
	return s.record(kindGroupItems, func() (*Receipt, error) {
		if err := validateCart(cart); err != nil {
			return nil, err
		}
		var out *Receipt
		err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
			g, err := s.bookings.GetGroupForUpdate(ctx, q, groupID)
			if err != nil {
				return err
			}
			if !g.Has(userID) {
				return fmt.Errorf("%w: user %d is not booked into group session %d", apperr.ErrUnauthorized, userID, groupID)
			}

			r, err := s.buy(ctx, q, userID, cart)
			if err != nil {
				return err
			}
			g.Additions = g.Additions.Add(userID, r.Items)
			if err := s.bookings.SaveGroup(ctx, q, g); err != nil {
				return err
			}
			out = r
			return nil
		})
		return out, err
	})
}

// Checkout sells items from the shop without a booking.
func (s *Service) Checkout(ctx context.Context, userID int, cart Cart) (*Receipt, error) {
	return s.record(kindCheckout, func() (*Receipt, error) {
		if err := validateCart(cart); err != nil {
			return nil, err
		}
		var out *Receipt
		err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
			r, err := s.buy(ctx, q, userID, cart)
			if err != nil {
				return err
			}
			out = r
			return nil
		})
		return out, err
	})
}

func (s *Service) record(kind string, fn func() (*Receipt, error)) (*Receipt, error) {
	r, err := fn()
	metrics.RecordPurchase(kind, apperr.Kind(err))
	return r, err
}

// buy locks the wallet and the items, charges, takes the stock and writes
// the wallet and its transactions. The caller owns the booking row.
func (s *Service) buy(ctx context.Context, q sqlx.ExtContext, userID int, cart Cart) (*Receipt, error) {
	bal, err := s.wallets.GetForUpdate(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.items.GetForUpdate(ctx, q, cart.itemIDs())
	if err != nil {
		return nil, err
	}

	p, err := Quote(cart, catalog, bal.ShakeToken)
	if err != nil {
		return nil, err
	}
	if err := bal.Debit(p.AdjustedTotal); err != nil {
		return nil, err
	}

	taken := map[int]int{}
	for _, u := range p.Units {
		taken[u.Item.ID]++
	}
	ids := make([]int, 0, len(taken))
	for id := range taken {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if err := s.items.AdjustQuantity(ctx, q, id, -taken[id]); err != nil {
			return nil, err
		}
	}

	desc := describe(p.Units)
	var txs []ledger.Transaction
	if p.AdjustedTotal.IsPositive() {
		txs = append(txs, ledger.New(userID, ledger.CurrencyCredits, p.AdjustedTotal.Neg(), ledger.TypeMarketPurchase, desc))
	}
	if p.TokensUsed > 0 {
		if err := bal.AddCount(ledger.CurrencyShakeToken, -p.TokensUsed); err != nil {
			return nil, err
		}
		txs = append(txs, ledger.New(userID, ledger.CurrencyShakeToken, ledger.Units(-p.TokensUsed), ledger.TypeShakeTokenRedemption, desc))
	}

	reward := 0
	if p.ProteinUnits > 0 {
		before := wallet.Tier(bal.Punches)
		bal.Punches += p.ProteinUnits
		reward = (wallet.Tier(bal.Punches) - before) * wallet.TierReward
		txs = append(txs, ledger.New(userID, ledger.CurrencyPunches, ledger.Units(p.ProteinUnits), ledger.TypePunchEarn, desc))
		if reward > 0 {
			bal.ShakeToken += reward
			txs = append(txs, ledger.New(userID, ledger.CurrencyShakeToken, ledger.Units(reward), ledger.TypePunchCardReward,
				fmt.Sprintf("Punch card tier %d reached", wallet.Tier(bal.Punches))))
		}
	}

	if err := s.wallets.Save(ctx, q, bal); err != nil {
		return nil, err
	}
	if err := s.ledger.Append(ctx, q, txs); err != nil {
		return nil, err
	}

	lines := make(booking.Items, 0, len(p.Units))
	for _, u := range p.Units {
		lines = append(lines, booking.Item{ID: u.Item.ID, Name: u.Item.Name, Price: u.Item.Price})
	}
	return &Receipt{
		Total:             p.Total,
		Charged:           p.AdjustedTotal,
		ShakeTokensUsed:   p.TokensUsed,
		PunchesEarned:     p.ProteinUnits,
		ShakeTokensEarned: reward,
		Items:             lines,
		Wallet:            bal,
	}, nil
}

// describe renders "2x Towel, 1x Protein Shake" keeping first-seen order.
func describe(units []Unit) string {
	var order []string
	counts := map[string]int{}
	for _, u := range units {
		if counts[u.Item.Name] == 0 {
			order = append(order, u.Item.Name)
		}
		counts[u.Item.Name]++
	}
	parts := make([]string, 0, len(order))
	for _, name := range order {
		parts = append(parts, fmt.Sprintf("%dx %s", counts[name], name))
	}
	return strings.Join(parts, ", ")
}
