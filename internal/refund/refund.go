// Package refund computes what a cancellation gives back. It performs no
// I/O: callers load and lock the rows, run Compute, then persist the Plan.
package refund

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/booking"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/market"
	"github.com/qwerty-development/gym-webapp-sub000/internal/wallet"
)

// LoyaltyPenalty is the flat number of shake tokens clawed back when a
// cancellation drops the punch counter below a reward tier it had reached.
// It does not scale with the number of items or tiers.
const LoyaltyPenalty = wallet.TierReward

type Scope string

const (
	ScopeIndividual Scope = "individual"
	ScopeGroup      Scope = "group"
)

// Request is the snapshot of one participant's booking.
type Request struct {
	Scope         Scope
	UserID        int
	PaidWithToken bool
	Credits       decimal.Decimal
	SemiPrivate   bool
	IsFree        bool
	Punches       int
	ShakeToken    int
	// Additions are the participant's own lines only.
	Additions booking.Items
	// Catalog holds the market row for every addition id.
	Catalog     map[int]market.Item
	Description string
}

type Plan struct {
	UserID          int
	Kind            ledger.SessionKind
	Payment         ledger.Payment
	SessionCredit   decimal.Decimal
	AdditionsCredit decimal.Decimal
	// CreditDelta is SessionCredit + AdditionsCredit and never negative.
	CreditDelta   decimal.Decimal
	TokenCurrency ledger.Currency
	TokenDelta    int

	ShakeTokenRefund  int
	ShakeTokenPenalty int
	// PenaltyApplied is the part of ShakeTokenPenalty the wallet could
	// cover once the refund was added; the counter never goes negative.
	PenaltyApplied  int
	PunchesToDeduct int
	ItemsToRestock  []int

	Transactions []ledger.Transaction
}

func kindOf(r Request) ledger.SessionKind {
	switch {
	case r.Scope == ScopeIndividual:
		return ledger.KindIndividual
	case r.SemiPrivate:
		return ledger.KindSemi
	default:
		return ledger.KindGroup
	}
}

func tokenCurrency(kind ledger.SessionKind) ledger.Currency {
	switch kind {
	case ledger.KindIndividual:
		return ledger.CurrencyPrivateToken
	case ledger.KindSemi:
		return ledger.CurrencySemiPrivateToken
	default:
		return ledger.CurrencyPublicToken
	}
}

// Compute builds the refund plan for one participant.
func Compute(r Request) (Plan, error) {
	p := Plan{
		UserID:          r.UserID,
		Kind:            kindOf(r),
		SessionCredit:   decimal.Zero,
		AdditionsCredit: decimal.Zero,
		ItemsToRestock:  []int{},
	}

	switch {
	case r.PaidWithToken:
		p.Payment = ledger.PaymentToken
		p.TokenCurrency = tokenCurrency(p.Kind)
		p.TokenDelta = 1
		p.Transactions = append(p.Transactions, ledger.New(r.UserID, p.TokenCurrency, ledger.Units(1),
			ledger.CancelType(p.Kind, ledger.PaymentToken), r.Description))
	case r.IsFree:
		p.Payment = ledger.PaymentFree
		p.Transactions = append(p.Transactions, ledger.New(r.UserID, ledger.CurrencyNone, decimal.Zero,
			ledger.CancelType(p.Kind, ledger.PaymentFree), r.Description))
	default:
		p.Payment = ledger.PaymentCredit
		p.SessionCredit = r.Credits
		p.Transactions = append(p.Transactions, ledger.New(r.UserID, ledger.CurrencyCredits, r.Credits,
			ledger.CancelType(p.Kind, ledger.PaymentCredit), r.Description))
	}

	var creditNames, proteinNames []string
	for _, line := range r.Additions {
		item, ok := r.Catalog[line.ID]
		if !ok {
			return Plan{}, fmt.Errorf("market item %d: %w", line.ID, apperr.ErrNotFound)
		}
		if item.IsProtein() {
			p.ShakeTokenRefund++
			proteinNames = append(proteinNames, item.Name)
		} else {
			p.AdditionsCredit = p.AdditionsCredit.Add(line.Price)
			creditNames = append(creditNames, item.Name)
		}
		p.ItemsToRestock = append(p.ItemsToRestock, line.ID)
	}
	p.CreditDelta = p.SessionCredit.Add(p.AdditionsCredit)

	if p.AdditionsCredit.IsPositive() {
		p.Transactions = append(p.Transactions, ledger.New(r.UserID, ledger.CurrencyCredits, p.AdditionsCredit,
			ledger.TypeMarketRefund, strings.Join(creditNames, ", ")))
	}
	if p.ShakeTokenRefund > 0 {
		p.Transactions = append(p.Transactions, ledger.New(r.UserID, ledger.CurrencyShakeToken, ledger.Units(p.ShakeTokenRefund),
			ledger.TypeShakeTokenRefund, strings.Join(proteinNames, ", ")))
	}

	if p.ShakeTokenRefund > 0 && r.Punches > 0 {
		p.PunchesToDeduct = p.ShakeTokenRefund
		if p.PunchesToDeduct > r.Punches {
			p.PunchesToDeduct = r.Punches
		}
		newPunches := r.Punches - p.PunchesToDeduct
		p.Transactions = append(p.Transactions, ledger.New(r.UserID, ledger.CurrencyPunches, ledger.Units(-p.PunchesToDeduct),
			ledger.TypePunchRemove, r.Description))

		if wallet.Tier(r.Punches) > wallet.Tier(newPunches) {
			p.ShakeTokenPenalty = LoyaltyPenalty
			p.PenaltyApplied = p.ShakeTokenPenalty
			if avail := r.ShakeToken + p.ShakeTokenRefund; p.PenaltyApplied > avail {
				p.PenaltyApplied = avail
			}
			if p.PenaltyApplied > 0 {
				p.Transactions = append(p.Transactions, ledger.New(r.UserID, ledger.CurrencyShakeToken, ledger.Units(-p.PenaltyApplied),
					ledger.TypeLoyaltyPenalty, fmt.Sprintf("Reward tier %d revoked", wallet.Tier(r.Punches))))
			}
		}
	}

	return p, nil
}

// Apply moves the plan onto b. Shake tokens and punches are clamped at zero.
func (p Plan) Apply(b *wallet.Balance) error {
	b.Credits = b.Credits.Add(p.CreditDelta)
	if p.TokenDelta != 0 {
		if err := b.AddCount(p.TokenCurrency, p.TokenDelta); err != nil {
			return err
		}
	}

	b.ShakeToken += p.ShakeTokenRefund - p.ShakeTokenPenalty
	if b.ShakeToken < 0 {
		b.ShakeToken = 0
	}
	b.Punches -= p.PunchesToDeduct
	if b.Punches < 0 {
		b.Punches = 0
	}
	return nil
}

// Details renders the plan for the notification payload.
func (p Plan) Details() string {
	var parts []string
	switch p.Payment {
	case ledger.PaymentToken:
		parts = append(parts, fmt.Sprintf("1 %s refunded", p.TokenCurrency))
	case ledger.PaymentFree:
		parts = append(parts, "no session charge to refund")
	default:
		parts = append(parts, fmt.Sprintf("%s credits refunded for the session", p.SessionCredit.StringFixed(2)))
	}
	if p.AdditionsCredit.IsPositive() {
		parts = append(parts, fmt.Sprintf("%s credits refunded for add-ons", p.AdditionsCredit.StringFixed(2)))
	}
	if p.ShakeTokenRefund > 0 {
		parts = append(parts, fmt.Sprintf("%d shake token(s) refunded", p.ShakeTokenRefund))
	}
	if p.PunchesToDeduct > 0 {
		parts = append(parts, fmt.Sprintf("%d punch(es) removed", p.PunchesToDeduct))
	}
	if p.PenaltyApplied > 0 {
		parts = append(parts, fmt.Sprintf("%d shake token(s) reclaimed for the lost reward", p.PenaltyApplied))
	}
	return strings.Join(parts, "; ")
}
