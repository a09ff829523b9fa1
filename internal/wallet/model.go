package wallet

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
)

const (
	// PunchTier is the number of punches that earns one reward.
	PunchTier = 10
	// TierReward is the shake tokens granted per reward tier crossed on a
	// purchase, and the flat amount clawed back when a cancellation un-earns
	// a tier.
	TierReward = 2
)

// Tier returns the reward tier a punch count sits in.
func Tier(punches int) int {
	if punches < 0 {
		return 0
	}
	return punches / PunchTier
}

// Balance is the per-user wallet: general credits, five token counters and
// the punch-card counter. It is only mutated through ledger operations.
type Balance struct {
	UserID           int             `db:"user_id" json:"user_id"`
	Credits          decimal.Decimal `db:"credits" json:"wallet"`
	PrivateToken     int             `db:"private_token" json:"private_token"`
	SemiPrivateToken int             `db:"semi_private_token" json:"semi_private_token"`
	PublicToken      int             `db:"public_token" json:"public_token"`
	WorkoutDayToken  int             `db:"workout_day_token" json:"workout_day_token"`
	ShakeToken       int             `db:"shake_token" json:"shake_token"`
	Punches          int             `db:"punches" json:"punches"`
	IsFree           bool            `db:"is_free" json:"is_free"`
	EssentialTill    *time.Time      `db:"essential_till" json:"essential_till,omitempty"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

func (b *Balance) counter(c ledger.Currency) (*int, error) {
	switch c {
	case ledger.CurrencyPrivateToken:
		return &b.PrivateToken, nil
	case ledger.CurrencySemiPrivateToken:
		return &b.SemiPrivateToken, nil
	case ledger.CurrencyPublicToken:
		return &b.PublicToken, nil
	case ledger.CurrencyWorkoutDayToken:
		return &b.WorkoutDayToken, nil
	case ledger.CurrencyShakeToken:
		return &b.ShakeToken, nil
	case ledger.CurrencyPunches:
		return &b.Punches, nil
	}
	return nil, fmt.Errorf("%w: %q is not a counter currency", apperr.ErrValidation, c)
}

// Count returns the counter for a token or punch currency, 0 for others.
func (b *Balance) Count(c ledger.Currency) int {
	p, err := b.counter(c)
	if err != nil {
		return 0
	}
	return *p
}

// AddCount moves a counter by delta and refuses to take it below zero.
func (b *Balance) AddCount(c ledger.Currency, delta int) error {
	p, err := b.counter(c)
	if err != nil {
		return err
	}
	if *p+delta < 0 {
		return fmt.Errorf("%w: %d %s available, %d required", apperr.ErrInsufficientFunds, *p, c, -delta)
	}
	*p += delta
	return nil
}

// Debit takes amount credits and refuses to overdraw.
func (b *Balance) Debit(amount decimal.Decimal) error {
	if amount.GreaterThan(b.Credits) {
		return fmt.Errorf("%w: wallet has %s credits, %s required", apperr.ErrInsufficientFunds, b.Credits, amount)
	}
	b.Credits = b.Credits.Sub(amount)
	return nil
}

type AdjustKind string

const (
	AdjustRefill    AdjustKind = "refill"
	AdjustDeduction AdjustKind = "deduction"
	AdjustSale      AdjustKind = "sale"
)

func (k AdjustKind) txType() (ledger.Type, error) {
	switch k {
	case AdjustRefill:
		return ledger.TypeCreditRefill, nil
	case AdjustDeduction:
		return ledger.TypeCreditDeduction, nil
	case AdjustSale:
		return ledger.TypeCreditSale, nil
	}
	return "", fmt.Errorf("%w: unknown adjustment kind %q", apperr.ErrValidation, k)
}

type AdjustRequest struct {
	Kind        AdjustKind      `json:"kind" binding:"required,oneof=refill deduction sale"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// TokenUpdate sets counters to absolute values; nil fields are left alone.
type TokenUpdate struct {
	PrivateToken     *int `json:"private_token" binding:"omitempty,gte=0"`
	SemiPrivateToken *int `json:"semi_private_token" binding:"omitempty,gte=0"`
	PublicToken      *int `json:"public_token" binding:"omitempty,gte=0"`
	WorkoutDayToken  *int `json:"workout_day_token" binding:"omitempty,gte=0"`
	ShakeToken       *int `json:"shake_token" binding:"omitempty,gte=0"`
}

func (u TokenUpdate) fields() []struct {
	currency ledger.Currency
	value    *int
} {
	return []struct {
		currency ledger.Currency
		value    *int
	}{
		{ledger.CurrencyPrivateToken, u.PrivateToken},
		{ledger.CurrencySemiPrivateToken, u.SemiPrivateToken},
		{ledger.CurrencyPublicToken, u.PublicToken},
		{ledger.CurrencyWorkoutDayToken, u.WorkoutDayToken},
		{ledger.CurrencyShakeToken, u.ShakeToken},
	}
}

type EssentialsRequest struct {
	Till *time.Time `json:"essential_till"`
}

type PunchRemoveRequest struct {
	Punches int `json:"punches" binding:"required,gt=0"`
}

type FreeRequest struct {
	IsFree bool `json:"is_free"`
}
