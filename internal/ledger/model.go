package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the unit a transaction moves.
type Currency string

const (
	CurrencyCredits          Currency = "credits"
	CurrencyPrivateToken     Currency = "private_token"
	CurrencyPublicToken      Currency = "public_token"
	CurrencySemiPrivateToken Currency = "semi_private_token"
	CurrencyWorkoutDayToken  Currency = "workoutDay_token"
	CurrencyShakeToken       Currency = "shake_token"
	CurrencyPunches          Currency = "punches"
	CurrencyNone             Currency = "none"
)

var currencies = map[Currency]struct{}{
	CurrencyCredits:          {},
	CurrencyPrivateToken:     {},
	CurrencyPublicToken:      {},
	CurrencySemiPrivateToken: {},
	CurrencyWorkoutDayToken:  {},
	CurrencyShakeToken:       {},
	CurrencyPunches:          {},
	CurrencyNone:             {},
}

// ParseCurrency accepts every persisted currency tag. Older rows spell the
// semi-private token "semiPrivate_token".
func ParseCurrency(s string) (Currency, error) {
	if s == "semiPrivate_token" {
		return CurrencySemiPrivateToken, nil
	}
	c := Currency(s)
	if _, ok := currencies[c]; !ok {
		return "", fmt.Errorf("unknown currency %q", s)
	}
	return c, nil
}

// IsToken reports whether c is one of the five token counters.
func (c Currency) IsToken() bool {
	switch c {
	case CurrencyPrivateToken, CurrencyPublicToken, CurrencySemiPrivateToken,
		CurrencyWorkoutDayToken, CurrencyShakeToken:
		return true
	}
	return false
}

// Type tags a transaction for reporting. The string values are persisted
// and read back by the admin dashboard, so they must not change.
type Type string

const (
	TypeCreditRefill    Type = "credit_refill"
	TypeCreditDeduction Type = "credit_deduction"
	TypeCreditSale      Type = "credit_sale"

	TypeMarketPurchase Type = "market_purchase"
	TypeMarketRefund   Type = "market_refund"

	TypeBundlePurchase  Type = "bundle_purchase"
	TypeBundleVista     Type = "bundle_vista"
	TypeBundleClass     Type = "bundle_class"
	TypeBundlePrivate   Type = "bundle_private"
	TypeBundleSemi      Type = "bundle_semi"
	TypeBundleWorkout   Type = "bundle_workout"
	TypeBundleShake     Type = "bundle_shake"
	TypeBundleEssential Type = "bundle_essential"

	TypeEssentialsUpdate     Type = "essentials_update"
	TypeTokenUpdate          Type = "token_update"
	TypePunchEarn            Type = "punch_earn"
	TypePunchCardReward      Type = "punch_card_reward"
	TypeShakeTokenRedemption Type = "shake_token_redemption"
	TypeShakeTokenRefund     Type = "shake_token_refund"
	TypePunchRemove          Type = "punch_remove"
	TypeLoyaltyPenalty       Type = "loyalty_penalty"
)

// SessionKind selects the session/cancel tag family.
type SessionKind string

const (
	KindIndividual SessionKind = "individual"
	KindGroup      SessionKind = "group"
	KindSemi       SessionKind = "semi"
)

// Payment is how a session was paid for.
type Payment string

const (
	PaymentCredit Payment = "credit"
	PaymentToken  Payment = "token"
	PaymentFree   Payment = "free"
)

func SessionType(kind SessionKind, p Payment) Type {
	return Type(fmt.Sprintf("%s_session_%s", kind, p))
}

func CancelType(kind SessionKind, p Payment) Type {
	return Type(fmt.Sprintf("%s_cancel_%s", kind, p))
}

var types = func() map[Type]struct{} {
	m := map[Type]struct{}{}
	for _, t := range []Type{
		TypeCreditRefill, TypeCreditDeduction, TypeCreditSale,
		TypeMarketPurchase, TypeMarketRefund,
		TypeBundlePurchase, TypeBundleVista, TypeBundleClass, TypeBundlePrivate,
		TypeBundleSemi, TypeBundleWorkout, TypeBundleShake, TypeBundleEssential,
		TypeEssentialsUpdate, TypeTokenUpdate, TypePunchEarn, TypePunchCardReward,
		TypeShakeTokenRedemption, TypeShakeTokenRefund, TypePunchRemove, TypeLoyaltyPenalty,
	} {
		m[t] = struct{}{}
	}
	for _, k := range []SessionKind{KindIndividual, KindGroup, KindSemi} {
		for _, p := range []Payment{PaymentCredit, PaymentToken, PaymentFree} {
			m[SessionType(k, p)] = struct{}{}
			m[CancelType(k, p)] = struct{}{}
		}
	}
	return m
}()

func ParseType(s string) (Type, error) {
	t := Type(s)
	if _, ok := types[t]; !ok {
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
	return t, nil
}

// Transaction is one append-only currency movement. A positive amount is
// credited to the user, a negative one debited.
type Transaction struct {
	ID          int             `db:"id" json:"id"`
	UserID      int             `db:"user_id" json:"user_id"`
	Currency    Currency        `db:"currency" json:"currency"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Type        Type            `db:"type" json:"type"`
	Description string          `db:"description" json:"description"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

func New(userID int, currency Currency, amount decimal.Decimal, t Type, description string) Transaction {
	return Transaction{
		UserID:      userID,
		Currency:    currency,
		Amount:      amount,
		Type:        t,
		Description: description,
	}
}

// Units converts a token or punch count to a transaction amount.
func Units(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

type Filter struct {
	UserID   *int
	Type     Type
	Currency Currency
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

type SummaryRow struct {
	Type     Type            `db:"type" json:"type"`
	Currency Currency        `db:"currency" json:"currency"`
	Count    int             `db:"count" json:"count"`
	Total    decimal.Decimal `db:"total" json:"total"`
}
