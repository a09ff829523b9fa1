package bundle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
)

type Kind string

const (
	KindVista     Kind = "vista"
	KindClass     Kind = "class"
	KindPrivate   Kind = "private"
	KindSemi      Kind = "semi"
	KindWorkout   Kind = "workout"
	KindShake     Kind = "shake"
	KindEssential Kind = "essential"
)

var kindTypes = map[Kind]ledger.Type{
	KindVista:     ledger.TypeBundleVista,
	KindClass:     ledger.TypeBundleClass,
	KindPrivate:   ledger.TypeBundlePrivate,
	KindSemi:      ledger.TypeBundleSemi,
	KindWorkout:   ledger.TypeBundleWorkout,
	KindShake:     ledger.TypeBundleShake,
	KindEssential: ledger.TypeBundleEssential,
}

// TxType is the bundle_<kind> tag written for every grant.
func (k Kind) TxType() (ledger.Type, error) {
	t, ok := kindTypes[k]
	if !ok {
		return "", fmt.Errorf("%w: unknown bundle kind %q", apperr.ErrValidation, k)
	}
	return t, nil
}

// Bundle is a package sold for credits that grants tokens and/or days of
// essentials access.
type Bundle struct {
	ID               int             `db:"id" json:"id"`
	Kind             Kind            `db:"kind" json:"kind"`
	Name             string          `db:"name" json:"name"`
	Price            decimal.Decimal `db:"price" json:"price"`
	PrivateToken     int             `db:"private_token" json:"private_token"`
	SemiPrivateToken int             `db:"semi_private_token" json:"semi_private_token"`
	PublicToken      int             `db:"public_token" json:"public_token"`
	WorkoutDayToken  int             `db:"workout_day_token" json:"workout_day_token"`
	ShakeToken       int             `db:"shake_token" json:"shake_token"`
	EssentialDays    int             `db:"essential_days" json:"essential_days"`
	Active           bool            `db:"active" json:"active"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

type grant struct {
	currency ledger.Currency
	n        int
}

func (b Bundle) grants() []grant {
	all := []grant{
		{ledger.CurrencyPrivateToken, b.PrivateToken},
		{ledger.CurrencySemiPrivateToken, b.SemiPrivateToken},
		{ledger.CurrencyPublicToken, b.PublicToken},
		{ledger.CurrencyWorkoutDayToken, b.WorkoutDayToken},
		{ledger.CurrencyShakeToken, b.ShakeToken},
	}
	out := all[:0]
	for _, g := range all {
		if g.n > 0 {
			out = append(out, g)
		}
	}
	return out
}

type CreateRequest struct {
	Kind             Kind            `json:"kind" binding:"required,oneof=vista class private semi workout shake essential"`
	Name             string          `json:"name" binding:"required,min=1,max=120"`
	Price            decimal.Decimal `json:"price"`
	PrivateToken     int             `json:"private_token" binding:"gte=0"`
	SemiPrivateToken int             `json:"semi_private_token" binding:"gte=0"`
	PublicToken      int             `json:"public_token" binding:"gte=0"`
	WorkoutDayToken  int             `json:"workout_day_token" binding:"gte=0"`
	ShakeToken       int             `json:"shake_token" binding:"gte=0"`
	EssentialDays    int             `json:"essential_days" binding:"gte=0"`
}

func (r CreateRequest) Bundle() Bundle {
	return Bundle{
		Kind:             r.Kind,
		Name:             r.Name,
		Price:            r.Price,
		PrivateToken:     r.PrivateToken,
		SemiPrivateToken: r.SemiPrivateToken,
		PublicToken:      r.PublicToken,
		WorkoutDayToken:  r.WorkoutDayToken,
		ShakeToken:       r.ShakeToken,
		EssentialDays:    r.EssentialDays,
		Active:           true,
	}
}
