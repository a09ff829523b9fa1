package activity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Activity is a class type. Credits is the session price; SemiPrivate
// selects which token pays for a group seat.
type Activity struct {
	ID          int             `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Credits     decimal.Decimal `db:"credits" json:"credits"`
	Capacity    int             `db:"capacity" json:"capacity"`
	SemiPrivate bool            `db:"semi_private" json:"semi_private"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type Coach struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateActivityRequest struct {
	Name        string          `json:"name" binding:"required"`
	Credits     decimal.Decimal `json:"credits"`
	Capacity    int             `json:"capacity" binding:"required,min=1"`
	SemiPrivate bool            `json:"semi_private"`
}

type CreateCoachRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
}
