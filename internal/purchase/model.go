package purchase

import (
	"github.com/shopspring/decimal"

	"github.com/qwerty-development/gym-webapp-sub000/internal/booking"
	"github.com/qwerty-development/gym-webapp-sub000/internal/wallet"
)

type CartLine struct {
	ItemID   int `json:"item_id" validate:"required,gt=0"`
	Quantity int `json:"quantity" validate:"required,min=1,max=50"`
}

type Cart struct {
	Items []CartLine `json:"items" validate:"required,min=1,dive"`
}

func (c Cart) itemIDs() []int {
	ids := make([]int, 0, len(c.Items))
	for _, l := range c.Items {
		ids = append(ids, l.ItemID)
	}
	return ids
}

// Receipt reports what a purchase cost and earned.
type Receipt struct {
	Total             decimal.Decimal `json:"total"`
	Charged           decimal.Decimal `json:"charged"`
	ShakeTokensUsed   int             `json:"shake_tokens_used"`
	PunchesEarned     int             `json:"punches_earned"`
	ShakeTokensEarned int             `json:"shake_tokens_earned"`
	Items             booking.Items   `json:"items"`
	Wallet            *wallet.Balance `json:"wallet"`
}
