package market

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var proteinMarkers = []string{"protein shake", "protein pudding"}

// Item is a sellable market product.
type Item struct {
	ID        int             `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Quantity  int             `db:"quantity" json:"quantity"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// IsProtein reports whether name belongs to the shake-token redeemable class.
func IsProtein(name string) bool {
	n := strings.ToLower(name)
	for _, m := range proteinMarkers {
		if strings.Contains(n, m) {
			return true
		}
	}
	return false
}

func (i Item) IsProtein() bool {
	return IsProtein(i.Name)
}

type CreateItemRequest struct {
	Name     string          `json:"name" binding:"required,min=1,max=120"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" binding:"gte=0"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}
