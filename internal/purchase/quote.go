package purchase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/market"
)

// Unit is one item of an expanded cart.
type Unit struct {
	Item     market.Item
	Redeemed bool
}

type Pricing struct {
	Units         []Unit
	Total         decimal.Decimal
	AdjustedTotal decimal.Decimal
	TokensUsed    int
	ProteinUnits  int
}

// Quote expands the cart into units in the order given and prices them.
// Protein units take the available shake tokens first come first served;
// everything else is charged its catalog price.
func Quote(cart Cart, catalog map[int]market.Item, shakeTokens int) (Pricing, error) {
	p := Pricing{Total: decimal.Zero, AdjustedTotal: decimal.Zero}
	tokens := shakeTokens

	for _, line := range cart.Items {
		item, ok := catalog[line.ItemID]
		if !ok {
			return Pricing{}, fmt.Errorf("market item %d: %w", line.ItemID, apperr.ErrNotFound)
		}
		for i := 0; i < line.Quantity; i++ {
			u := Unit{Item: item}
			p.Total = p.Total.Add(item.Price)
			if item.IsProtein() {
				p.ProteinUnits++
				if tokens > 0 {
					tokens--
					u.Redeemed = true
					p.TokensUsed++
				}
			}
			if !u.Redeemed {
				p.AdjustedTotal = p.AdjustedTotal.Add(item.Price)
			}
			p.Units = append(p.Units, u)
		}
	}
	return p, nil
}
