// Package pricing holds the money math shared by deals and checkout.
// All arithmetic goes through shopspring/decimal; float64 never touches a price.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/creditbazaar/marketplace-api/models"
)

// priceFloor is the lowest a discount may push a price. Deals never make an
// item free.
var priceFloor = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// DiscountedPrice applies a deal to a base price and returns the price the
// customer pays, rounded to 2 decimals and clamped to the floor.
func DiscountedPrice(base decimal.Decimal, deal *models.Deal) decimal.Decimal {
	discount := DiscountAmount(base, deal)
	p := base.Sub(discount).Round(2)
	if p.LessThan(priceFloor) {
		return priceFloor
	}
	return p
}

// DiscountAmount returns the absolute discount a deal grants on a base price.
// Percentage deals are capped at MaxDiscount when one is set.
func DiscountAmount(base decimal.Decimal, deal *models.Deal) decimal.Decimal {
	if deal == nil {
		return decimal.Zero
	}
	switch deal.DiscountType {
	case models.DiscountTypePercentage:
		d := base.Mul(deal.Value).Div(hundred).Round(2)
		if deal.MaxDiscount.IsPositive() && d.GreaterThan(deal.MaxDiscount) {
			d = deal.MaxDiscount
		}
		return d
	case models.DiscountTypeFixed:
		return deal.Value
	default:
		return decimal.Zero
	}
}

// LineTotal is unit price times quantity, rounded to 2 decimals.
func LineTotal(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
