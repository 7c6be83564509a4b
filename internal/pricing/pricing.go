// Package pricing owns the shop's money rules: line subtotals, tax and
// order totals. Every amount is a decimal rounded half away from zero to
// cents; binary floating point never touches a price.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const CentPlaces int32 = 2

var one = decimal.NewFromInt(1)

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

type Calculator struct {
	taxRate decimal.Decimal
}

func NewCalculator(taxRate decimal.Decimal) (*Calculator, error) {
	if taxRate.IsNegative() || taxRate.GreaterThanOrEqual(one) {
		return nil, fmt.Errorf("tax rate must be in [0, 1), got %s", taxRate)
	}
	return &Calculator{taxRate: taxRate}, nil
}

func (c *Calculator) TaxRate() decimal.Decimal {
	return c.taxRate
}

// Tax is subtotal × rate, rounded to cents.
func (c *Calculator) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.taxRate).Round(CentPlaces)
}

// Totals prices a subtotal. Total is always exactly Subtotal + Tax.
func (c *Calculator) Totals(subtotal decimal.Decimal) Totals {
	subtotal = subtotal.Round(CentPlaces)
	tax := c.Tax(subtotal)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(CentPlaces)
}
