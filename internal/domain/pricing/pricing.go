// Package pricing turns a cart snapshot into a price breakdown.
//
// Amounts are kept at full precision through the computation; callers round
// with Breakdown.Rounded only for presentation.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/food-delivery/internal/domain/promotion"
)

var taxRate = decimal.RequireFromString("0.05")

// TaxRate returns the tax charged on the subtotal (5%).
func TaxRate() decimal.Decimal {
	return taxRate
}

// Line is a priced order line.
type Line struct {
	ItemID    int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total returns UnitPrice * Quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Fees is the restaurant's fee schedule.
type Fees struct {
	DeliveryFee        decimal.Decimal
	MinimumOrderAmount decimal.Decimal
}

// Breakdown is the computed price of an order.
type Breakdown struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Tax         decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
	// PromotionCode is set only when the promotion was applied.
	PromotionCode string
}

// PromotionApplied reports whether a promotion reduced the total.
func (b Breakdown) PromotionApplied() bool {
	return b.PromotionCode != ""
}

// BelowMinimum reports whether the subtotal is under the restaurant's
// minimum order amount.
func (b Breakdown) BelowMinimum(fees Fees) bool {
	return b.Subtotal.LessThan(fees.MinimumOrderAmount)
}

// Rounded returns the breakdown rounded to currency precision.
func (b Breakdown) Rounded() Breakdown {
	b.Subtotal = b.Subtotal.Round(2)
	b.DeliveryFee = b.DeliveryFee.Round(2)
	b.Tax = b.Tax.Round(2)
	b.Discount = b.Discount.Round(2)
	b.Total = b.Total.Round(2)
	return b
}

// Compute prices lines under fees, applying promo when it is valid at now and
// the subtotal meets its minimum. An inapplicable promotion is ignored.
// lines must be non-empty.
func Compute(lines []Line, fees Fees, promo *promotion.Promotion, now time.Time) Breakdown {
	subtotal := Subtotal(lines)
	b := Breakdown{
		Subtotal:    subtotal,
		DeliveryFee: floorAtZero(fees.DeliveryFee),
		Tax:         subtotal.Mul(taxRate),
		Discount:    decimal.Zero,
	}
	gross := b.Subtotal.Add(b.DeliveryFee).Add(b.Tax)

	if promo != nil && promotion.Check(promo, subtotal, now) == nil {
		b.Discount = decimal.Min(floorAtZero(promo.Discount.Amount(subtotal)), gross)
		b.PromotionCode = promo.Code
	}

	b.Total = gross.Sub(b.Discount)
	return b
}

// Subtotal returns the sum of unit price * quantity across lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
