// Package pricing computes cart totals and evaluates coupon codes. Every
// function is pure.
package pricing

import (
	"strings"

	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/shopspring/decimal"
)

// Places is the number of decimal places monetary values are rounded to.
const Places = 2

var (
	TaxRate = decimal.RequireFromString("0.06")

	welcomeDiscount = decimal.NewFromInt(10)
	firstRate       = decimal.RequireFromString("0.25")
)

// Line is one priced cart line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Places)
}

// Subtotal is the exact sum of price times quantity. It is not rounded.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Compute derives the totals for lines with discount applied.
//
//	tax   = round((subtotal - discount) * 0.06, 2)
//	total = round(subtotal - discount + tax, 2)
//
// The discount is capped at the subtotal so the total never goes negative.
func Compute(lines []Line, discount decimal.Decimal) Totals {
	subtotal := Subtotal(lines)

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	taxable := subtotal.Sub(discount)
	tax := round(taxable.Mul(TaxRate))
	total := round(taxable.Add(tax))

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    total,
	}
}

type rule func(subtotal decimal.Decimal) decimal.Decimal

var rules = map[string]rule{
	"WELCOME10": func(decimal.Decimal) decimal.Decimal { return welcomeDiscount },
	"FIRST25":   func(subtotal decimal.Decimal) decimal.Decimal { return round(subtotal.Mul(firstRate)) },
}

// NormalizeCode trims and upper-cases a user-entered coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ApplyCoupon evaluates code against the cart subtotal. Coupons never stack:
// the returned amount replaces any discount applied before.
func ApplyCoupon(code string, subtotal decimal.Decimal, isFirstOrder bool) (decimal.Decimal, error) {
	code = NormalizeCode(code)

	if code == "" {
		return decimal.Zero, &apperr.CouponRejectedError{Reason: apperr.ReasonEmptyCode}
	}
	if !isFirstOrder {
		return decimal.Zero, &apperr.CouponRejectedError{Code: code, Reason: apperr.ReasonNotFirstOrder}
	}

	r, ok := rules[code]
	if !ok {
		return decimal.Zero, &apperr.CouponRejectedError{Code: code, Reason: apperr.ReasonUnknownCode}
	}
	return r(subtotal), nil
}
