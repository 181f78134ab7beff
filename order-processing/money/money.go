// Package money reconciles item and order totals from partially filled
// price fields and formats amounts for the invoice.
package money

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"order-fulfillment/order-processing/types"
)

// CurrencySuffix is appended to every formatted amount
const CurrencySuffix = "грн"

var printer = message.NewPrinter(language.Ukrainian)

// LineTotal returns the explicit line total when it is a finite number,
// otherwise unit price multiplied by quantity with missing operands as zero.
func LineTotal(item types.OrderItem) decimal.Decimal {
	if total, ok := finite(item.LineTotal); ok {
		return total
	}
	unit, _ := finite(item.UnitPrice)
	qty, _ := finite(item.Qty)
	return unit.Mul(qty)
}

// OrderTotal sums LineTotal over all items
func OrderTotal(items []types.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

// FormatMoney renders a locale-grouped amount with the currency suffix.
// Invalid input yields an empty string.
func FormatMoney(n decimal.NullDecimal) string {
	if !n.Valid {
		return ""
	}
	f, _ := n.Decimal.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return printer.Sprintf("%v", number.Decimal(f, number.MaxFractionDigits(2))) + " " + CurrencySuffix
}

// Format is FormatMoney for a known amount
func Format(d decimal.Decimal) string {
	return FormatMoney(decimal.NullDecimal{Decimal: d, Valid: true})
}

// Amount converts a nullable float into a NullDecimal, rejecting NaN and infinities
func Amount(v *float64) decimal.NullDecimal {
	d, ok := finite(v)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

func finite(v *float64) (decimal.Decimal, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(*v), true
}
