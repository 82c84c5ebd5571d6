// Package format renders amounts the way the portal displays them.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable stands in for an amount that cannot be shown.
const NotAvailable = "n/a"

// Rupee returns a whole-rupee amount with a rupee sign and Indian digit grouping
// (e.g., "₹1,05,499" or "-₹8,792"). Non-finite values render as
// NotAvailable.
func Rupee(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return NotAvailable
	}
	grouped := groupIndian(wholeDigits(amount))
	if amount < 0 && grouped != "0" {
		return "-₹" + grouped
	}
	return "₹" + grouped
}

func wholeDigits(amount float64) string {
	return decimal.NewFromFloat(math.Abs(amount)).Round(0).String()
}

// groupIndian inserts separators after the last three digits and then every two
// digits, e.g. 10000000 -> 1,00,00,000.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var builder strings.Builder
	for i, digit := range head {
		if i > 0 && (len(head)-i)%2 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	builder.WriteByte(',')
	builder.WriteString(tail)
	return builder.String()
}
