// Package reply holds the text helpers shared by chat replies.
package reply

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount formats v with thousands separators and at most two decimals,
// e.g. 1234567.5 -> "1,234,567.50" and 1000 -> "1,000".
func Amount(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	d = d.Abs()

	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "00" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// Money prefixes Amount with a currency symbol.
func Money(currency string, v float64) string {
	return currency + Amount(v)
}

var abbreviations = map[string]bool{"kg": true, "ml": true, "cm": true}

// Quantity formats a stock quantity with its unit, pluralized naively.
func Quantity(v float64, unit string) string {
	n := decimal.NewFromFloat(v).Round(4).String()
	if unit == "" {
		unit = "unit"
	}
	if v != 1 && !abbreviations[unit] {
		switch {
		case strings.HasSuffix(unit, "x"):
			unit += "es"
		case !strings.HasSuffix(unit, "s"):
			unit += "s"
		}
	}
	return n + " " + unit
}
