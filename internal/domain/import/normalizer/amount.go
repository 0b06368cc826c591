// Package normalizer turns raw spreadsheet cells into normalized values:
// decimal amounts, calendar dates and canonical classification labels. It is
// deliberately permissive; unusable cells resolve to zero values and the
// caller decides whether to drop the row.
package normalizer

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var currencySymbols = []string{"R$", "US$", "$", "€", "£"}

// ParseAmount converts a raw cell into a non-negative amount rounded to two
// decimal places. It understands both Brazilian (1.234,56) and plain
// (1,234.56) separator conventions, disambiguating by whichever of comma or
// dot appears rightmost. Unparseable or empty input yields zero; callers must
// treat zero as "absent" and skip the row.
//
// A value wrapped in parentheses (accounting notation for negatives) also
// yields zero. The sign is discarded either way: rows that would produce a
// non-positive amount are dropped upstream, never negated.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return decimal.Zero
	}

	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	if lastComma > lastDot {
		// Brazilian convention: dots group thousands, comma is the decimal.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs().Round(2)
}
