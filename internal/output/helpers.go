package output

import (
	"fmt"
	"strings"

	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// FormatCurrency renders a Money as dollars with thousands separators.
// Kept here so it can be reused by multiple formatters and unit tested
// in isolation.
func FormatCurrency(m decimal.Money) string {
	s := m.Round().Decimal.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	whole, cents, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(cents)
	return b.String()
}

// FormatPercent renders a 0-1 fraction as a percentage with one
// decimal place.
func FormatPercent(frac float64) string {
	return fmt.Sprintf("%.1f%%", frac*100)
}
