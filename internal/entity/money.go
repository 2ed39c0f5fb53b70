package entity

import (
	"fmt"
	"strings"
)

// CurrencySymbol is the display currency for rendered prices.
const CurrencySymbol = "R$"

// FormatCentavos renders an integer minor-unit price in the Brazilian
// locale form, e.g. 123456 -> "R$ 1.234,56". Zero and negative values
// render as an empty string: absence is represented as empty, never null.
func FormatCentavos(c int64) string {
	if c <= 0 {
		return ""
	}
	reais := c / 100
	cents := c % 100
	return fmt.Sprintf("%s %s,%02d", CurrencySymbol, groupThousands(reais), cents)
}

// groupThousands inserts "." as the thousands separator: 1234567 -> "1.234.567".
func groupThousands(v int64) string {
	s := fmt.Sprintf("%d", v)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
