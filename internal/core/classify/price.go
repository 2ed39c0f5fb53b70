package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// PricePolicy bounds what counts as a plausible price, in integer centavos.
// The bounds are a per-deployment policy knob: bare numbers outside them
// are not prices at all, and currency-marked amounts outside them claim
// the price slot without setting a value.
type PricePolicy struct {
	MinCentavos int64
	MaxCentavos int64
}

// DefaultPricePolicy covers R$ 1,00 through R$ 100.000,00.
func DefaultPricePolicy() PricePolicy {
	return PricePolicy{MinCentavos: 100, MaxCentavos: 10_000_000}
}

// Plausible reports whether a parsed amount falls inside the policy bounds.
func (p PricePolicy) Plausible(centavos int64) bool {
	return centavos >= p.MinCentavos && centavos <= p.MaxCentavos
}

var (
	reCurrencyAmount = regexp.MustCompile(`(?i)R\$\s*([\d.,]+)`)
	reBareNumber     = regexp.MustCompile(`^[\d.,]+$`)
)

// ParseAmount converts a Brazilian-notation numeric string to integer
// centavos: periods are thousands grouping and are stripped, the comma
// separates the fraction ("1.234,56" -> 123456, "450" -> 45000). The parse
// is purely textual so no floating-point drift can creep in. Fractions are
// padded or truncated to two digits.
func ParseAmount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	var intPart, frac string
	if i := strings.LastIndexByte(s, ','); i >= 0 {
		if strings.Count(s, ",") > 1 {
			return 0, false
		}
		intPart = strings.ReplaceAll(s[:i], ".", "")
		frac = s[i+1:]
		if frac == "" || !allDigits(frac) {
			return 0, false
		}
		if len(frac) == 1 {
			frac += "0"
		}
		frac = frac[:2]
	} else {
		intPart = strings.ReplaceAll(s, ".", "")
		frac = "00"
	}

	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) {
		return 0, false
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, false
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, false
	}
	const maxWhole = (1<<63 - 1) / 100
	if whole > maxWhole-1 {
		return 0, false
	}
	return whole*100 + cents, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
