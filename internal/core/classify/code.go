package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// reSegmentedCode finds structured separator codes with three or more
	// numeric segments, e.g. "1.00020.01.0001" or "10-20-30".
	reSegmentedCode = regexp.MustCompile(`\d+(?:[.\-]\d+){2,}`)
	// rePrefixCode recognizes a labeled code and captures its payload,
	// e.g. "REF: ABC-123" or "cod. 4420".
	rePrefixCode = regexp.MustCompile(`(?i)\b(?:ref|cod|sku)[.:]\s*([A-Za-z0-9.\-]+)`)
)

// matchCode reports whether text reads as a commercial code and returns the
// code value: the prefix payload when labeled, the whole token for
// uppercase alphanumeric tokens, or the embedded segmented run otherwise.
func (c *Classifier) matchCode(text string) (string, bool) {
	if m := rePrefixCode.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if c.isUpperCodeToken(text) {
		return text, true
	}
	if m := reSegmentedCode.FindString(text); m != "" {
		return m, true
	}
	return "", false
}

// isUpperCodeToken matches whole strings of uppercase letters, digits and
// the separators "." / "-", at least minCodeLength runes long and carrying
// at least one alphanumeric. Lowercase letters disqualify the token.
func (c *Classifier) isUpperCodeToken(text string) bool {
	if utf8.RuneCountInString(text) < c.minCodeLength {
		return false
	}
	alnum := false
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			alnum = true
		case r == '.' || r == '-':
		default:
			return false
		}
	}
	return alnum
}

// LooksLikeCodeHeader filters spreadsheet header labels that would otherwise
// pass for code values ("cod.", "código", "ref").
func LooksLikeCodeHeader(s string) bool {
	switch strings.TrimSuffix(Fold(strings.TrimSpace(s)), ".") {
	case "cod", "codigo", "ref", "sku", "referencia":
		return true
	}
	return false
}
