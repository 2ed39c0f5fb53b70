// Package classify labels raw text strings with their product-field role.
// The classifier is pure and stateless: the same input always yields the
// same classification, independent of any record being assembled around it.
package classify

import (
	"strings"
	"unicode/utf8"

	"github.com/Kurai777/Alda-oficial/constants"
)

// Label is the discrete role assigned to a text string.
type Label string

const (
	LabelPrice       Label = "price"
	LabelCode        Label = "code"
	LabelColor       Label = "color"
	LabelMaterial    Label = "material"
	LabelCategory    Label = "category"
	LabelDescription Label = "description"
	LabelNoise       Label = "noise"
)

// Classification carries the label plus the extracted structured value.
// Cores and Materiais are both populated when a string feeds the two sets
// at once ("Aço Cromado" contributes material aço and color cromado);
// classification is non-exclusive for those two labels only.
type Classification struct {
	Label         Label
	PrecoCentavos int64
	Codigo        string
	Cores         []string
	Materiais     []string
	Categoria     string
}

// Config supplies the classifier's lexicons and policy knobs. Zero values
// select the furniture-domain defaults.
type Config struct {
	Cores         []string
	Materiais     []string
	Categorias    []constants.KeywordCategory
	Price         PricePolicy
	MinCodeLength int
}

// Classifier applies the ordered field heuristics to text strings.
type Classifier struct {
	cores         []string
	materiais     []string
	categorias    []constants.KeywordCategory
	price         PricePolicy
	minCodeLength int
}

// New builds a Classifier, defaulting any unset Config field.
func New(cfg Config) *Classifier {
	if cfg.Cores == nil {
		cfg.Cores = DefaultCores
	}
	if cfg.Materiais == nil {
		cfg.Materiais = DefaultMateriais
	}
	if cfg.Categorias == nil {
		cfg.Categorias = constants.CategoryKeywords()
	}
	if cfg.Price == (PricePolicy{}) {
		cfg.Price = DefaultPricePolicy()
	}
	if cfg.MinCodeLength <= 0 {
		cfg.MinCodeLength = 4
	}
	return &Classifier{
		cores:         cfg.Cores,
		materiais:     cfg.Materiais,
		categorias:    cfg.Categorias,
		price:         cfg.Price,
		minCodeLength: cfg.MinCodeLength,
	}
}

// Classify labels one text string. The order is significant and first match
// wins: price, code, color/material, category, then description for
// anything longer than 3 runes. Shorter unmatched strings are noise.
func (c *Classifier) Classify(text string) Classification {
	t := strings.TrimSpace(text)
	if t == "" {
		return Classification{Label: LabelNoise}
	}

	// 1. Price. A currency-marked amount always claims the price label;
	// the value is only set when it parses inside the plausible bounds.
	if m := reCurrencyAmount.FindStringSubmatch(t); m != nil {
		cl := Classification{Label: LabelPrice}
		if cents, ok := ParseAmount(m[1]); ok && c.price.Plausible(cents) {
			cl.PrecoCentavos = cents
		}
		return cl
	}
	// A bare number is a price only inside the plausible bounds; outside
	// them it falls through to the code heuristics.
	if reBareNumber.MatchString(t) {
		if cents, ok := ParseAmount(t); ok && c.price.Plausible(cents) {
			return Classification{Label: LabelPrice, PrecoCentavos: cents}
		}
	}

	// 2. Code.
	if code, ok := c.matchCode(t); ok {
		return Classification{Label: LabelCode, Codigo: code}
	}

	// 3+4. Colors and materials, non-exclusive between each other.
	cores := matchLexicon(t, c.cores)
	materiais := matchLexicon(t, c.materiais)
	if len(cores) > 0 || len(materiais) > 0 {
		label := LabelColor
		if len(cores) == 0 {
			label = LabelMaterial
		}
		return Classification{Label: label, Cores: cores, Materiais: materiais}
	}

	// 5. Category.
	if cat, ok := c.MatchCategory(t); ok {
		return Classification{Label: LabelCategory, Categoria: cat}
	}

	// 6. Description or noise.
	if utf8.RuneCountInString(t) > 3 {
		return Classification{Label: LabelDescription}
	}
	return Classification{Label: LabelNoise}
}

// MatchCategory resolves text to a canonical category by accent-folded
// keyword containment, honoring the configured keyword precedence.
func (c *Classifier) MatchCategory(text string) (string, bool) {
	folded := Fold(text)
	for _, kw := range c.categorias {
		if strings.Contains(folded, Fold(kw.Keyword)) {
			return string(kw.Category), true
		}
	}
	return "", false
}

// MatchColors returns every configured color found in text, in lexicon order.
func (c *Classifier) MatchColors(text string) []string {
	return matchLexicon(text, c.cores)
}

// MatchMaterials returns every configured material found in text, in lexicon order.
func (c *Classifier) MatchMaterials(text string) []string {
	return matchLexicon(text, c.materiais)
}

// PriceBounds exposes the active plausibility policy.
func (c *Classifier) PriceBounds() PricePolicy {
	return c.price
}
