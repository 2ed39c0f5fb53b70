package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultCores is the furniture-domain color lexicon. Entries are the
// canonical accented spellings; Fold makes matching accent-insensitive, so
// OCR output like "ACO CROMADO" still hits "aço" and "cromado".
var DefaultCores = []string{
	"preto", "branco", "azul", "vermelho", "verde", "amarelo", "laranja",
	"roxo", "rosa", "marrom", "cinza", "bege", "dourado", "prateado",
	"cromado", "transparente", "natural", "cerejeira", "tabaco", "nogueira",
	"mogno", "carvalho", "imbuia", "pinus", "jequitibá", "jatobá", "cedro",
	"café", "grafite", "chumbo", "fumê", "caramelo", "nude",
}

// DefaultMateriais is the furniture-domain material lexicon. "cromado"
// appears in both lexicons on purpose: a chromed finish reads as a color
// and as a material, and classification is non-exclusive between the two.
var DefaultMateriais = []string{
	"madeira", "mdf", "mdp", "melamínico", "melamina", "metalizado", "metal",
	"alumínio", "aço", "ferro", "vidro", "cristal", "espelho", "couro",
	"corino", "tecido", "linho", "veludo", "suede", "camurça", "laca",
	"polipropileno", "pp", "abs", "plástico", "pvc", "poliéster",
	"polietileno", "mármore", "granito", "quartzo", "cerâmica",
	"porcelanato", "laminado", "ráfia", "palhinha", "junco", "vime",
	"bambu", "rattan", "inox", "laqueado",
}

// Fold lowercases s and strips diacritics: "Aço Cromado" -> "aco cromado".
// The transform chain is built per call; chained transformers carry
// internal buffers and are not safe for concurrent reuse.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

// containsWord reports whether folded text contains folded entry as a whole
// word. A word boundary is any non-letter, non-digit rune (or the string
// edge): "preto" matches in "banco preto!" but not inside "pretos".
func containsWord(foldedText, foldedEntry string) bool {
	if foldedEntry == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(foldedText[start:], foldedEntry)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(foldedEntry)
		if boundaryBefore(foldedText, i) && boundaryAfter(foldedText, end) {
			return true
		}
		start = i + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// matchLexicon returns every lexicon entry found as a whole word in text,
// in lexicon order. Lexicon order, not text order, keeps the result
// deterministic when entries overlap.
func matchLexicon(text string, lexicon []string) []string {
	folded := Fold(text)
	if folded == "" {
		return nil
	}
	var found []string
	for _, entry := range lexicon {
		if containsWord(folded, Fold(entry)) {
			found = append(found, entry)
		}
	}
	return found
}
