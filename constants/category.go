package constants

type Category string

const (
	Cadeira      Category = "Cadeira"
	Poltrona     Category = "Poltrona"
	Sofa         Category = "Sofá"
	Mesa         Category = "Mesa"
	Banqueta     Category = "Banqueta"
	Rack         Category = "Rack"
	Painel       Category = "Painel"
	Estante      Category = "Estante"
	GuardaRoupa  Category = "Guarda-roupa"
	Armario      Category = "Armário"
	Buffet       Category = "Buffet"
	Aparador     Category = "Aparador"
	Comoda       Category = "Cômoda"
	Escrivaninha Category = "Escrivaninha"
	CriadoMudo   Category = "Criado-mudo"
	Cabeceira    Category = "Cabeceira"
	Cama         Category = "Cama"
)

// KeywordCategory pairs a lowercase text indicator with its canonical
// category.
type KeywordCategory struct {
	Keyword  string
	Category Category
}

// categoryKeywords is kept as an ordered slice so keyword precedence is
// deterministic when a string contains more than one indicator ("mesa de
// cabeceira" is a Mesa). Unaccented spellings are listed alongside accented
// ones so the table works on raw OCR output before any folding.
var categoryKeywords = []KeywordCategory{
	{"cadeira", Cadeira},
	{"poltrona", Poltrona},
	{"sofá", Sofa},
	{"sofa", Sofa},
	{"mesa", Mesa},
	{"banqueta", Banqueta},
	{"banco", Banqueta},
	{"rack", Rack},
	{"painel", Painel},
	{"estante", Estante},
	{"guarda-roupa", GuardaRoupa},
	{"armário", Armario},
	{"armario", Armario},
	{"buffet", Buffet},
	{"aparador", Aparador},
	{"cômoda", Comoda},
	{"comoda", Comoda},
	{"escrivaninha", Escrivaninha},
	{"criado-mudo", CriadoMudo},
	{"cabeceira", Cabeceira},
	{"cama", Cama},
}

// CategoryKeywords returns the indicator->category pairs in precedence order.
func CategoryKeywords() []KeywordCategory {
	out := make([]KeywordCategory, len(categoryKeywords))
	copy(out, categoryKeywords)
	return out
}
