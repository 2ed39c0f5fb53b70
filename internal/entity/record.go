package entity

// ImageMatch records which rung of the association ladder attached an
// artifact to a record. Index matches are the lowest-confidence kind and
// are surfaced in logs.
type ImageMatch string

const (
	MatchNone     ImageMatch = ""
	MatchExact    ImageMatch = "exact"
	MatchAdjacent ImageMatch = "adjacent"
	MatchPage     ImageMatch = "page"
	MatchIndex    ImageMatch = "index"
)

// Record represents one assembled product for data transfer between layers.
// Nome is set exactly once from the anchor element; once set, the record
// never changes identity. PrecoCentavos holds the price in integer minor
// units (0 = unset); it is rendered to display form only at output time.
type Record struct {
	Nome          string     `json:"nome"`
	PrecoCentavos int64      `json:"preco_centavos,omitempty"`
	Codigos       []string   `json:"codigos,omitempty"`
	Cores         []string   `json:"cores,omitempty"`
	Materiais     []string   `json:"materiais,omitempty"`
	Categoria     string     `json:"categoria,omitempty"`
	Descricao     string     `json:"descricao,omitempty"`
	Imagem        *Artifact  `json:"-"`
	Pagina        int        `json:"pagina"`
	ImageMatch    ImageMatch `json:"-"`
}

// Valid reports whether the record may be emitted. A record with an empty
// name is invalid and must not appear in the output document.
func (r *Record) Valid() bool {
	return r != nil && r.Nome != ""
}

// HasImage reports whether an artifact is already attached.
func (r *Record) HasImage() bool {
	return r != nil && r.Imagem != nil
}
