package entity

// SheetRow carries the fixed semantic column values of one spreadsheet
// data row. Index is the 1-based sheet row, which doubles as the record's
// provenance marker and as the anchor row for embedded-image association.
type SheetRow struct {
	Index      int
	Nome       string
	Local      string
	Fornecedor string
	Quantidade string
	Codigo     string
	Descricao  string
	Preco      string
}
