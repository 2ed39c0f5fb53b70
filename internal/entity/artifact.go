package entity

import "encoding/base64"

// Artifact represents an auxiliary binary payload (an extracted image) with
// a positional anchor, awaiting association with a Record. Sheet-sourced
// artifacts anchor to a 1-based (Row, Col) cell; OCR-sourced artifacts
// anchor to a page number. An artifact is consumed by at most one Record.
type Artifact struct {
	Data []byte `json:"-"`
	MIME string `json:"mime"`
	Ext  string `json:"ext,omitempty"`
	Row  int    `json:"row,omitempty"`
	Col  int    `json:"col,omitempty"`
	Page int    `json:"page,omitempty"`
}

// CellAnchored reports whether the artifact carries a spreadsheet cell
// anchor. Page-anchored artifacts leave Row and Col zero.
func (a *Artifact) CellAnchored() bool {
	return a != nil && a.Row > 0 && a.Col > 0
}

// DataURI renders the payload as a base64 data URI, the wire form the
// output document carries. Empty payloads render as an empty string.
func (a *Artifact) DataURI() string {
	if a == nil || len(a.Data) == 0 {
		return ""
	}
	mime := a.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}
