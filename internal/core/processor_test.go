package core

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/entity"
	"github.com/Kurai777/Alda-oficial/internal/geometry"
	"github.com/Kurai777/Alda-oficial/internal/ocr"
	"github.com/Kurai777/Alda-oficial/internal/pdftext"
	"github.com/Kurai777/Alda-oficial/internal/sheet"
)

type fakeOCR struct {
	res   ocr.Result
	err   error
	calls int
}

func (f *fakeOCR) ExtractFile(ctx context.Context, path string) (ocr.Result, error) {
	f.calls++
	return f.res, f.err
}

type fakeText struct {
	hasLayer bool
	probed   bool
	res      pdftext.Result
	err      error
}

func (f *fakeText) Probe(ctx context.Context, path string) bool {
	f.probed = true
	return f.hasLayer
}

func (f *fakeText) ExtractFile(ctx context.Context, path string) (pdftext.Result, error) {
	return f.res, f.err
}

type fakeSheet struct {
	res sheet.Result
	err error
}

func (f *fakeSheet) ReadFile(ctx context.Context, path string) (sheet.Result, error) {
	return f.res, f.err
}

func tel(text string, x, y, w, h float64) entity.PositionedElement {
	return entity.PositionedElement{
		Kind:   entity.KindText,
		Text:   text,
		Center: geometry.Point{X: x, Y: y},
		Extent: geometry.Size{W: w, H: h},
	}
}

func newTestProcessor(o OCRSource, txt TextSource, s SheetSource) *Processor {
	return NewProcessor(nil, o, txt, s, nil, nil, 2)
}

func TestProcessFileSheet(t *testing.T) {
	fs := &fakeSheet{res: sheet.Result{
		Sheet: "Catalogo",
		Rows: []entity.SheetRow{
			{Index: 2, Nome: "Mesa Lyon", Codigo: "ML-77", Preco: "450,00"},
			{Index: 3, Nome: "Nome", Codigo: "Código"},
		},
		Artifacts: []*entity.Artifact{{Data: []byte{1}, MIME: "image/png", Row: 2, Col: 4}},
	}}
	p := newTestProcessor(&fakeOCR{}, &fakeText{}, fs)

	res, err := p.ProcessFile(context.Background(), "catalogo.xlsx")
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if res.RunID == uuid.Nil {
		t.Error("RunID not set")
	}
	if res.Mode != ModeRows || res.Pages != 1 {
		t.Errorf("mode %q pages %d", res.Mode, res.Pages)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1 (header row dropped)", len(res.Records))
	}
	rec := res.Records[0]
	if rec.Nome != "Mesa Lyon" || rec.PrecoCentavos != 45000 || rec.Categoria != "Mesa" || rec.Pagina != 2 {
		t.Errorf("record = %+v", rec)
	}
	if !rec.HasImage() || rec.ImageMatch != entity.MatchExact {
		t.Errorf("image not attached exactly: match=%q image=%v", rec.ImageMatch, rec.Imagem)
	}
}

func TestProcessFilePDFTextLayer(t *testing.T) {
	ft := &fakeText{hasLayer: true, res: pdftext.Result{Pages: []pdftext.Page{
		{Number: 1, Elements: []entity.PositionedElement{
			tel("Cadeira Eames", 100, 10, 200, 24),
			tel("R$ 450,00", 80, 60, 90, 16),
		}},
		{Number: 2, Err: errors.New("content stream broken")},
	}}}
	fo := &fakeOCR{}
	p := newTestProcessor(fo, ft, &fakeSheet{})

	res, err := p.ProcessFile(context.Background(), "catalogo.pdf")
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if !ft.probed {
		t.Error("PDF path must probe for a text layer")
	}
	if fo.calls != 0 {
		t.Error("OCR must not run when the text layer is usable")
	}
	if res.Mode != ModePDFText || res.Pages != 2 {
		t.Errorf("mode %q pages %d", res.Mode, res.Pages)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	rec := res.Records[0]
	if rec.Nome != "Cadeira Eames" || rec.PrecoCentavos != 45000 || rec.Pagina != 1 {
		t.Errorf("record = %+v", rec)
	}
	if len(res.Errors) != 1 || res.Errors[0].Scope != "page" || res.Errors[0].Page != 2 {
		t.Errorf("errors = %+v, want the failed page recorded", res.Errors)
	}
}

func TestProcessFilePDFFallsBackToOCR(t *testing.T) {
	art := &entity.Artifact{Data: []byte{1}, MIME: "image/png", Page: 1}
	fo := &fakeOCR{res: ocr.Result{
		Pages: []ocr.Page{{
			Number: 1,
			Elements: []entity.PositionedElement{
				tel("Cadeira Eames", 100, 10, 200, 24),
				tel("R$ 450,00", 80, 60, 90, 16),
			},
			Image: art,
		}},
		Warnings: []string{"page 3 image rejected"},
	}}
	ft := &fakeText{hasLayer: false}
	p := newTestProcessor(fo, ft, &fakeSheet{})

	res, err := p.ProcessFile(context.Background(), "catalogo.pdf")
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if !ft.probed || fo.calls != 1 {
		t.Errorf("probe=%v ocr calls=%d", ft.probed, fo.calls)
	}
	if res.Mode != ModeOCR {
		t.Errorf("mode = %q", res.Mode)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	rec := res.Records[0]
	if rec.Imagem != art || rec.ImageMatch != entity.MatchPage {
		t.Errorf("page artifact not attached: match=%q", rec.ImageMatch)
	}
	if len(res.Errors) != 1 || res.Errors[0].Scope != "ocr" {
		t.Errorf("errors = %+v, want the adapter warning recorded", res.Errors)
	}
}

func TestProcessFileImageSkipsProbe(t *testing.T) {
	fo := &fakeOCR{res: ocr.Result{Pages: []ocr.Page{{
		Number:   1,
		Elements: []entity.PositionedElement{tel("Poltrona Costela", 100, 10, 200, 24)},
	}}}}
	ft := &fakeText{hasLayer: true}
	p := newTestProcessor(fo, ft, &fakeSheet{})

	res, err := p.ProcessFile(context.Background(), "foto.png")
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if ft.probed {
		t.Error("images must not be probed for a PDF text layer")
	}
	if res.Mode != ModeOCR || len(res.Records) != 1 {
		t.Errorf("mode %q records %d", res.Mode, len(res.Records))
	}
}

func TestProcessFileUnsupported(t *testing.T) {
	p := newTestProcessor(&fakeOCR{}, &fakeText{}, &fakeSheet{})
	if _, err := p.ProcessFile(context.Background(), "notes.txt"); !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestProcessFileAdapterFailure(t *testing.T) {
	broken := errors.New("corrupt workbook")
	p := newTestProcessor(&fakeOCR{}, &fakeText{}, &fakeSheet{err: broken})
	if _, err := p.ProcessFile(context.Background(), "catalogo.xlsx"); !errors.Is(err, broken) {
		t.Errorf("err = %v, want the adapter failure", err)
	}
}
