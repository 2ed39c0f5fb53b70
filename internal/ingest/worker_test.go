package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kurai777/Alda-oficial/internal/async"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

type fakeProcessor struct {
	res   entity.RunResult
	err   error
	paths []string
}

func (p *fakeProcessor) ProcessFile(_ context.Context, path string) (entity.RunResult, error) {
	p.paths = append(p.paths, path)
	return p.res, p.err
}

type fakeExporter struct {
	data []byte
	err  error
}

func (e *fakeExporter) JSON(*entity.RunResult) ([]byte, error) {
	return e.data, e.err
}

func TestWorkerHandleSuccess(t *testing.T) {
	files := newFakeFiles()
	runs := newFakeRuns()
	row, _, err := files.UpsertByHash(context.Background(), "/catalogs/verao.pdf", "verao.pdf", "pdf", 10, "h1", time.Now())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	proc := &fakeProcessor{res: entity.RunResult{
		Mode:  "ocr",
		Pages: 2,
		Records: []entity.Record{
			{Nome: "Cadeira Eames", Pagina: 1},
			{Nome: ""},
		},
		Errors: []entity.RunError{{Scope: "page", Page: 2, Err: "tesseract: exit status 1"}},
	}}
	outDir := t.TempDir()
	w := NewWorker(proc, &fakeExporter{data: []byte(`[]`)}, files, runs, outDir, nil)

	job := async.Job{FileID: row.ID, Path: "/catalogs/verao.pdf"}
	if err := w.Handle(context.Background(), job); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	got, err := files.GetByID(context.Background(), row.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	wantOut := filepath.Join(outDir, "verao.json")
	if got.Status != entity.StatusDone || got.OutputPath != wantOut || got.RecordCount != 1 {
		t.Errorf("ledger row = %+v", got)
	}

	data, err := os.ReadFile(wantOut)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != `[]` {
		t.Errorf("output = %q", data)
	}

	runRows, _ := runs.ListByFile(context.Background(), row.ID)
	if len(runRows) != 1 {
		t.Fatalf("got %d runs, want 1", len(runRows))
	}
	run := runRows[0]
	if run.Status != entity.RunStatusDone || run.Mode != "ocr" || run.Pages != 2 || run.RecordCount != 1 || run.ErrorCount != 1 {
		t.Errorf("run = %+v", run)
	}
}

func TestWorkerProcessReturnsResult(t *testing.T) {
	files := newFakeFiles()
	runs := newFakeRuns()
	row, _, err := files.UpsertByHash(context.Background(), "/catalogs/inverno.xlsx", "inverno.xlsx", "xlsx", 10, "h3", time.Now())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	proc := &fakeProcessor{res: entity.RunResult{
		Mode:    "rows",
		Pages:   1,
		Records: []entity.Record{{Nome: "Mesa Jantar", Pagina: 4}},
	}}
	w := NewWorker(proc, &fakeExporter{data: []byte(`[]`)}, files, runs, t.TempDir(), nil)

	res, err := w.Process(context.Background(), async.Job{FileID: row.ID, Path: "/catalogs/inverno.xlsx"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Mode != "rows" || len(res.Records) != 1 || res.Records[0].Nome != "Mesa Jantar" {
		t.Errorf("res = %+v", res)
	}
}

func TestWorkerHandleProcessFailure(t *testing.T) {
	files := newFakeFiles()
	runs := newFakeRuns()
	row, _, err := files.UpsertByHash(context.Background(), "/catalogs/ruim.pdf", "ruim.pdf", "pdf", 10, "h2", time.Now())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	boom := errors.New("pdftoppm: exit status 2")
	w := NewWorker(&fakeProcessor{err: boom}, &fakeExporter{}, files, runs, t.TempDir(), nil)

	err = w.Handle(context.Background(), async.Job{FileID: row.ID, Path: "/catalogs/ruim.pdf"})
	if !errors.Is(err, boom) {
		t.Fatalf("Handle err = %v, want %v", err, boom)
	}

	got, _ := files.GetByID(context.Background(), row.ID)
	if got.Status != entity.StatusFailed || got.ErrorMessage != boom.Error() {
		t.Errorf("ledger row = %+v", got)
	}
	runRows, _ := runs.ListByFile(context.Background(), row.ID)
	if len(runRows) != 1 || runRows[0].Status != entity.RunStatusFailed {
		t.Errorf("runs = %+v", runRows)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/catalogs/verao-2025.pdf", "verao-2025.json"},
		{"catalogo.xlsx", "catalogo.json"},
		{"/dir/sem-extensao", "sem-extensao.json"},
	}
	for _, tt := range tests {
		if got := outputName(tt.path); got != tt.want {
			t.Errorf("outputName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
