package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestIngestPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "catalogo.pdf", "%PDF-1.4 fake body")
	ing := NewFSIngestor(newFakeFiles(), nil)

	r, err := ing.IngestPath(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestPath: %v", err)
	}
	if r.Deduplicated {
		t.Error("fresh file reported as deduplicated")
	}
	if r.FileExt != "pdf" {
		t.Errorf("FileExt = %q, want pdf", r.FileExt)
	}
	if r.FileSize != int64(len("%PDF-1.4 fake body")) {
		t.Errorf("FileSize = %d", r.FileSize)
	}
	sum := sha256.Sum256([]byte("%PDF-1.4 fake body"))
	if r.HashHex != hex.EncodeToString(sum[:]) {
		t.Errorf("HashHex = %q", r.HashHex)
	}

	again, err := ing.IngestPath(context.Background(), path)
	if err != nil {
		t.Fatalf("second IngestPath: %v", err)
	}
	if !again.Deduplicated {
		t.Error("second ingest not deduplicated")
	}
	if again.FileID != r.FileID {
		t.Errorf("dedupe produced new file id: %s vs %s", again.FileID, r.FileID)
	}
}

func TestIngestPathUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notas.txt", "nada")
	ing := NewFSIngestor(newFakeFiles(), nil)

	if _, err := ing.IngestPath(context.Background(), path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf", "conteudo a")
	writeFile(t, dir, "b.xlsx", "conteudo b")
	writeFile(t, dir, ".oculto.pdf", "escondido")
	writeFile(t, dir, filepath.Join("sub", "c.png"), "imagem")
	writeFile(t, dir, "junk.txt", "lixo")

	ing := NewFSIngestor(newFakeFiles(), nil)
	results, stats, err := ing.IngestDirectory(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("IngestDirectory: %v", err)
	}
	if stats.Matched != 3 || stats.Succeeded != 3 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want 3 matched/succeeded", stats)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, r := range results {
		if r.Err != "" {
			t.Errorf("result %s carries error %q", r.SourcePath, r.Err)
		}
	}

	// Same content, same rows: the second walk dedupes everything.
	_, stats, err = ing.IngestDirectory(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("second IngestDirectory: %v", err)
	}
	if stats.Deduplicated != 3 {
		t.Errorf("Deduplicated = %d, want 3", stats.Deduplicated)
	}
}
