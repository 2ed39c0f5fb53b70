package common

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Ledger.Driver != "sqlite" {
		t.Errorf("Ledger.Driver = %q, want sqlite", cfg.Ledger.Driver)
	}
	if cfg.OCR.Language != "por" {
		t.Errorf("OCR.Language = %q, want por", cfg.OCR.Language)
	}
	if cfg.Extraction.GroupingDistance != 100.0 {
		t.Errorf("GroupingDistance = %v, want 100", cfg.Extraction.GroupingDistance)
	}
	if cfg.Extraction.MinPriceCentavos != 100 || cfg.Extraction.MaxPriceCentavos != 10_000_000 {
		t.Errorf("price bounds = [%d,%d]", cfg.Extraction.MinPriceCentavos, cfg.Extraction.MaxPriceCentavos)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults failed: %v", err)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("EXTRACT_GROUPING_DISTANCE", "30")
	t.Setenv("LEDGER_DRIVER", "postgres")
	t.Setenv("INGEST_RESCAN_PERIOD", "90s")

	cfg := LoadConfig()
	if cfg.Extraction.GroupingDistance != 30 {
		t.Errorf("GroupingDistance = %v, want 30", cfg.Extraction.GroupingDistance)
	}
	if cfg.Ledger.Driver != "postgres" {
		t.Errorf("Ledger.Driver = %q, want postgres", cfg.Ledger.Driver)
	}
	if cfg.Ingest.RescanPeriod != 90*time.Second {
		t.Errorf("RescanPeriod = %v, want 90s", cfg.Ingest.RescanPeriod)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := LoadConfig()
	cfg.Ledger.Driver = "oracle"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted unknown ledger driver")
	}

	cfg = LoadConfig()
	cfg.Extraction.MinPriceCentavos = 500
	cfg.Extraction.MaxPriceCentavos = 100
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted inverted price bounds")
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError("TEST", "wrapped", ErrInvalidInput)
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("errors.Is should see the cause through AppError")
	}
	if err.Error() == "" {
		t.Error("Error() should render code and message")
	}
}
