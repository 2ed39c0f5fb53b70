package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Ledger     LedgerConfig
	OCR        OCRConfig
	Extraction ExtractionConfig
	Ingest     IngestConfig
}

// LedgerConfig holds ingest-ledger database configuration. The ledger keeps
// track of already-processed catalog files for the watch daemon; extraction
// results themselves only ever leave the system as JSON documents.
type LedgerConfig struct {
	Driver           string // "sqlite" or "postgres"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine        string // "exec" runs the tesseract binary, "gosseract" links libtesseract
	Tesseract     string
	Pdftoppm      string
	TessdataDir   string
	Language      string
	DPI           int
	PSM           int
	OEM           int
	MaxPages      int
	MinConfidence float64
	Format        string // "tsv" or "hocr"
}

// ExtractionConfig holds the core heuristics' policy knobs. Thresholds and
// bounds vary per catalog layout and deployment; none of them is a
// universal constant.
type ExtractionConfig struct {
	GroupingDistance float64 // page-space clustering threshold
	MinPriceCentavos int64   // plausible price lower bound
	MaxPriceCentavos int64   // plausible price upper bound
	MinCodeLength    int     // uppercase-token code heuristic
	ImageColumn      int     // 1-based sheet column holding embedded images
	PageWorkers      int     // parallel page fan-out
}

// IngestConfig holds watch-daemon configuration
type IngestConfig struct {
	WatchDir     string
	OutputDir    string
	Workers      int
	QueueSize    int
	RescanPeriod time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Driver:           getEnv("LEDGER_DRIVER", "sqlite"),
			DSN:              getEnv("LEDGER_DSN", "file:catalog-ledger.db"),
			MaxConns:         getEnvAsInt32("LEDGER_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("LEDGER_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("LEDGER_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("LEDGER_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("LEDGER_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("LEDGER_STATEMENT_TIMEOUT", 0),
		},
		OCR: OCRConfig{
			Engine:        getEnv("OCR_ENGINE", "exec"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			Language:      getEnv("OCR_LANGUAGE", "por"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			PSM:           getEnvAsInt("OCR_PSM", 0),
			OEM:           getEnvAsInt("OCR_OEM", 0),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
			MinConfidence: getEnvAsFloat("OCR_MIN_CONFIDENCE", 0.5),
			Format:        getEnv("OCR_FORMAT", "tsv"),
		},
		Extraction: ExtractionConfig{
			GroupingDistance: getEnvAsFloat("EXTRACT_GROUPING_DISTANCE", 100.0),
			MinPriceCentavos: getEnvAsInt64("EXTRACT_MIN_PRICE_CENTAVOS", 100),
			MaxPriceCentavos: getEnvAsInt64("EXTRACT_MAX_PRICE_CENTAVOS", 10_000_000),
			MinCodeLength:    getEnvAsInt("EXTRACT_MIN_CODE_LENGTH", 4),
			ImageColumn:      getEnvAsInt("EXTRACT_IMAGE_COLUMN", 4),
			PageWorkers:      getEnvAsInt("EXTRACT_PAGE_WORKERS", 4),
		},
		Ingest: IngestConfig{
			WatchDir:     getEnv("WATCH_DIR", "./catalogs"),
			OutputDir:    getEnv("OUTPUT_DIR", "./extracted"),
			Workers:      getEnvAsInt("INGEST_WORKERS", 2),
			QueueSize:    getEnvAsInt("INGEST_QUEUE_SIZE", 64),
			RescanPeriod: getEnvAsDuration("INGEST_RESCAN_PERIOD", 5*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Ledger.Driver {
	case "sqlite", "postgres":
	default:
		return NewAppError("CONFIG_ERROR", "LEDGER_DRIVER must be sqlite or postgres", ErrInvalidInput)
	}
	if c.Ledger.DSN == "" {
		return NewAppError("CONFIG_ERROR", "LEDGER_DSN is required", ErrInvalidInput)
	}
	if c.Extraction.GroupingDistance <= 0 {
		return NewAppError("CONFIG_ERROR", "EXTRACT_GROUPING_DISTANCE must be positive", ErrInvalidInput)
	}
	if c.Extraction.MinPriceCentavos >= c.Extraction.MaxPriceCentavos {
		return NewAppError("CONFIG_ERROR", "price bounds must satisfy min < max", ErrInvalidInput)
	}
	switch c.OCR.Format {
	case "tsv", "hocr":
	default:
		return NewAppError("CONFIG_ERROR", "OCR_FORMAT must be tsv or hocr", ErrInvalidInput)
	}
	switch c.OCR.Engine {
	case "", "exec", "gosseract":
	default:
		return NewAppError("CONFIG_ERROR", "OCR_ENGINE must be exec or gosseract", ErrInvalidInput)
	}
	return nil
}
