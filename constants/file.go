package constants

import (
	"path/filepath"
	"strings"
)

// SourceFormat is the detected input format for a catalog file.
type SourceFormat string

const (
	PDF   SourceFormat = "PDF"
	XLSX  SourceFormat = "XLSX"
	IMAGE SourceFormat = "IMAGE"
)

// AllowedExtensions holds the default allowed file extensions for catalog ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"xlsx": {},
	"xlsm": {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// DetectFormat maps a file path to its source format by extension.
func DetectFormat(path string) (SourceFormat, bool) {
	switch NormalizeExt(filepath.Ext(path)) {
	case "pdf":
		return PDF, true
	case "xlsx", "xlsm":
		return XLSX, true
	case "jpg", "jpeg", "png", "webp":
		return IMAGE, true
	}
	return "", false
}
