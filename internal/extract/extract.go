// Package extract pulls raw text out of job input sources (plain text,
// markdown, PDF). Extraction failures surface at job-creation time; a job is
// never created when no text can be extracted.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoText is returned when a source yields no extractable text.
var ErrNoText = errors.New("no extractable text in source")

// FromFile extracts text from the given file, dispatching on extension.
// Supported: .txt, .md, .pdf.
func FromFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return fromPlainText(path)
	case ".pdf":
		return FromPDF(path)
	default:
		return "", fmt.Errorf("unsupported input file type: %s", filepath.Ext(path))
	}
}

func fromPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, path)
	}
	return text, nil
}
