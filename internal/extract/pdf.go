package extract

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// pdfString matches literal string operands of text-showing operators
// (Tj, TJ, ', ") inside a decoded PDF content stream.
var pdfString = regexp.MustCompile(`\((?:[^()\\]|\\.)*\)`)

// FromPDF extracts the text-showing operands from every page of a PDF.
// Pages are separated with blank lines so downstream paragraph grouping
// treats them as paragraph breaks.
func FromPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get page count for %s: %w", path, err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind %s: %w", path, err)
	}
	ctx, err := api.ReadValidateAndOptimize(f, nil)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF %s: %w", path, err)
	}

	var pages []string
	for pageNr := 1; pageNr <= pageCount; pageNr++ {
		content, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			return "", fmt.Errorf("failed to extract page %d of %s: %w", pageNr, path, err)
		}
		raw, err := io.ReadAll(content)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d content: %w", pageNr, err)
		}
		if text := contentStreamText(string(raw)); text != "" {
			pages = append(pages, text)
		}
	}

	text := strings.Join(pages, "\n\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, path)
	}
	return text, nil
}

// contentStreamText pulls literal string operands out of a decoded content
// stream and joins them with spaces.
func contentStreamText(stream string) string {
	matches := pdfString.FindAllString(stream, -1)
	if len(matches) == 0 {
		return ""
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if s := unescapePDFString(m[1 : len(m)-1]); strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func unescapePDFString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
