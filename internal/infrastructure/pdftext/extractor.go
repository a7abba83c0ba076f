// Package pdftext pulls plain text out of PDF files for summarization.
package pdftext

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"PaperDigest/internal/ports"
)

// MaxChars bounds the text handed to a backend.
const MaxChars = 4000

// Extractor reads PDFs page by page.
type Extractor struct {
	logger *slog.Logger
}

var _ ports.TextExtractor = (*Extractor)(nil)

// NewExtractor returns an Extractor logging failures to log.
func NewExtractor(log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Extractor{logger: log}
}

// Extract returns the first MaxChars characters of the document text, or ""
// when the file is missing or cannot be parsed.
func (e *Extractor) Extract(path string) string {
	text, err := readText(path)
	if err != nil {
		e.logger.Error("extract pdf text", "path", path, "error", err)
		return ""
	}

	text = truncate(text, MaxChars)
	e.logger.Debug("extracted pdf text", "path", path, "chars", len([]rune(text)))
	return text
}

func readText(path string) (text string, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(pageText)
		// stop once enough text is collected
		if b.Len() >= MaxChars*4 {
			break
		}
	}

	return b.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
