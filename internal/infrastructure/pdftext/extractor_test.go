package pdftext

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTextPDF(t *testing.T, path string, lines ...string) {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	for _, line := range lines {
		doc.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
	}
	require.NoError(t, doc.OutputFileAndClose(path))
}

func TestExtractReadsText(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "paper1.pdf")
	writeTextPDF(t, path, "Neural networks achieve strong results.")

	text := NewExtractor(nil).Extract(path)
	assert.Contains(t, text, "Neural networks achieve")
}

func TestExtractMissingFile(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", NewExtractor(nil).Extract(filepath.Join(t.TempDir(), "missing.pdf")))
}

func TestExtractCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corrupt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 garbage without xref"), 0o644))

	assert.Equal(t, "", NewExtractor(nil).Extract(path))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))

	long := strings.Repeat("é", MaxChars+10)
	out := truncate(long, MaxChars)
	assert.Len(t, []rune(out), MaxChars)
}
