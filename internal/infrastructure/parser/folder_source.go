package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"PaperDigest/internal/config"
	"PaperDigest/internal/domain"
	"PaperDigest/internal/ports"
)

const localPattern = "*.pdf"

// FolderSource turns every PDF directly inside a directory into an article.
type FolderSource struct {
	folder string
	logger *slog.Logger
}

var _ ports.DocumentSource = (*FolderSource)(nil)

// NewFolderSource binds the folder to enumerate.
func NewFolderSource(folder string, log *slog.Logger) *FolderSource {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &FolderSource{folder: folder, logger: log}
}

// Fetch lists folder/*.pdf (non-recursive) in glob order.
func (s *FolderSource) Fetch(_ context.Context) ([]domain.Article, error) {
	info, err := os.Stat(s.folder)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidFolder, s.folder)
	}

	matches, err := filepath.Glob(filepath.Join(s.folder, localPattern))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.folder, err)
	}

	articles := make([]domain.Article, 0, len(matches))
	for _, path := range matches {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		articles = append(articles, domain.Article{
			ID:          name,
			Title:       name,
			PDFLink:     fileURL(abs),
			ContentPath: path,
		})
	}

	s.logger.Debug("folder source done", "folder", s.folder, "count", len(articles))
	return articles, nil
}

func fileURL(abs string) string {
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
