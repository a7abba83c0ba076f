package ports

import (
	"context"

	"PaperDigest/internal/domain"
)

// DocumentSource lists candidate papers and stages their raw content locally.
// An empty slice means nothing to do; only configuration problems are errors.
type DocumentSource interface {
	Fetch(ctx context.Context) ([]domain.Article, error)
}

// TextExtractor returns the leading plain text of a document, or "" on failure.
type TextExtractor interface {
	Extract(path string) string
}

// Backend turns a paper title and its text into a summary.
type Backend interface {
	Name() string
	Submit(ctx context.Context, title, text string) (string, error)
}

// Renderer formats the digest, writes it to outputPath and returns the HTML.
type Renderer interface {
	Render(articles []domain.Article, sourceFolder, outputPath string) (string, error)
}

// Notifier delivers the rendered digest.
type Notifier interface {
	Send(ctx context.Context, html string) error
}

// ArticleRepository remembers delivered articles across runs.
type ArticleRepository interface {
	AlreadyProcessed(ctx context.Context, ids []string) (map[string]bool, error)
	SaveProcessed(ctx context.Context, article domain.ProcessedArticle) error
}
