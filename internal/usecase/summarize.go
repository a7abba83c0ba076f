package usecase

import (
	"context"
	"log/slog"
	"os"

	"PaperDigest/internal/domain"
	"PaperDigest/internal/ports"
)

const (
	reasonContentMissing = "content missing"
	reasonEmptyText      = "empty text"
)

// Summarizer fills Article.Summary one article at a time. A failing article
// keeps an empty summary and never stops the batch.
type Summarizer struct {
	extractor ports.TextExtractor
	backend   ports.Backend
	logger    *slog.Logger
}

// NewSummarizer wires the extractor with the selected backend.
func NewSummarizer(extractor ports.TextExtractor, backend ports.Backend, log *slog.Logger) *Summarizer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Summarizer{extractor: extractor, backend: backend, logger: log}
}

// Summarize returns a copy of articles with summaries set and one outcome per article.
func (s *Summarizer) Summarize(ctx context.Context, articles []domain.Article) ([]domain.Article, []domain.ItemOutcome) {
	out := make([]domain.Article, len(articles))
	outcomes := make([]domain.ItemOutcome, 0, len(articles))

	for i, article := range articles {
		article.Summary = ""
		outcome := s.summarizeOne(ctx, &article)
		out[i] = article
		outcomes = append(outcomes, outcome)
	}

	return out, outcomes
}

func (s *Summarizer) summarizeOne(ctx context.Context, article *domain.Article) domain.ItemOutcome {
	skip := func(reason string) domain.ItemOutcome {
		return domain.ItemOutcome{ArticleID: article.ID, Status: domain.ItemSkipped, Reason: reason}
	}

	if !contentExists(article.ContentPath) {
		s.logger.Error("pdf not found", "article_id", article.ID, "path", article.ContentPath)
		return skip(reasonContentMissing)
	}

	text := s.extractor.Extract(article.ContentPath)
	if text == "" {
		return skip(reasonEmptyText)
	}
	s.logger.Debug("extracted text", "article_id", article.ID, "preview", preview(text, 100))

	summary, err := s.backend.Submit(ctx, article.Title, text)
	if err != nil {
		s.logger.Error("summarize article", "article_id", article.ID, "backend", s.backend.Name(), "error", err)
		return skip(err.Error())
	}

	article.Summary = summary
	s.logger.Info("generated summary", "article_id", article.ID, "backend", s.backend.Name())
	return domain.ItemOutcome{ArticleID: article.ID, Status: domain.ItemSummarized}
}

func contentExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
