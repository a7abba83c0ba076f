package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"PaperDigest/internal/domain"
	"PaperDigest/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.DocumentSource
	Summarizer *Summarizer
	Renderer   ports.Renderer
	Notifier   ports.Notifier
	Repository ports.ArticleRepository
	Logger     *slog.Logger
	Now        func() time.Time

	// SourceFolder switches the report heading to the folder digest.
	SourceFolder string
	OutputPath   string
}

// Pipeline runs source → summarizer → renderer → notifier once.
type Pipeline struct {
	source       ports.DocumentSource
	summarizer   *Summarizer
	renderer     ports.Renderer
	notifier     ports.Notifier
	repository   ports.ArticleRepository
	logger       *slog.Logger
	now          func() time.Time
	sourceFolder string
	outputPath   string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Pipeline{
		source:       deps.Source,
		summarizer:   deps.Summarizer,
		renderer:     deps.Renderer,
		notifier:     deps.Notifier,
		repository:   deps.Repository,
		logger:       deps.Logger,
		now:          deps.Now,
		sourceFolder: deps.SourceFolder,
		outputPath:   deps.OutputPath,
	}
}

// Run executes one digest. An empty listing or empty summarizer output ends
// with RunNoNewItems and no email; any stage error ends with RunFailed.
func (p *Pipeline) Run(ctx context.Context) domain.RunResult {
	articles, err := p.source.Fetch(ctx)
	if err != nil {
		return p.fail(domain.RunResult{}, fmt.Errorf("fetch documents: %w", err))
	}
	p.logger.Info("found papers", "count", len(articles))
	if len(articles) == 0 {
		p.logger.Warn("no articles found to process")
		return domain.RunResult{Status: domain.RunNoNewItems}
	}

	articles, err = p.dropDelivered(ctx, articles)
	if err != nil {
		return p.fail(domain.RunResult{}, err)
	}
	if len(articles) == 0 {
		p.logger.Warn("all listed articles were already delivered")
		return domain.RunResult{Status: domain.RunNoNewItems}
	}

	summarized, outcomes := p.summarizer.Summarize(ctx, articles)
	result := domain.RunResult{Articles: summarized, Outcomes: outcomes}
	if len(summarized) == 0 {
		p.logger.Warn("no summaries generated")
		result.Status = domain.RunNoNewItems
		return result
	}
	p.logOutcomes(outcomes)

	html, err := p.renderer.Render(summarized, p.sourceFolder, p.outputPath)
	if err != nil {
		return p.fail(result, fmt.Errorf("render digest: %w", err))
	}
	result.OutputPath = p.outputPath

	if err := p.notifier.Send(ctx, html); err != nil {
		return p.fail(result, fmt.Errorf("send digest: %w", err))
	}

	if err := p.recordDelivered(ctx, summarized); err != nil {
		return p.fail(result, err)
	}

	p.logger.Info("summary processed and email sent")
	result.Status = domain.RunOK
	return result
}

func (p *Pipeline) fail(result domain.RunResult, err error) domain.RunResult {
	p.logger.Error("run failed", "error", err)
	result.Status = domain.RunFailed
	result.Err = err
	return result
}

func (p *Pipeline) dropDelivered(ctx context.Context, articles []domain.Article) ([]domain.Article, error) {
	if p.repository == nil {
		return articles, nil
	}

	ids := make([]string, len(articles))
	for i, art := range articles {
		ids[i] = art.ID
	}

	seen, err := p.repository.AlreadyProcessed(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	fresh := articles[:0:0]
	for _, art := range articles {
		if seen[art.ID] {
			p.logger.Debug("already delivered", "article_id", art.ID)
			continue
		}
		fresh = append(fresh, art)
	}
	return fresh, nil
}

func (p *Pipeline) recordDelivered(ctx context.Context, articles []domain.Article) error {
	if p.repository == nil {
		return nil
	}

	deliveredAt := p.now()
	for _, art := range articles {
		err := p.repository.SaveProcessed(ctx, domain.ProcessedArticle{
			ArticleID:   art.ID,
			Title:       art.Title,
			Summary:     art.Summary,
			DeliveredAt: deliveredAt,
		})
		if err != nil {
			return fmt.Errorf("persist article %s: %w", art.ID, err)
		}
	}
	return nil
}

func (p *Pipeline) logOutcomes(outcomes []domain.ItemOutcome) {
	var summarized int
	for _, o := range outcomes {
		if o.Status == domain.ItemSummarized {
			summarized++
			continue
		}
		p.logger.Debug("article skipped", "article_id", o.ArticleID, "reason", o.Reason)
	}
	p.logger.Info("summarization finished", "summarized", summarized, "skipped", len(outcomes)-summarized)
}
