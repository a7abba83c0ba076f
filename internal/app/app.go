package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"PaperDigest/internal/config"
	"PaperDigest/internal/domain"
	"PaperDigest/internal/infrastructure/llm"
	"PaperDigest/internal/infrastructure/mail"
	"PaperDigest/internal/infrastructure/parser"
	"PaperDigest/internal/infrastructure/pdftext"
	"PaperDigest/internal/infrastructure/report"
	"PaperDigest/internal/infrastructure/staging"
	"PaperDigest/internal/infrastructure/storage"
	"PaperDigest/internal/logging"
	"PaperDigest/internal/ports"
	"PaperDigest/internal/usecase"
)

// Overrides replaces default adapters, mainly for tests.
type Overrides struct {
	Backend  ports.Backend
	Notifier ports.Notifier
	Now      func() time.Time
}

// Application wires configs to use cases for a single run.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	overrides Overrides
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger, overrides Overrides) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, false)
	}
	if overrides.Now == nil {
		overrides.Now = time.Now
	}
	return &Application{cfg: cfg, logger: baseLogger, overrides: overrides}
}

// Run performs exactly one digest run and releases every resource it acquired.
func (a *Application) Run(ctx context.Context) domain.RunResult {
	logger := logging.WithRun(a.logger)

	fail := func(err error) domain.RunResult {
		logger.Error("run failed", "error", err)
		return domain.RunResult{Status: domain.RunFailed, Err: err}
	}

	if err := a.cfg.Validate(); err != nil {
		return fail(err)
	}

	backend := a.overrides.Backend
	if backend == nil {
		var err error
		backend, err = llm.New(a.cfg.Summarizer)
		if err != nil {
			return fail(err)
		}
	}

	source, release, err := a.buildSource(logger)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn("release staging dir", "error", err)
		}
	}()

	deps := usecase.PipelineDeps{
		Source: source,
		Summarizer: usecase.NewSummarizer(
			pdftext.NewExtractor(logger.With("component", "extractor")),
			backend,
			logger.With("component", "summarizer", "backend", backend.Name()),
		),
		Renderer:     report.NewRenderer(a.overrides.Now),
		Notifier:     a.overrides.Notifier,
		Logger:       logger.With("component", "pipeline"),
		Now:          a.overrides.Now,
		SourceFolder: a.cfg.Source.LocalFolder,
		OutputPath:   a.cfg.Report.OutputPath,
	}
	if deps.Notifier == nil {
		deps.Notifier = mail.NewNotifier(a.cfg.Email, a.overrides.Now, logger.With("component", "mail"))
	}

	if dsn := a.cfg.History.DSN; dsn != "" {
		repo, err := storage.Open(ctx, dsn)
		if err != nil {
			return fail(fmt.Errorf("open history: %w", err))
		}
		defer repo.Close()
		deps.Repository = repo
	}

	return usecase.NewPipeline(deps).Run(ctx)
}

func (a *Application) buildSource(logger *slog.Logger) (ports.DocumentSource, func() error, error) {
	if !a.cfg.Source.Remote() {
		src := parser.NewFolderSource(a.cfg.Source.LocalFolder, logger.With("component", "source.folder"))
		return src, func() error { return nil }, nil
	}

	dir, err := staging.Acquire(a.cfg.Source.DownloadDir, a.cfg.Source.KeepDownloads)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("staging dir acquired", "path", dir.Path())

	src := parser.NewArxivSource(parser.ArxivOptions{
		ListingURL:  a.cfg.Source.ListingURL,
		ArticleBase: a.cfg.Source.ArticleBase,
		Dir:         dir.Path(),
		Logger:      logger.With("component", "source.arxiv"),
	})
	return src, dir.Release, nil
}
