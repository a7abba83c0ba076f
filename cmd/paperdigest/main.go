package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"PaperDigest/internal/app"
	"PaperDigest/internal/config"
	"PaperDigest/internal/logging"
)

type cliFlags struct {
	configPath    string
	localFolder   string
	downloadDir   string
	output        string
	backend       string
	history       string
	verbose       bool
	keepDownloads bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:   "paperdigest",
		Short: "Summarize newly listed papers and email an HTML digest",
		Long: `paperdigest fetches new papers from an arXiv listing page (or a local
folder of PDFs), asks an LLM backend for a summary of each one, writes an
HTML digest and emails it to the configured recipient.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig(cmd, flags)
			logger := logging.New(cfg.Logging.Level, flags.verbose)

			result := app.New(cfg, logger, app.Overrides{}).Run(cmd.Context())
			if result.Failed() {
				logger.Error("application stopped", "error", result.Err)
				return result.Err
			}
			logger.Info("run finished", "status", string(result.Status), "articles", len(result.Articles))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "YAML config file (default: $PAPER_DIGEST_CONFIG)")
	f.StringVar(&flags.localFolder, "local-folder", "", "summarize PDFs from this directory instead of the listing page")
	f.StringVar(&flags.downloadDir, "download-dir", "", "base directory for downloaded PDFs (default \"documents\")")
	f.StringVar(&flags.output, "output", "", "path of the generated HTML digest (default \"finalSummary.html\")")
	f.StringVar(&flags.backend, "llm", "", "summarization backend: local, gateway, openai or ollama (default \"local\")")
	f.StringVar(&flags.history, "history", "", "history database (SQLite path or postgres:// DSN) to skip delivered papers")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	f.BoolVar(&flags.keepDownloads, "keep-downloads", false, "keep downloaded PDFs after the run")

	return cmd
}

// loadConfig layers flags over file and environment settings.
func loadConfig(cmd *cobra.Command, flags cliFlags) config.Config {
	cfg := config.LoadFrom(flags.configPath)

	changed := cmd.Flags().Changed
	if changed("local-folder") {
		cfg.Source.LocalFolder = flags.localFolder
	}
	if changed("download-dir") {
		cfg.Source.DownloadDir = flags.downloadDir
	}
	if changed("output") {
		cfg.Report.OutputPath = flags.output
	}
	if changed("llm") {
		cfg.Summarizer.Backend = flags.backend
	}
	if changed("history") {
		cfg.History.DSN = flags.history
	}
	if flags.keepDownloads {
		cfg.Source.KeepDownloads = true
	}

	return cfg
}
