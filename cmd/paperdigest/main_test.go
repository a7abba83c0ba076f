package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"PaperDigest/internal/config"
)

func TestRootRejectsUnknownBackend(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--llm", "bard", "--local-folder", t.TempDir()})

	err := cmd.ExecuteContext(context.Background())
	require.ErrorIs(t, err, config.ErrUnknownBackend)
}

func TestRootRejectsMissingFolder(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--local-folder", filepath.Join(t.TempDir(), "absent"), "-v"})

	err := cmd.ExecuteContext(context.Background())
	require.ErrorIs(t, err, config.ErrInvalidFolder)
}

func TestRootRejectsPositionalArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--local-folder", t.TempDir(), "extra"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown command")
}

func TestLoadConfigAppliesFlags(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--local-folder", dir,
		"--output", "out.html",
		"--llm", "ollama",
		"--history", "history.db",
		"--keep-downloads",
	}))

	flags := cliFlags{localFolder: dir, output: "out.html", backend: "ollama", history: "history.db", keepDownloads: true}
	cfg := loadConfig(cmd, flags)

	require.Equal(t, dir, cfg.Source.LocalFolder)
	require.Equal(t, "out.html", cfg.Report.OutputPath)
	require.Equal(t, config.BackendOllama, cfg.Summarizer.Backend)
	require.Equal(t, "history.db", cfg.History.DSN)
	require.True(t, cfg.Source.KeepDownloads)
}
