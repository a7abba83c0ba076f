package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperDigest/internal/domain"
)

func openTemp(t *testing.T) *HistoryRepository {
	t.Helper()

	repo, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestHistoryRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openTemp(t)

	seen, err := repo.AlreadyProcessed(ctx, []string{"2501.00001", "2501.00002"})
	require.NoError(t, err)
	assert.Empty(t, seen)

	delivered := time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveProcessed(ctx, domain.ProcessedArticle{
		ArticleID: "2501.00001", Title: "First", Summary: "s1", DeliveredAt: delivered,
	}))
	require.NoError(t, repo.SaveProcessed(ctx, domain.ProcessedArticle{
		ArticleID: "2501.00001", Title: "First", Summary: "s1 updated", DeliveredAt: delivered.Add(24 * time.Hour),
	}))

	seen, err = repo.AlreadyProcessed(ctx, []string{"2501.00001", "2501.00002"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"2501.00001": true}, seen)

	var summary string
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT summary FROM processed_articles WHERE external_id = ?`, "2501.00001").Scan(&summary))
	assert.Equal(t, "s1 updated", summary)
}

func TestAlreadyProcessedWithoutIDs(t *testing.T) {
	t.Parallel()

	seen, err := openTemp(t).AlreadyProcessed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestOpenIsIdempotentOnExistingSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	first, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, first.SaveProcessed(context.Background(), domain.ProcessedArticle{ArticleID: "a", Title: "A", DeliveredAt: time.Now()}))
	require.NoError(t, first.Close())

	second, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer second.Close()

	seen, err := second.AlreadyProcessed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.True(t, seen["a"])
}
