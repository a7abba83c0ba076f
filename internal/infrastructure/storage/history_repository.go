package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"PaperDigest/internal/domain"
	"PaperDigest/internal/ports"
)

const historyTable = "processed_articles"

// HistoryRepository remembers delivered articles in SQLite or Postgres.
type HistoryRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ArticleRepository = (*HistoryRepository)(nil)

// Open picks the driver from the DSN: postgres:// and postgresql:// go to
// lib/pq, anything else is treated as a SQLite file path.
func Open(ctx context.Context, dsn string) (*HistoryRepository, error) {
	driver := "sqlite3"
	var placeholder sq.PlaceholderFormat = sq.Question
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver, placeholder = "postgres", sq.Dollar
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	repo := NewHistoryRepository(db, placeholder)
	if err := repo.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewHistoryRepository wires an existing sql.DB.
func NewHistoryRepository(db *sql.DB, placeholder sq.PlaceholderFormat) *HistoryRepository {
	return &HistoryRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// Close releases the connection pool.
func (r *HistoryRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *HistoryRepository) ensureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + historyTable + ` (
		external_id  TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		summary      TEXT NOT NULL,
		delivered_at TIMESTAMP NOT NULL
	)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// AlreadyProcessed returns a map with IDs that already exist in storage.
func (r *HistoryRepository) AlreadyProcessed(ctx context.Context, ids []string) (map[string]bool, error) {
	if r.db == nil || len(ids) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := r.builder.
		Select("external_id").
		From(historyTable).
		Where(sq.Eq{"external_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query processed: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan id: %w", err)
		}
		result[id] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SaveProcessed upserts the delivered article snapshot.
func (r *HistoryRepository) SaveProcessed(ctx context.Context, article domain.ProcessedArticle) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert(historyTable).
		Columns("external_id", "title", "summary", "delivered_at").
		Values(article.ArticleID, article.Title, article.Summary, article.DeliveredAt.UTC()).
		Suffix(`ON CONFLICT (external_id) DO UPDATE
              SET title = EXCLUDED.title,
                  summary = EXCLUDED.summary,
                  delivered_at = EXCLUDED.delivered_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert processed: %w", err)
	}

	return nil
}
