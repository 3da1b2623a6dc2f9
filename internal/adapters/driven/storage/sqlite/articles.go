// Package sqlite provides the relational store for scraped regulatory
// articles.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
)

// Ensure ArticleStore implements the interface.
var _ driven.ArticleStore = (*ArticleStore)(nil)

// ArticleStore persists scraped articles in a local SQLite database.
// The article URL is unique; re-ingesting the same article is a
// silent no-op.
type ArticleStore struct {
	db   *sql.DB
	path string
}

const articleSchema = `
CREATE TABLE IF NOT EXISTS articles (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	source         TEXT NOT NULL,
	title          TEXT NOT NULL,
	url            TEXT NOT NULL UNIQUE,
	date_published TEXT NOT NULL DEFAULT '',
	content        TEXT NOT NULL,
	language       TEXT NOT NULL DEFAULT 'en',
	created_at     TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source);
`

// NewArticleStore opens (or creates) the article database under
// dataDir.
func NewArticleStore(dataDir string) (*ArticleStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "articles.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(articleSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &ArticleStore{db: db, path: dbPath}, nil
}

// Save inserts an article. A URL already present is skipped silently
// and reported as not inserted. Articles with empty content are
// rejected with ErrEmptyContent.
func (s *ArticleStore) Save(ctx context.Context, article domain.Article) (bool, error) {
	if err := article.Validate(); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO articles (source, title, url, date_published, content, language)
		VALUES (?, ?, ?, ?, ?, ?)
	`, article.Source, article.Title, article.URL, article.DatePublished, article.Content, article.Language)
	if err != nil {
		return false, fmt.Errorf("inserting article: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking insert result: %w", err)
	}
	return n > 0, nil
}

// ListVectorizable returns all articles with non-empty content,
// ordered by id.
func (s *ArticleStore) ListVectorizable(ctx context.Context) ([]domain.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, title, url, date_published, content, language
		FROM articles
		WHERE content != ''
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(
			&a.ID, &a.Source, &a.Title, &a.URL, &a.DatePublished, &a.Content, &a.Language,
		); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return articles, nil
}

// Count returns the total number of stored articles.
func (s *ArticleStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return count, nil
}

// CountBySource returns article counts keyed by source code.
func (s *ArticleStore) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT source, COUNT(*) FROM articles GROUP BY source ORDER BY source")
	if err != nil {
		return nil, fmt.Errorf("counting by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("scanning source count: %w", err)
		}
		counts[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source counts: %w", err)
	}
	return counts, nil
}

// Path returns the database file path.
func (s *ArticleStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *ArticleStore) Close() error {
	return s.db.Close()
}
