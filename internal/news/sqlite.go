package news

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS news (
	id      TEXT PRIMARY KEY,
	title   TEXT NOT NULL,
	url     TEXT NOT NULL,
	date_ms INTEGER NOT NULL,
	domain  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_news_date ON news(date_ms DESC);
CREATE INDEX IF NOT EXISTS idx_news_domain_date ON news(domain, date_ms DESC);
`

// SQLiteStore keeps articles in a local database file. Dates are stored as
// Unix milliseconds so ordering and range filters stay in SQL.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, newsErrors.InvalidInput("sqlite store requires store.sqlite_path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) List(ctx context.Context, q Query) ([]Article, error) {
	var (
		where string
		args  []interface{}
	)
	// Search is matched in Go: SQLite's lower() only folds ASCII and the
	// result has to agree with the Firestore backend.
	search := q.Mode() == ModeSearch
	switch q.Mode() {
	case ModeDomain:
		where = "WHERE domain = ?"
		args = append(args, strings.TrimSpace(q.Domain))
	case ModeDateRange:
		where = "WHERE date_ms >= ? AND date_ms <= ?"
		args = append(args, q.Start.UnixMilli(), q.End.UnixMilli())
	}

	stmt := "SELECT id, title, url, date_ms, domain FROM news " + where + " ORDER BY date_ms DESC, id ASC"
	if q.Limit > 0 && !search {
		stmt += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var (
			a      Article
			dateMS int64
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &dateMS, &a.Domain); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.Date = time.UnixMilli(dateMS).UTC()
		if search && !q.Matches(a) {
			continue
		}
		articles = append(articles, a)
		if q.Limit > 0 && len(articles) == q.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}

// Upsert inserts or replaces articles by ID. Articles without an ID get a
// fresh ULID.
func (s *SQLiteStore) Upsert(ctx context.Context, articles ...Article) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO news (id, title, url, date_ms, domain) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET title = excluded.title, url = excluded.url, date_ms = excluded.date_ms, domain = excluded.domain`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, a := range articles {
		id := strings.TrimSpace(a.ID)
		if id == "" {
			id = ulid.Make().String()
		}
		date := a.Date
		if date.IsZero() {
			date = Epoch
		}
		if _, err := stmt.ExecContext(ctx, id, a.Title, a.URL, date.UnixMilli(), a.Domain); err != nil {
			return fmt.Errorf("upsert article %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
