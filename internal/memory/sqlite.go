package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS memories (
	key        TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	category   TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memories_category ON memories(category);
`

// SQLite persists memories in a single table.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens the database at path and applies the schema. Creates file if missing.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer avoids SQLITE_BUSY between concurrent tool calls.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying memory schema: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) Name() string { return "sqlite" }

func (s *SQLite) Store(ctx context.Context, key, content string, category Category) error {
	if err := validateEntry(key, content); err != nil {
		return err
	}
	now := s.now().UnixNano()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (key, content, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			content = excluded.content,
			category = excluded.category,
			updated_at = excluded.updated_at`,
		key, content, string(category), now, now)
	if err != nil {
		return fmt.Errorf("storing memory %q: %w", key, err)
	}
	return nil
}

// Recall narrows candidates with LIKE in SQL and ranks them in Go.
func (s *SQLite) Recall(ctx context.Context, query string, limit int) ([]Entry, error) {
	q := "SELECT key, content, category, created_at, updated_at FROM memories"
	var args []any
	if queryTerms := terms(query); len(queryTerms) > 0 {
		conds := make([]string, 0, len(queryTerms))
		for _, t := range queryTerms {
			conds = append(conds, "(lower(key) LIKE ? OR lower(content) LIKE ?)")
			pattern := "%" + t + "%"
			args = append(args, pattern, pattern)
		}
		q += " WHERE " + strings.Join(conds, " OR ")
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("recalling memories: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rank(entries, query, limit), nil
}

func (s *SQLite) Get(ctx context.Context, key string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT key, content, category, created_at, updated_at FROM memories WHERE key = ?", key)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

func (s *SQLite) Forget(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM memories WHERE key = ?", key)
	if err != nil {
		return false, fmt.Errorf("forgetting memory %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM memories").Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e                Entry
		category         string
		created, updated int64
	)
	if err := row.Scan(&e.Key, &e.Content, &category, &created, &updated); err != nil {
		return Entry{}, err
	}
	e.Category = Category(category)
	e.CreatedAt = time.Unix(0, created)
	e.UpdatedAt = time.Unix(0, updated)
	return e, nil
}
