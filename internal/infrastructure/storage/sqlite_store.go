package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"NoticeBot/internal/ports"
)

const sentTable = "sent_links"

const sentSchema = `CREATE TABLE IF NOT EXISTS sent_links (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	link    TEXT NOT NULL,
	sent_at TIMESTAMP NOT NULL
)`

// SQLiteStore persists delivered links in a SQLite table, ordered by insertion.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.SentStore = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (or creates) the database at path and ensures the schema.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sentSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an open handle whose schema is already in place.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Read returns stored links in append order.
func (s *SQLiteStore) Read(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("link").From(sentTable).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sent links: %w", err)
	}

	var links []string
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, link)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return links, nil
}

// Write replaces the stored list in a single transaction.
func (s *SQLiteStore) Write(ctx context.Context, links []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	del, delArgs, err := sq.Delete(sentTable).ToSql()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear sent links: %w", err)
	}

	if len(links) > 0 {
		stamp := s.now().UTC()
		insert := sq.Insert(sentTable).Columns("link", "sent_at")
		for _, link := range links {
			insert = insert.Values(link, stamp)
		}
		ins, insArgs, err := insert.ToSql()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, ins, insArgs...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert sent links: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sent links: %w", err)
	}
	return nil
}
