// Package history records which chapters have been opened.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pders01/tankobon/internal/debuglog"
	"github.com/pders01/tankobon/internal/failure"
)

// Progress is one opened chapter of an item.
type Progress struct {
	ItemID    string
	ItemTitle string
	UnitID    string
	UnitTitle string
}

// Store saves and reads reading progress.
type Store interface {
	SaveProgress(ctx context.Context, p Progress) error
	ReadChapters(ctx context.Context, itemID string) ([]string, error)
	Available() bool
	Close() error
}

const schema = `
PRAGMA foreign_keys = ON;
CREATE TABLE IF NOT EXISTS items (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS units (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  read_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_units_item ON units(item_id);
`

// SQLStore keeps progress in a sqlite database.
type SQLStore struct {
	db *sql.DB
}

// Open returns a working store or, when the database cannot be prepared, an
// Unavailable store that accepts every call. The error is returned alongside
// so the caller can report it.
func Open(ctx context.Context, path string) (Store, error) {
	store, err := OpenSQL(ctx, path)
	if err != nil {
		debuglog.Warnf("history unavailable: %v", err)
		return Unavailable{Reason: err}, err
	}
	return store, nil
}

// OpenSQL opens and migrates the database at path. ":memory:" keeps it in
// memory.
func OpenSQL(ctx context.Context, path string) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Each pooled connection to ":memory:" would be a separate database.
	db.SetMaxOpenConns(1)

	s := &SQLStore{db: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLStore) Available() bool { return true }

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveProgress inserts the item on first sight and records the unit. A unit
// saved twice keeps its first row.
func (s *SQLStore) SaveProgress(ctx context.Context, p Progress) error {
	if p.ItemID == "" || p.UnitID == "" {
		return failure.New(failure.PersistenceUnavailable, "save progress", errors.New("missing item or unit id"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence("begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO items (id, title, created_at) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		p.ItemID, p.ItemTitle, now,
	); err != nil {
		return persistence("save item "+p.ItemID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO units (id, item_id, title, read_at) VALUES (?, ?, ?, ?)`,
		p.UnitID, p.ItemID, p.UnitTitle, now,
	); err != nil {
		return persistence("save unit "+p.UnitID, err)
	}

	if err := tx.Commit(); err != nil {
		return persistence("commit tx", err)
	}
	debuglog.WithFields(debuglog.Fields{"item": p.ItemID, "unit": p.UnitID}).Debugf("progress saved")
	return nil
}

// ReadChapters lists the unit ids recorded for an item in the order they
// were first read.
func (s *SQLStore) ReadChapters(ctx context.Context, itemID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM units WHERE item_id = ? ORDER BY rowid`, itemID)
	if err != nil {
		return nil, persistence("query units", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, persistence("scan unit", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("iterate units", err)
	}
	return ids, nil
}

func (s *SQLStore) counts(ctx context.Context) (items, units int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&items); err != nil {
		return 0, 0, err
	}
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM units`).Scan(&units)
	return items, units, err
}

func persistence(op string, err error) error {
	return failure.New(failure.PersistenceUnavailable, op, err)
}

// Unavailable stands in when no database could be opened. Saves are dropped
// and reads return nothing.
type Unavailable struct {
	Reason error
}

func (Unavailable) SaveProgress(context.Context, Progress) error { return nil }

func (Unavailable) ReadChapters(context.Context, string) ([]string, error) { return nil, nil }

func (Unavailable) Available() bool { return false }

func (Unavailable) Close() error { return nil }
