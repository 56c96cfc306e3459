package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/manuelrech/clocksync/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

// Storage is the local ledger of entries already written to the calendar.
// It exists so that re-running a sync does not depend on the server
// deduplicating repeated UIDs.
type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS synced_entries (
			entry_id TEXT PRIMARY KEY,
			summary TEXT NOT NULL DEFAULT '',
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			synced_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_synced_entries_start ON synced_entries(start_time)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}

	return nil
}

// IsSynced reports whether an entry id has already been written
func (s *Storage) IsSynced(entryID string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM synced_entries WHERE entry_id = ?`, entryID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query synced entry: %w", err)
	}
	return true, nil
}

// MarkSynced records an entry after its event was written
func (s *Storage) MarkSynced(entry *domain.TimeEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO synced_entries (entry_id, summary, start_time, end_time, synced_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(entry_id) DO UPDATE SET synced_at = excluded.synced_at`,
		entry.ID, entry.Summary(), entry.Start, entry.End, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

// CountSynced returns the number of recorded entries
func (s *Storage) CountSynced() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM synced_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count synced entries: %w", err)
	}
	return n, nil
}
