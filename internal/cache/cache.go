// Package cache provides a SQLite-backed local cache of record previews so
// list views work offline and repeated listings avoid refetching every
// document. The remote repository stays the source of truth; the cache is
// written through on listing and invalidated per collection after any
// successful mutation.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pokrova/contentctl/internal/models"
)

// Store is the SQLite preview cache.
type Store struct {
	db *sql.DB
}

// New opens (and creates if needed) the cache database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS previews (
		collection TEXT NOT NULL,
		uid TEXT NOT NULL,
		payload JSON NOT NULL,
		position INTEGER NOT NULL,
		fetched_at DATETIME NOT NULL,
		PRIMARY KEY (collection, uid)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ReplaceCollection atomically swaps a collection's cached previews for a
// fresh listing, preserving the listing order.
func (s *Store) ReplaceCollection(c models.Collection, previews []models.Preview) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM previews WHERE collection = ?`, string(c)); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}

	now := time.Now().UTC()
	for i, p := range previews {
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal preview %s: %w", p.UID, err)
		}
		_, err = tx.Exec(
			`INSERT INTO previews (collection, uid, payload, position, fetched_at) VALUES (?, ?, ?, ?, ?)`,
			string(c), p.UID, string(payload), i, now,
		)
		if err != nil {
			return fmt.Errorf("insert preview %s: %w", p.UID, err)
		}
	}

	return tx.Commit()
}

// Collection returns the cached previews of a collection in listing order.
// An unknown collection yields an empty slice.
func (s *Store) Collection(c models.Collection) ([]models.Preview, error) {
	rows, err := s.db.Query(
		`SELECT payload FROM previews WHERE collection = ? ORDER BY position`,
		string(c),
	)
	if err != nil {
		return nil, fmt.Errorf("query previews: %w", err)
	}
	defer rows.Close()

	previews := []models.Preview{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan preview: %w", err)
		}
		var p models.Preview
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("unmarshal preview: %w", err)
		}
		previews = append(previews, p)
	}
	return previews, rows.Err()
}

// Invalidate drops a collection's cached previews. Mutations call this after
// a successful save so the next listing refetches.
func (s *Store) Invalidate(c models.Collection) error {
	if _, err := s.db.Exec(`DELETE FROM previews WHERE collection = ?`, string(c)); err != nil {
		return fmt.Errorf("invalidate collection: %w", err)
	}
	return nil
}

// FetchedAt returns when a collection was last cached, or the zero time when
// it never was.
func (s *Store) FetchedAt(c models.Collection) (time.Time, error) {
	var at sql.NullTime
	err := s.db.QueryRow(
		`SELECT MAX(fetched_at) FROM previews WHERE collection = ?`,
		string(c),
	).Scan(&at)
	if err != nil {
		return time.Time{}, fmt.Errorf("query fetched_at: %w", err)
	}
	if !at.Valid {
		return time.Time{}, nil
	}
	return at.Time, nil
}
