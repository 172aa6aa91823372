// Package cache is the client-side state store: the localStorage analog.
// Values are JSON blobs keyed by string, persisted in sqlite so the
// last-active page and memoized asset payloads survive restarts.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	_ "rsc.io/sqlite"
)

// Well-known keys and key prefixes.
const (
	KeyActivePage = "activePage"
	KeyWallet     = "walletAddress"

	PrefixLottie    = "lottie_"
	PrefixLootboxes = "lootboxes_"
)

type Store struct {
	db *sql.DB
}

// Open creates (or opens) the store at path. ":memory:" gives a
// throwaway store for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec("CREATE TABLE IF NOT EXISTS state (key VARCHAR(255) NOT NULL, value TEXT NOT NULL, PRIMARY KEY (key))")
	if err != nil {
		return fmt.Errorf("cache migration failed: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save stores value under key, JSON-serialized. Replaces any previous
// value.
func (s *Store) Save(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = s.db.Exec("INSERT OR REPLACE INTO state (key, value) VALUES (?, ?)", key, string(b))
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Load reads key into out. Returns false when the key is absent or the
// stored value no longer unmarshals.
func (s *Store) Load(key string, out any) bool {
	var raw string
	row := s.db.QueryRow("SELECT value FROM state WHERE key = ?", key)
	if err := row.Scan(&raw); err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Printf("cache: stale value for %s: %v", key, err)
		return false
	}
	return true
}

// ClearPrefixes deletes every entry whose key starts with one of the
// given prefixes. The catalog page runs this sweep on every visit.
func (s *Store) ClearPrefixes(prefixes ...string) {
	for _, p := range prefixes {
		res, err := s.db.Exec("DELETE FROM state WHERE key LIKE ?", p+"%")
		if err != nil {
			log.Printf("cache: clear %s*: %v", p, err)
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			log.Printf("cache: cleared %d entries under %s*", n, p)
		}
	}
}
