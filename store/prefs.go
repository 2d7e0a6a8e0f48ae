// Package store persists the handful of client preferences unichat keeps
// between runs in a small SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Prefs is a string key/value table.
type Prefs struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open creates the database file (and its directory) if needed.
func Open(dbPath string) (*Prefs, error) {
	db, err := initDB(dbPath)
	if err != nil {
		return nil, err
	}
	return &Prefs{db: db, path: dbPath}, nil
}

func (p *Prefs) Path() string { return p.path }

func (p *Prefs) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Get returns the stored value and whether the key exists.
func (p *Prefs) Get(key string) (string, bool, error) {
	var value string
	err := p.db.QueryRow("SELECT value FROM prefs WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get pref %q: %w", key, err)
	}
	return value, true, nil
}

func (p *Prefs) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.db.Exec(`INSERT INTO prefs(key, value, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("set pref %q: %w", key, err)
	}
	return nil
}

func (p *Prefs) Delete(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.db.Exec("DELETE FROM prefs WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete pref %q: %w", key, err)
	}
	return nil
}

// All returns every stored preference, for `unichat doctor`.
func (p *Prefs) All() (map[string]string, error) {
	rows, err := p.db.Query("SELECT key, value FROM prefs ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
