package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"minimap_sync/internal/dataType"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const settingsKey = "minimap"

// SQLitePersister stores the settings payload in a key/value table
type SQLitePersister struct {
	db *sql.DB
}

func OpenSQLitePersister(path string) (*SQLitePersister, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	// one connection so ":memory:" keeps a single database
	db.SetMaxOpenConns(1)

	sqlTable := `CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := db.Exec(sqlTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}
	return &SQLitePersister{db: db}, nil
}

func (p *SQLitePersister) Close() error {
	return p.db.Close()
}

func (p *SQLitePersister) Load() (dataType.MinimapSettings, error) {
	cfg := dataType.DefaultMinimapSettings()

	var value string
	err := p.db.QueryRow(`SELECT value FROM settings WHERE key = ?;`, settingsKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read settings: %w", err)
	}

	delta, err := ParseDelta(value)
	if err != nil {
		return cfg, fmt.Errorf("decode stored settings: %w", err)
	}
	return delta.Apply(cfg), nil
}

func (p *SQLitePersister) Save(s dataType.MinimapSettings) error {
	_, err := p.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value;`, settingsKey, FormatPayload(s))
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
