package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultName is the snapshot file name used when only a directory is given.
const DefaultName = "teamboard.db"

// Path resolves a snapshot location: directories get DefaultName appended.
func Path(location string) string {
	if location == "" {
		return DefaultName
	}
	if info, err := os.Stat(location); err == nil && info.IsDir() {
		return filepath.Join(location, DefaultName)
	}
	return location
}

// Open opens the SQLite file at path with foreign keys on, creating its
// directory if missing.
func Open(path string) (*sql.DB, error) {
	path = Path(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	return conn, nil
}
