package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores expenses in a local SQLite file.
type SQLiteRepository struct {
	sqlRepository
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := openSQL("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// One writer at a time avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	if err := RunSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{sqlRepository{db: db, dialect: "sqlite", now: time.Now}}, nil
}
