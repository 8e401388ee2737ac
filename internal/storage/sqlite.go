package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// MemoryPath opens a journal that lives only as long as the process.
const MemoryPath = ":memory:"

// Journal records pipeline runs in a SQLite database.
type Journal struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Open opens the journal at dbPath, creating its directory when needed.
// Migrate must be called before use.
func Open(dbPath string) (*Journal, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := MemoryPath
	if dbPath != MemoryPath {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// A single connection keeps an in-memory journal alive between queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	return &Journal{db: db, dbPath: dbPath, now: time.Now}, nil
}

// Path returns the database path the journal was opened with.
func (j *Journal) Path() string {
	return j.dbPath
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// OpenMigrated opens the journal and applies pending migrations.
func OpenMigrated(ctx context.Context, dbPath string) (*Journal, error) {
	j, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := j.Migrate(ctx); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}
