package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sqlite "modernc.org/sqlite"
)

// Database keeps price samples and log entries. Reads go through a pooled
// handle while every write is serialized on a single connection.
type Database struct {
	logger *slog.Logger
	read   *sql.DB
	write  *sql.DB
	path   string
}

const (
	maxReaders  = 8
	maxIdleTime = time.Minute
)

const pragmas = `
	PRAGMA journal_mode = WAL;
	PRAGMA synchronous = NORMAL;
	PRAGMA temp_store = MEMORY;
	PRAGMA busy_timeout = 5000;
	PRAGMA foreign_keys = ON;
	PRAGMA trusted_schema = OFF;
`

var hookOnce sync.Once

func openPool(path string, conns int) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(conns)
	db.SetConnMaxIdleTime(maxIdleTime)
	return db, nil
}

// New opens the database at path and applies pending migrations.
func New(ctx context.Context, path string) (*Database, error) {
	hookOnce.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, _ string) error {
			_, err := conn.ExecContext(context.Background(), pragmas, nil)
			return err
		})
	})

	read, err := openPool(path, maxReaders)
	if err != nil {
		return nil, fmt.Errorf("open %s for reading: %w", path, err)
	}

	write, err := openPool(path, 1)
	if err != nil {
		read.Close()
		return nil, fmt.Errorf("open %s for writing: %w", path, err)
	}

	d := &Database{
		logger: slog.Default().With(slog.String("module", "database")),
		read:   read,
		write:  write,
		path:   path,
	}

	if err := d.migrate(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	return d, nil
}

func (d *Database) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

// Close releases both pools. The write pool is closed first so a pending
// checkpoint is flushed before readers go away.
func (d *Database) Close() {
	d.write.Close()
	d.read.Close()
}

func (d *Database) Path() string {
	return d.path
}
