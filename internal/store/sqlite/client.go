package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"spritedb/internal/config"
	"spritedb/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*Client)(nil)

// Client owns the store handle and its compiled statement set for the
// process lifetime. No concurrent writers are supported; the busy_timeout
// pragma is the only wait applied when another process holds the file.
type Client struct {
	db    *sql.DB
	cfg   *config.ProjectConfig
	stmts *statements
}

// New opens the store at the DSN path, rebuilding it first when the file
// is missing or carries a stale schema version. The rebuild stages at a
// sibling temporary path and atomically replaces the canonical file, so a
// reader never observes a partially written store.
func New(ctx context.Context, dsn string, cfg *config.ProjectConfig) (*Client, error) {
	driverDSN, err := parseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing sqlite DSN: %w", err)
	}

	if isMemory(driverDSN) {
		return newMemory(ctx, driverDSN, cfg)
	}

	path := storePath(driverDSN)
	current, err := isCurrent(ctx, path)
	if err != nil {
		return nil, err
	}
	if !current {
		if err := rebuild(ctx, path); err != nil {
			return nil, err
		}
	}

	db, err := open(ctx, driverDSN)
	if err != nil {
		return nil, err
	}

	client := &Client{db: db, cfg: cfg}
	if err := client.prepare(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return client, nil
}

func newMemory(ctx context.Context, driverDSN string, cfg *config.ProjectConfig) (*Client, error) {
	db, err := open(ctx, driverDSN)
	if err != nil {
		return nil, err
	}
	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", store.ErrMigrationFailed, err)
	}
	client := &Client{db: db, cfg: cfg}
	if err := client.prepare(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return client, nil
}

func open(ctx context.Context, driverDSN string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", driverDSN)
	if err != nil {
		return nil, fmt.Errorf("%w: opening sqlite database: %v", store.ErrStorageUnavailable, err)
	}

	// Single exclusive owner; a pool of one keeps pragmas and prepared
	// statements bound to the same underlying connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: pinging sqlite: %v", store.ErrStorageUnavailable, err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 30000;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: setting pragma %q: %v", store.ErrStorageUnavailable, pragma, err)
		}
	}

	return db, nil
}

// isCurrent reports whether a store already exists at path with the
// expected schema version.
func isCurrent(ctx context.Context, path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: checking store file: %v", store.ErrStorageUnavailable, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return false, fmt.Errorf("%w: opening store file: %v", store.ErrStorageUnavailable, err)
	}
	defer db.Close()

	version, err := storedVersion(ctx, db)
	if err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}
	return version == schemaVersion, nil
}

// rebuild constructs a fresh store at a temporary sibling path and renames
// it over the canonical one. On any failure the temporary file is removed
// and the original, if present, is left untouched.
func rebuild(ctx context.Context, path string) error {
	tmp := path + ".migrate"
	_ = os.Remove(tmp)

	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return fmt.Errorf("%w: creating staging store: %v", store.ErrStorageUnavailable, err)
	}

	if err := applySchema(ctx, db); err != nil {
		db.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", store.ErrMigrationFailed, err)
	}

	if err := db.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: closing staging store: %v", store.ErrMigrationFailed, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: replacing store file: %v", store.ErrStorageUnavailable, err)
	}

	return nil
}

// EnsureSchema verifies the open handle carries the expected schema
// version. Migration happens at open time; an out-of-date handle here
// means the file was swapped underneath us.
func (c *Client) EnsureSchema(ctx context.Context) error {
	version, err := storedVersion(ctx, c.db)
	if err != nil {
		return err
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: store at schema version %d, expected %d", store.ErrMigrationFailed, version, schemaVersion)
	}
	return nil
}

// Close finalizes every compiled statement before releasing the handle.
// Statements must not be used afterwards.
func (c *Client) Close(ctx context.Context) error {
	var firstErr error
	if c.stmts != nil {
		if err := c.stmts.close(); err != nil {
			firstErr = err
		}
		c.stmts = nil
	}
	if err := c.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
