package store

import "errors"

// ErrStorageUnavailable marks failures to create, open, or replace the
// store file. Fatal for the operation chain; no retry.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrMigrationFailed marks a schema rebuild that aborted part-way. The
// original store, if any, is left untouched.
var ErrMigrationFailed = errors.New("migration failed")
