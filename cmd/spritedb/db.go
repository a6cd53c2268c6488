package main

import (
	"context"
	"fmt"
	"strings"

	"spritedb/internal/config"
	"spritedb/internal/store"
	"spritedb/internal/store/postgres"
	"spritedb/internal/store/sqlite"
)

const configFile = "spritedb.yaml"

func loadConfig() (*config.ProjectConfig, error) {
	return config.LoadProjectConfig(configFile)
}

// openDB picks the storage backend from the DSN scheme.
func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn := cfg.Database.DSN
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.New(ctx, dsn, cfg)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.New(ctx, dsn, cfg)
	default:
		return nil, fmt.Errorf("unsupported database DSN scheme in %q", dsn)
	}
}
