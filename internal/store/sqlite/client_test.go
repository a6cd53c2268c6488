package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"spritedb/internal/config"
	"spritedb/internal/store"
)

func newTestStore(t *testing.T) (*Client, string) {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sprites.sqlite")
	client, err := New(ctx, "sqlite://"+path, &config.ProjectConfig{})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { client.Close(ctx) })
	return client, path
}

func blouseInput() store.ComponentInput {
	return store.ComponentInput{
		Name:       "blouse",
		Category:   "torso",
		TypeName:   "clothes",
		SourceFile: "blouse.json",
		SourceHash: "abc123",
		Variants:   []string{"red"},
		Animations: []store.AnimationInput{{Name: "walk", FrameCount: 9}},
		Layers: []store.LayerInput{
			{Number: 1, ZPosition: 35, Paths: map[string]string{"female": "torso/clothes/blouse/female"}},
		},
		Tags: []string{"clothing"},
		Credits: []store.CreditInput{
			{Notes: "example art", Authors: []string{"artist"}, Licenses: []string{"CC-BY-SA 3.0"}, URLs: []string{"https://example.org"}},
		},
	}
}

func TestNewBuildsFreshStore(t *testing.T) {
	ctx := context.Background()
	client, path := newTestStore(t)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected store file at %s: %v", path, err)
	}

	for _, table := range []string{
		"categories", "component_types", "components", "variants",
		"component_variants", "animations", "component_animations",
		"body_types", "layers", "layer_paths", "asset_files",
		"tags", "component_tags", "authors", "licenses",
		"credits", "credit_authors", "credit_licenses",
	} {
		rows, err := client.RunSQL(ctx, "SELECT COUNT(*) AS n FROM "+table, nil)
		if err != nil {
			t.Fatalf("counting %s: %v", table, err)
		}
		if n := rows[0]["n"].(int64); n != 0 {
			t.Fatalf("expected empty table %s, got %d rows", table, n)
		}
	}

	rows, err := client.RunSQL(ctx, "PRAGMA user_version", nil)
	if err != nil {
		t.Fatalf("reading user_version: %v", err)
	}
	if v := rows[0]["user_version"].(int64); v != schemaVersion {
		t.Fatalf("expected schema version %d, got %d", schemaVersion, v)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sprites.sqlite")

	client, err := New(ctx, "sqlite://"+path, &config.ProjectConfig{})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if _, err := client.UpsertComponent(ctx, blouseInput()); err != nil {
		t.Fatalf("upserting component: %v", err)
	}
	if err := client.Close(ctx); err != nil {
		t.Fatalf("closing store: %v", err)
	}

	reopened, err := New(ctx, "sqlite://"+path, &config.ProjectConfig{})
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer reopened.Close(ctx)

	rows, err := reopened.RunSQL(ctx, "SELECT COUNT(*) AS n FROM components", nil)
	if err != nil {
		t.Fatalf("counting components: %v", err)
	}
	if n := rows[0]["n"].(int64); n != 1 {
		t.Fatalf("expected reopen to preserve rows, got %d components", n)
	}
}

func TestStaleVersionTriggersRebuild(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sprites.sqlite")

	client, err := New(ctx, "sqlite://"+path, &config.ProjectConfig{})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if _, err := client.UpsertComponent(ctx, blouseInput()); err != nil {
		t.Fatalf("upserting component: %v", err)
	}
	if err := client.Close(ctx); err != nil {
		t.Fatalf("closing store: %v", err)
	}

	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening raw: %v", err)
	}
	if _, err := raw.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bumping version: %v", err)
	}
	if err := raw.Close(); err != nil {
		t.Fatalf("closing raw: %v", err)
	}

	rebuilt, err := New(ctx, "sqlite://"+path, &config.ProjectConfig{})
	if err != nil {
		t.Fatalf("reopening stale store: %v", err)
	}
	defer rebuilt.Close(ctx)

	rows, err := rebuilt.RunSQL(ctx, "SELECT COUNT(*) AS n FROM components", nil)
	if err != nil {
		t.Fatalf("counting components: %v", err)
	}
	if n := rows[0]["n"].(int64); n != 0 {
		t.Fatalf("expected rebuilt store to be empty, got %d components", n)
	}
}

func TestFailedRebuildLeavesOriginalIntact(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sprites.sqlite")

	client, err := New(ctx, "sqlite://"+path, &config.ProjectConfig{})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if _, err := client.UpsertComponent(ctx, blouseInput()); err != nil {
		t.Fatalf("upserting component: %v", err)
	}
	if err := client.Close(ctx); err != nil {
		t.Fatalf("closing store: %v", err)
	}

	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening raw: %v", err)
	}
	if _, err := raw.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bumping version: %v", err)
	}
	if err := raw.Close(); err != nil {
		t.Fatalf("closing raw: %v", err)
	}

	// A non-empty directory at the staging path makes the rebuild fail
	// before it can touch the canonical file.
	staging := path + ".migrate"
	if err := os.MkdirAll(filepath.Join(staging, "blocker"), 0o755); err != nil {
		t.Fatalf("creating staging blocker: %v", err)
	}

	if _, err := New(ctx, "sqlite://"+path, &config.ProjectConfig{}); err == nil {
		t.Fatalf("expected rebuild to fail")
	} else if !errors.Is(err, store.ErrMigrationFailed) && !errors.Is(err, store.ErrStorageUnavailable) {
		t.Fatalf("expected migration or storage error, got %v", err)
	}

	raw, err = sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopening original: %v", err)
	}
	defer raw.Close()

	var n int64
	if err := raw.QueryRow("SELECT COUNT(*) FROM components").Scan(&n); err != nil {
		t.Fatalf("counting components in original: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected original store untouched, got %d components", n)
	}
}

func TestMemoryDSN(t *testing.T) {
	ctx := context.Background()
	client, err := New(ctx, "sqlite://:memory:", &config.ProjectConfig{})
	if err != nil {
		t.Fatalf("opening memory store: %v", err)
	}
	defer client.Close(ctx)

	categories, err := client.ListCategories(ctx)
	if err != nil {
		t.Fatalf("listing categories: %v", err)
	}
	if len(categories) != 0 {
		t.Fatalf("expected empty store, got %d categories", len(categories))
	}
}

func TestUseAfterCloseRejected(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestStore(t)

	if err := client.Close(ctx); err != nil {
		t.Fatalf("closing store: %v", err)
	}

	if _, err := client.ListCategories(ctx); err == nil {
		t.Fatalf("expected error from closed store")
	}
}

func TestEnsureSchemaOnCurrentStore(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestStore(t)

	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("expected current schema, got %v", err)
	}
}
