package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"spritedb/internal/config"
	"spritedb/internal/store"
	"spritedb/internal/store/sqlite"
)

const blouseJSON = `{
	"name": "blouse",
	"type_name": "clothes",
	"layer_1": {"zPos": 35, "female": "torso/clothes/blouse/female"},
	"variants": ["red"],
	"animations": ["walk"],
	"credits": [{"notes": "original art", "authors": ["artist"], "licenses": ["CC-BY-SA 3.0"], "urls": ["https://example.org"]}]
}`

const bootsJSON = `{
	"name": "boots",
	"type_name": "feet",
	"layer_1": {"zPos": 15, "female": "feet/boots/female"},
	"variants": ["brown", "black"],
	"animations": ["walk", "slash"]
}`

func testConfig() *config.ProjectConfig {
	return &config.ProjectConfig{
		Taxonomy: []config.CategoryGroup{
			{Name: "torso", Types: []string{"clothes"}},
		},
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	client, err := sqlite.New(ctx, "sqlite://:memory:", testConfig())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { client.Close(ctx) })
	return client
}

func writeDefinitions(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func TestRunIngestsDefinitions(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	dir := writeDefinitions(t, map[string]string{
		"blouse.json": blouseJSON,
		"boots.json":  bootsJSON,
	})

	result, err := Run(ctx, testConfig(), db, dir, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ComponentsUpserted != 2 {
		t.Fatalf("ComponentsUpserted = %d, want 2", result.ComponentsUpserted)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	inventory, err := db.ComponentInventory(ctx)
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if len(inventory) != 2 {
		t.Fatalf("inventory = %+v", inventory)
	}

	byName := map[string]store.ComponentSummary{}
	for _, item := range inventory {
		byName[item.Name] = item
	}
	if byName["blouse"].CategoryName != "torso" {
		t.Errorf("blouse category = %s, want torso (from taxonomy)", byName["blouse"].CategoryName)
	}
	if byName["boots"].CategoryName != "feet" {
		t.Errorf("boots category = %s, want feet (type name fallback)", byName["boots"].CategoryName)
	}

	animations, err := db.ListAnimations(ctx, byName["boots"].ID)
	if err != nil {
		t.Fatalf("listing animations: %v", err)
	}
	counts := map[string]int{}
	for _, a := range animations {
		counts[a.Name] = a.FrameCount
	}
	if counts["walk"] != 9 || counts["slash"] != 6 {
		t.Fatalf("frame counts = %v", counts)
	}
}

func TestRunSkipsUnchangedFiles(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	dir := writeDefinitions(t, map[string]string{
		"blouse.json": blouseJSON,
		"boots.json":  bootsJSON,
	})

	if _, err := Run(ctx, testConfig(), db, dir, Options{}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	result, err := Run(ctx, testConfig(), db, dir, Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.FilesSkipped != 2 {
		t.Fatalf("FilesSkipped = %d, want 2", result.FilesSkipped)
	}
	if result.ComponentsUpserted != 0 {
		t.Fatalf("ComponentsUpserted = %d, want 0", result.ComponentsUpserted)
	}
}

func TestRunFullReprocessesEverything(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	dir := writeDefinitions(t, map[string]string{"blouse.json": blouseJSON})

	if _, err := Run(ctx, testConfig(), db, dir, Options{}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	result, err := Run(ctx, testConfig(), db, dir, Options{Full: true})
	if err != nil {
		t.Fatalf("full run: %v", err)
	}
	if result.ComponentsUpserted != 1 || result.FilesSkipped != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestRunRemovesStaleComponents(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	dir := writeDefinitions(t, map[string]string{
		"blouse.json": blouseJSON,
		"boots.json":  bootsJSON,
	})

	if _, err := Run(ctx, testConfig(), db, dir, Options{}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	if err := os.Remove(filepath.Join(dir, "boots.json")); err != nil {
		t.Fatalf("removing boots.json: %v", err)
	}

	result, err := Run(ctx, testConfig(), db, dir, Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.ComponentsRemoved != 1 {
		t.Fatalf("ComponentsRemoved = %d, want 1", result.ComponentsRemoved)
	}

	inventory, err := db.ComponentInventory(ctx)
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if len(inventory) != 1 || inventory[0].Name != "blouse" {
		t.Fatalf("inventory = %+v", inventory)
	}
}

func TestRunCollectsParseErrors(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	dir := writeDefinitions(t, map[string]string{
		"blouse.json": blouseJSON,
		"broken.json": "not json at all",
	})

	result, err := Run(ctx, testConfig(), db, dir, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ComponentsUpserted != 1 {
		t.Fatalf("ComponentsUpserted = %d, want 1", result.ComponentsUpserted)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v", result.Errors)
	}
}

func TestRunVerifyFlagsMissingAssets(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	dir := writeDefinitions(t, map[string]string{"blouse.json": blouseJSON})

	spriteRoot := t.TempDir()
	present := filepath.Join(spriteRoot, "torso/clothes/blouse/female/walk")
	if err := os.MkdirAll(present, 0o755); err != nil {
		t.Fatalf("creating sprite dirs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(present, "red.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("writing sprite: %v", err)
	}

	cfg := testConfig()
	cfg.Sprites.Root = spriteRoot

	result, err := Run(ctx, cfg, db, dir, Options{Verify: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.AssetsMissing != 0 {
		t.Fatalf("AssetsMissing = %d with the only asset present: %v", result.AssetsMissing, result.MissingFiles)
	}

	if err := os.Remove(filepath.Join(present, "red.png")); err != nil {
		t.Fatalf("removing sprite: %v", err)
	}
	result, err = Run(ctx, cfg, db, dir, Options{Full: true, Verify: true})
	if err != nil {
		t.Fatalf("verify run: %v", err)
	}
	if result.AssetsMissing != 1 {
		t.Fatalf("AssetsMissing = %d, want 1", result.AssetsMissing)
	}
	if len(result.MissingFiles) != 1 || result.MissingFiles[0] != "torso/clothes/blouse/female/walk/red.png" {
		t.Fatalf("MissingFiles = %v", result.MissingFiles)
	}
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"walk", 9},
		{"thrust", 8},
		{"shoot", 13},
		{"cast", 7},
		{"slash", 6},
		{"spellcast", 7},
		{"hurt", 6},
		{"idle", 1},
		{"Walk", 9},
		{"unknown", 1},
	}
	for _, tt := range tests {
		if got := FrameCount(tt.name); got != tt.want {
			t.Errorf("FrameCount(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}
