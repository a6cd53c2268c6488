package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// schemaVersion is stamped into PRAGMA user_version when a store is built.
// A store whose stored version differs is rebuilt from scratch.
const schemaVersion = 1

const schemaDDL = `
CREATE TABLE categories (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	description  TEXT
);

CREATE TABLE component_types (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id  INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	name         TEXT NOT NULL,
	display_name TEXT NOT NULL,
	CONSTRAINT uq_type_name_category UNIQUE (name, category_id)
);

CREATE TABLE components (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	type_id          INTEGER NOT NULL REFERENCES component_types(id) ON DELETE CASCADE,
	name             TEXT NOT NULL,
	display_name     TEXT NOT NULL,
	source_file      TEXT NOT NULL DEFAULT '',
	source_hash      TEXT NOT NULL DEFAULT '',
	raw_definition   TEXT NOT NULL DEFAULT '',
	match_body_color INTEGER NOT NULL DEFAULT 0,
	CONSTRAINT uq_component_name_type UNIQUE (name, type_id)
);

CREATE TABLE variants (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL
);

CREATE TABLE component_variants (
	component_id INTEGER NOT NULL REFERENCES components(id) ON DELETE CASCADE,
	variant_id   INTEGER NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
	PRIMARY KEY (component_id, variant_id)
);

CREATE TABLE animations (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	frame_count  INTEGER NOT NULL DEFAULT 1 CHECK (frame_count > 0)
);

CREATE TABLE component_animations (
	component_id INTEGER NOT NULL REFERENCES components(id) ON DELETE CASCADE,
	animation_id INTEGER NOT NULL REFERENCES animations(id) ON DELETE CASCADE,
	PRIMARY KEY (component_id, animation_id)
);

CREATE TABLE body_types (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL
);

CREATE TABLE layers (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	component_id     INTEGER NOT NULL REFERENCES components(id) ON DELETE CASCADE,
	layer_number     INTEGER NOT NULL,
	z_position       INTEGER NOT NULL,
	custom_animation TEXT,
	CONSTRAINT uq_layer_component_number UNIQUE (component_id, layer_number)
);

CREATE TABLE layer_paths (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	layer_id     INTEGER NOT NULL REFERENCES layers(id) ON DELETE CASCADE,
	body_type_id INTEGER NOT NULL REFERENCES body_types(id) ON DELETE CASCADE,
	path         TEXT NOT NULL,
	CONSTRAINT uq_layer_path UNIQUE (layer_id, body_type_id)
);

CREATE TABLE asset_files (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	layer_path_id INTEGER NOT NULL REFERENCES layer_paths(id) ON DELETE CASCADE,
	animation_id  INTEGER NOT NULL REFERENCES animations(id) ON DELETE CASCADE,
	variant_id    INTEGER NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
	file_path     TEXT NOT NULL,
	CONSTRAINT uq_asset_file UNIQUE (layer_path_id, animation_id, variant_id)
);

CREATE TABLE tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE component_tags (
	component_id INTEGER NOT NULL REFERENCES components(id) ON DELETE CASCADE,
	tag_id       INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (component_id, tag_id)
);

CREATE TABLE authors (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE licenses (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	url  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE credits (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	component_id INTEGER NOT NULL REFERENCES components(id) ON DELETE CASCADE,
	notes        TEXT NOT NULL DEFAULT '',
	urls         TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE credit_authors (
	credit_id INTEGER NOT NULL REFERENCES credits(id) ON DELETE CASCADE,
	author_id INTEGER NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
	PRIMARY KEY (credit_id, author_id)
);

CREATE TABLE credit_licenses (
	credit_id  INTEGER NOT NULL REFERENCES credits(id) ON DELETE CASCADE,
	license_id INTEGER NOT NULL REFERENCES licenses(id) ON DELETE CASCADE,
	PRIMARY KEY (credit_id, license_id)
);

CREATE INDEX idx_component_types_category ON component_types (category_id);
CREATE INDEX idx_components_type ON components (type_id);
CREATE INDEX idx_components_source_file ON components (source_file);
CREATE INDEX idx_layers_component ON layers (component_id);
CREATE INDEX idx_layer_paths_layer ON layer_paths (layer_id);
CREATE INDEX idx_layer_paths_body_type ON layer_paths (body_type_id);
CREATE INDEX idx_asset_files_layer_path ON asset_files (layer_path_id);
CREATE INDEX idx_asset_files_anim_variant ON asset_files (animation_id, variant_id);
CREATE INDEX idx_credits_component ON credits (component_id);
`

// applySchema runs every DDL statement inside a single transaction and
// stamps the schema version. Any statement failure aborts the whole build.
func applySchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(schemaDDL) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("stamping schema version: %w", err)
	}

	return nil
}

func storedVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
