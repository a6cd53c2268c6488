package postgres

import (
	"context"
	"fmt"

	"spritedb/internal/store"
)

// EnsureSchema creates the sprite hierarchy tables if they do not exist.
// All DDL runs in a single Exec call, which PostgreSQL wraps in an implicit
// transaction, so the schema either fully appears or not at all. Unlike the
// sqlite backend there is no drop-and-rebuild step: a shared server database
// is not ours to recreate, and IF NOT EXISTS keeps repeated runs idempotent.
func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS categories (
    id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name         TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    description  TEXT
);

CREATE TABLE IF NOT EXISTS component_types (
    id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    category_id  BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    name         TEXT NOT NULL,
    display_name TEXT NOT NULL,
    CONSTRAINT uq_type_per_category UNIQUE (category_id, name)
);

CREATE TABLE IF NOT EXISTS components (
    id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    type_id          BIGINT NOT NULL REFERENCES component_types(id) ON DELETE CASCADE,
    name             TEXT NOT NULL,
    display_name     TEXT NOT NULL,
    source_file      TEXT NOT NULL DEFAULT '',
    source_hash      TEXT NOT NULL DEFAULT '',
    raw_definition   TEXT NOT NULL DEFAULT '',
    match_body_color BOOLEAN NOT NULL DEFAULT FALSE,
    CONSTRAINT uq_component_per_type UNIQUE (type_id, name)
);

CREATE TABLE IF NOT EXISTS variants (
    id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name         TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS component_variants (
    component_id BIGINT NOT NULL REFERENCES components(id) ON DELETE CASCADE,
    variant_id   BIGINT NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
    PRIMARY KEY (component_id, variant_id)
);

CREATE TABLE IF NOT EXISTS animations (
    id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name         TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    frame_count  INTEGER NOT NULL CHECK (frame_count > 0)
);

CREATE TABLE IF NOT EXISTS component_animations (
    component_id BIGINT NOT NULL REFERENCES components(id) ON DELETE CASCADE,
    animation_id BIGINT NOT NULL REFERENCES animations(id) ON DELETE CASCADE,
    PRIMARY KEY (component_id, animation_id)
);

CREATE TABLE IF NOT EXISTS body_types (
    id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name         TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS layers (
    id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    component_id     BIGINT NOT NULL REFERENCES components(id) ON DELETE CASCADE,
    layer_number     INTEGER NOT NULL,
    z_position       INTEGER NOT NULL,
    custom_animation TEXT,
    CONSTRAINT uq_layer_per_component UNIQUE (component_id, layer_number)
);

CREATE TABLE IF NOT EXISTS layer_paths (
    id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    layer_id     BIGINT NOT NULL REFERENCES layers(id) ON DELETE CASCADE,
    body_type_id BIGINT NOT NULL REFERENCES body_types(id) ON DELETE CASCADE,
    path         TEXT NOT NULL,
    CONSTRAINT uq_path_per_body_type UNIQUE (layer_id, body_type_id)
);

CREATE TABLE IF NOT EXISTS asset_files (
    id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    layer_path_id BIGINT NOT NULL REFERENCES layer_paths(id) ON DELETE CASCADE,
    animation_id  BIGINT NOT NULL REFERENCES animations(id) ON DELETE CASCADE,
    variant_id    BIGINT NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
    file_path     TEXT NOT NULL,
    CONSTRAINT uq_asset_file UNIQUE (layer_path_id, animation_id, variant_id)
);

CREATE TABLE IF NOT EXISTS tags (
    id   BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS component_tags (
    component_id BIGINT NOT NULL REFERENCES components(id) ON DELETE CASCADE,
    tag_id       BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (component_id, tag_id)
);

CREATE TABLE IF NOT EXISTS authors (
    id   BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS licenses (
    id   BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS credits (
    id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    component_id BIGINT NOT NULL REFERENCES components(id) ON DELETE CASCADE,
    notes        TEXT NOT NULL DEFAULT '',
    urls         JSONB NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS credit_authors (
    credit_id BIGINT NOT NULL REFERENCES credits(id) ON DELETE CASCADE,
    author_id BIGINT NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
    PRIMARY KEY (credit_id, author_id)
);

CREATE TABLE IF NOT EXISTS credit_licenses (
    credit_id  BIGINT NOT NULL REFERENCES credits(id) ON DELETE CASCADE,
    license_id BIGINT NOT NULL REFERENCES licenses(id) ON DELETE CASCADE,
    PRIMARY KEY (credit_id, license_id)
);

CREATE INDEX IF NOT EXISTS idx_types_category ON component_types (category_id);
CREATE INDEX IF NOT EXISTS idx_components_type ON components (type_id);
CREATE INDEX IF NOT EXISTS idx_components_source_file ON components (source_file);
CREATE INDEX IF NOT EXISTS idx_variants_component ON component_variants (component_id);
CREATE INDEX IF NOT EXISTS idx_animations_component ON component_animations (component_id);
CREATE INDEX IF NOT EXISTS idx_layers_component ON layers (component_id);
CREATE INDEX IF NOT EXISTS idx_layer_paths_layer ON layer_paths (layer_id);
CREATE INDEX IF NOT EXISTS idx_asset_files_lookup ON asset_files (layer_path_id, animation_id, variant_id);
CREATE INDEX IF NOT EXISTS idx_credits_component ON credits (component_id);
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("%w: ensuring schema: %v", store.ErrMigrationFailed, err)
	}
	return nil
}
