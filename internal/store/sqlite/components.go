package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"spritedb/internal/store"
)

// UpsertComponent replaces the component row and all of its children in a
// single transaction. Shared lookup rows (variants, animations, body types,
// tags, authors, licenses) are inserted on first use and reused afterwards.
func (c *Client) UpsertComponent(ctx context.Context, in store.ComponentInput) (int64, error) {
	if strings.TrimSpace(in.Name) == "" {
		return 0, fmt.Errorf("component name is required")
	}
	if strings.TrimSpace(in.TypeName) == "" {
		return 0, fmt.Errorf("component type is required")
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	category := in.Category
	if strings.TrimSpace(category) == "" {
		category = in.TypeName
	}
	categoryID, err := ensureRow(ctx, tx,
		`INSERT OR IGNORE INTO categories (name, display_name) VALUES (?, ?)`,
		`SELECT id FROM categories WHERE name = ?`,
		category, displayName(category))
	if err != nil {
		return 0, fmt.Errorf("ensuring category: %w", err)
	}

	typeID, err := ensureRowArgs(ctx, tx,
		`INSERT OR IGNORE INTO component_types (category_id, name, display_name) VALUES (?, ?, ?)`,
		[]any{categoryID, in.TypeName, displayName(in.TypeName)},
		`SELECT id FROM component_types WHERE name = ? AND category_id = ?`,
		[]any{in.TypeName, categoryID})
	if err != nil {
		return 0, fmt.Errorf("ensuring component type: %w", err)
	}

	// Replace semantics: a re-ingested definition drops the old component
	// row and its cascaded children before inserting the fresh tree.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM components WHERE name = ? AND type_id = ?`, in.Name, typeID); err != nil {
		return 0, fmt.Errorf("removing previous component: %w", err)
	}

	display := in.DisplayName
	if display == "" {
		display = displayName(in.Name)
	}
	matchBodyColor := 0
	if in.MatchBodyColor {
		matchBodyColor = 1
	}
	result, err := tx.ExecContext(ctx, `
		INSERT INTO components (type_id, name, display_name, source_file, source_hash, raw_definition, match_body_color)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		typeID, in.Name, display, in.SourceFile, in.SourceHash, in.RawDefinition, matchBodyColor)
	if err != nil {
		return 0, fmt.Errorf("inserting component: %w", err)
	}
	componentID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading component id: %w", err)
	}

	variantIDs := make(map[string]int64, len(in.Variants))
	for _, variant := range in.Variants {
		variantID, err := ensureRow(ctx, tx,
			`INSERT OR IGNORE INTO variants (name, display_name) VALUES (?, ?)`,
			`SELECT id FROM variants WHERE name = ?`,
			variant, displayName(variant))
		if err != nil {
			return 0, fmt.Errorf("ensuring variant %s: %w", variant, err)
		}
		variantIDs[variant] = variantID
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO component_variants (component_id, variant_id) VALUES (?, ?)`,
			componentID, variantID); err != nil {
			return 0, fmt.Errorf("linking variant %s: %w", variant, err)
		}
	}

	animationIDs := make(map[string]int64, len(in.Animations))
	for _, animation := range in.Animations {
		frameCount := animation.FrameCount
		if frameCount < 1 {
			frameCount = 1
		}
		animationID, err := ensureRowArgs(ctx, tx,
			`INSERT OR IGNORE INTO animations (name, display_name, frame_count) VALUES (?, ?, ?)`,
			[]any{animation.Name, displayName(animation.Name), frameCount},
			`SELECT id FROM animations WHERE name = ?`,
			[]any{animation.Name})
		if err != nil {
			return 0, fmt.Errorf("ensuring animation %s: %w", animation.Name, err)
		}
		animationIDs[animation.Name] = animationID
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO component_animations (component_id, animation_id) VALUES (?, ?)`,
			componentID, animationID); err != nil {
			return 0, fmt.Errorf("linking animation %s: %w", animation.Name, err)
		}
	}

	for _, layer := range in.Layers {
		var customAnimation any
		if layer.CustomAnimation != "" {
			customAnimation = layer.CustomAnimation
		}
		layerResult, err := tx.ExecContext(ctx, `
			INSERT INTO layers (component_id, layer_number, z_position, custom_animation)
			VALUES (?, ?, ?, ?)`,
			componentID, layer.Number, layer.ZPosition, customAnimation)
		if err != nil {
			return 0, fmt.Errorf("inserting layer %d: %w", layer.Number, err)
		}
		layerID, err := layerResult.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("reading layer id: %w", err)
		}

		bodyTypes := make([]string, 0, len(layer.Paths))
		for bodyType := range layer.Paths {
			bodyTypes = append(bodyTypes, bodyType)
		}
		sort.Strings(bodyTypes)

		for _, bodyType := range bodyTypes {
			layerPath := layer.Paths[bodyType]
			bodyTypeID, err := ensureRow(ctx, tx,
				`INSERT OR IGNORE INTO body_types (name, display_name) VALUES (?, ?)`,
				`SELECT id FROM body_types WHERE name = ?`,
				bodyType, displayName(bodyType))
			if err != nil {
				return 0, fmt.Errorf("ensuring body type %s: %w", bodyType, err)
			}

			pathResult, err := tx.ExecContext(ctx, `
				INSERT INTO layer_paths (layer_id, body_type_id, path)
				VALUES (?, ?, ?)`,
				layerID, bodyTypeID, layerPath)
			if err != nil {
				return 0, fmt.Errorf("inserting layer path %s: %w", layerPath, err)
			}
			layerPathID, err := pathResult.LastInsertId()
			if err != nil {
				return 0, fmt.Errorf("reading layer path id: %w", err)
			}

			for _, animation := range in.Animations {
				for _, variant := range in.Variants {
					filePath := assetFilePath(layerPath, animation.Name, variant)
					if _, err := tx.ExecContext(ctx, `
						INSERT OR IGNORE INTO asset_files (layer_path_id, animation_id, variant_id, file_path)
						VALUES (?, ?, ?, ?)`,
						layerPathID, animationIDs[animation.Name], variantIDs[variant], filePath); err != nil {
						return 0, fmt.Errorf("inserting asset file %s: %w", filePath, err)
					}
				}
			}
		}
	}

	for _, tag := range in.Tags {
		tagID, err := ensureRow(ctx, tx,
			`INSERT OR IGNORE INTO tags (name) VALUES (?)`,
			`SELECT id FROM tags WHERE name = ?`,
			tag)
		if err != nil {
			return 0, fmt.Errorf("ensuring tag %s: %w", tag, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO component_tags (component_id, tag_id) VALUES (?, ?)`,
			componentID, tagID); err != nil {
			return 0, fmt.Errorf("linking tag %s: %w", tag, err)
		}
	}

	for _, credit := range in.Credits {
		urls := credit.URLs
		if urls == nil {
			urls = []string{}
		}
		urlsJSON, err := json.Marshal(urls)
		if err != nil {
			return 0, fmt.Errorf("marshaling credit urls: %w", err)
		}
		creditResult, err := tx.ExecContext(ctx,
			`INSERT INTO credits (component_id, notes, urls) VALUES (?, ?, ?)`,
			componentID, credit.Notes, string(urlsJSON))
		if err != nil {
			return 0, fmt.Errorf("inserting credit: %w", err)
		}
		creditID, err := creditResult.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("reading credit id: %w", err)
		}

		for _, author := range credit.Authors {
			authorID, err := ensureRow(ctx, tx,
				`INSERT OR IGNORE INTO authors (name) VALUES (?)`,
				`SELECT id FROM authors WHERE name = ?`,
				author)
			if err != nil {
				return 0, fmt.Errorf("ensuring author %s: %w", author, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO credit_authors (credit_id, author_id) VALUES (?, ?)`,
				creditID, authorID); err != nil {
				return 0, fmt.Errorf("linking author %s: %w", author, err)
			}
		}

		for _, license := range credit.Licenses {
			licenseID, err := ensureRow(ctx, tx,
				`INSERT OR IGNORE INTO licenses (name) VALUES (?)`,
				`SELECT id FROM licenses WHERE name = ?`,
				license)
			if err != nil {
				return 0, fmt.Errorf("ensuring license %s: %w", license, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO credit_licenses (credit_id, license_id) VALUES (?, ?)`,
				creditID, licenseID); err != nil {
				return 0, fmt.Errorf("linking license %s: %w", license, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing component: %w", err)
	}

	return componentID, nil
}

func (c *Client) RemoveStaleComponents(ctx context.Context, currentSourceFiles []string) (int64, error) {
	if len(currentSourceFiles) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(currentSourceFiles))
	args := make([]any, len(currentSourceFiles))
	for i, f := range currentSourceFiles {
		placeholders[i] = "?"
		args[i] = f
	}

	query := fmt.Sprintf(`
	DELETE FROM components
	WHERE source_file <> ''
	  AND source_file NOT IN (%s)
	`, strings.Join(placeholders, ", "))

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("removing stale components: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return affected, nil
}

func (c *Client) SourceHashes(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT source_file, source_hash FROM components
		WHERE source_file <> ''`)
	if err != nil {
		return nil, fmt.Errorf("querying source hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var sourceFile, sourceHash string
		if err := rows.Scan(&sourceFile, &sourceHash); err != nil {
			return nil, fmt.Errorf("scanning source hash: %w", err)
		}
		hashes[sourceFile] = sourceHash
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source hashes: %w", err)
	}

	return hashes, nil
}

func ensureRow(ctx context.Context, tx *sql.Tx, insertSQL, selectSQL string, args ...any) (int64, error) {
	return ensureRowArgs(ctx, tx, insertSQL, args, selectSQL, args[:1])
}

func ensureRowArgs(ctx context.Context, tx *sql.Tx, insertSQL string, insertArgs []any, selectSQL string, selectArgs []any) (int64, error) {
	if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRowContext(ctx, selectSQL, selectArgs...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// assetFilePath follows the sprite path convention the renderer consumes:
// <layerPath>/<animationName>/<variantName>.png
func assetFilePath(layerPath, animation, variant string) string {
	return strings.TrimSuffix(layerPath, "/") + "/" + animation + "/" + variant + ".png"
}

func displayName(name string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(name))
	words := strings.Fields(cleaned)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
