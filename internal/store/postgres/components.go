package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"spritedb/internal/store"
)

// UpsertComponent mirrors the sqlite backend: the component row and its
// children are replaced in a single transaction, while shared lookup rows
// (variants, animations, body types, tags, authors, licenses) are inserted
// on first use and reused afterwards.
func (c *Client) UpsertComponent(ctx context.Context, in store.ComponentInput) (int64, error) {
	if strings.TrimSpace(in.Name) == "" {
		return 0, fmt.Errorf("component name is required")
	}
	if strings.TrimSpace(in.TypeName) == "" {
		return 0, fmt.Errorf("component type is required")
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	category := in.Category
	if strings.TrimSpace(category) == "" {
		category = in.TypeName
	}
	categoryID, err := ensureRow(ctx, tx,
		`INSERT INTO categories (name, display_name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		[]any{category, displayName(category)},
		`SELECT id FROM categories WHERE name = $1`,
		[]any{category})
	if err != nil {
		return 0, fmt.Errorf("ensuring category: %w", err)
	}

	typeID, err := ensureRow(ctx, tx,
		`INSERT INTO component_types (category_id, name, display_name) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		[]any{categoryID, in.TypeName, displayName(in.TypeName)},
		`SELECT id FROM component_types WHERE name = $1 AND category_id = $2`,
		[]any{in.TypeName, categoryID})
	if err != nil {
		return 0, fmt.Errorf("ensuring component type: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM components WHERE name = $1 AND type_id = $2`, in.Name, typeID); err != nil {
		return 0, fmt.Errorf("removing previous component: %w", err)
	}

	display := in.DisplayName
	if display == "" {
		display = displayName(in.Name)
	}
	var componentID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO components (type_id, name, display_name, source_file, source_hash, raw_definition, match_body_color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		typeID, in.Name, display, in.SourceFile, in.SourceHash, in.RawDefinition, in.MatchBodyColor,
	).Scan(&componentID); err != nil {
		return 0, fmt.Errorf("inserting component: %w", err)
	}

	variantIDs := make(map[string]int64, len(in.Variants))
	for _, variant := range in.Variants {
		variantID, err := ensureRow(ctx, tx,
			`INSERT INTO variants (name, display_name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			[]any{variant, displayName(variant)},
			`SELECT id FROM variants WHERE name = $1`,
			[]any{variant})
		if err != nil {
			return 0, fmt.Errorf("ensuring variant %s: %w", variant, err)
		}
		variantIDs[variant] = variantID
		if _, err := tx.Exec(ctx,
			`INSERT INTO component_variants (component_id, variant_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
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
		animationID, err := ensureRow(ctx, tx,
			`INSERT INTO animations (name, display_name, frame_count) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			[]any{animation.Name, displayName(animation.Name), frameCount},
			`SELECT id FROM animations WHERE name = $1`,
			[]any{animation.Name})
		if err != nil {
			return 0, fmt.Errorf("ensuring animation %s: %w", animation.Name, err)
		}
		animationIDs[animation.Name] = animationID
		if _, err := tx.Exec(ctx,
			`INSERT INTO component_animations (component_id, animation_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			componentID, animationID); err != nil {
			return 0, fmt.Errorf("linking animation %s: %w", animation.Name, err)
		}
	}

	for _, layer := range in.Layers {
		var customAnimation any
		if layer.CustomAnimation != "" {
			customAnimation = layer.CustomAnimation
		}
		var layerID int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO layers (component_id, layer_number, z_position, custom_animation)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			componentID, layer.Number, layer.ZPosition, customAnimation,
		).Scan(&layerID); err != nil {
			return 0, fmt.Errorf("inserting layer %d: %w", layer.Number, err)
		}

		bodyTypes := make([]string, 0, len(layer.Paths))
		for bodyType := range layer.Paths {
			bodyTypes = append(bodyTypes, bodyType)
		}
		sort.Strings(bodyTypes)

		for _, bodyType := range bodyTypes {
			layerPath := layer.Paths[bodyType]
			bodyTypeID, err := ensureRow(ctx, tx,
				`INSERT INTO body_types (name, display_name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				[]any{bodyType, displayName(bodyType)},
				`SELECT id FROM body_types WHERE name = $1`,
				[]any{bodyType})
			if err != nil {
				return 0, fmt.Errorf("ensuring body type %s: %w", bodyType, err)
			}

			var layerPathID int64
			if err := tx.QueryRow(ctx, `
				INSERT INTO layer_paths (layer_id, body_type_id, path)
				VALUES ($1, $2, $3)
				RETURNING id`,
				layerID, bodyTypeID, layerPath,
			).Scan(&layerPathID); err != nil {
				return 0, fmt.Errorf("inserting layer path %s: %w", layerPath, err)
			}

			for _, animation := range in.Animations {
				for _, variant := range in.Variants {
					filePath := assetFilePath(layerPath, animation.Name, variant)
					if _, err := tx.Exec(ctx, `
						INSERT INTO asset_files (layer_path_id, animation_id, variant_id, file_path)
						VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
						layerPathID, animationIDs[animation.Name], variantIDs[variant], filePath); err != nil {
						return 0, fmt.Errorf("inserting asset file %s: %w", filePath, err)
					}
				}
			}
		}
	}

	for _, tag := range in.Tags {
		tagID, err := ensureRow(ctx, tx,
			`INSERT INTO tags (name) VALUES ($1) ON CONFLICT DO NOTHING`,
			[]any{tag},
			`SELECT id FROM tags WHERE name = $1`,
			[]any{tag})
		if err != nil {
			return 0, fmt.Errorf("ensuring tag %s: %w", tag, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO component_tags (component_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
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
		var creditID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO credits (component_id, notes, urls) VALUES ($1, $2, $3) RETURNING id`,
			componentID, credit.Notes, string(urlsJSON),
		).Scan(&creditID); err != nil {
			return 0, fmt.Errorf("inserting credit: %w", err)
		}

		for _, author := range credit.Authors {
			authorID, err := ensureRow(ctx, tx,
				`INSERT INTO authors (name) VALUES ($1) ON CONFLICT DO NOTHING`,
				[]any{author},
				`SELECT id FROM authors WHERE name = $1`,
				[]any{author})
			if err != nil {
				return 0, fmt.Errorf("ensuring author %s: %w", author, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO credit_authors (credit_id, author_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				creditID, authorID); err != nil {
				return 0, fmt.Errorf("linking author %s: %w", author, err)
			}
		}

		for _, license := range credit.Licenses {
			licenseID, err := ensureRow(ctx, tx,
				`INSERT INTO licenses (name) VALUES ($1) ON CONFLICT DO NOTHING`,
				[]any{license},
				`SELECT id FROM licenses WHERE name = $1`,
				[]any{license})
			if err != nil {
				return 0, fmt.Errorf("ensuring license %s: %w", license, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO credit_licenses (credit_id, license_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				creditID, licenseID); err != nil {
				return 0, fmt.Errorf("linking license %s: %w", license, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing component: %w", err)
	}

	return componentID, nil
}

func (c *Client) RemoveStaleComponents(ctx context.Context, currentSourceFiles []string) (int64, error) {
	if len(currentSourceFiles) == 0 {
		return 0, nil
	}

	tag, err := c.pool.Exec(ctx, `
		DELETE FROM components
		WHERE source_file <> ''
		  AND NOT (source_file = ANY($1))`, currentSourceFiles)
	if err != nil {
		return 0, fmt.Errorf("removing stale components: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (c *Client) SourceHashes(ctx context.Context) (map[string]string, error) {
	rows, err := c.pool.Query(ctx, `
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

func ensureRow(ctx context.Context, tx pgx.Tx, insertSQL string, insertArgs []any, selectSQL string, selectArgs []any) (int64, error) {
	if _, err := tx.Exec(ctx, insertSQL, insertArgs...); err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRow(ctx, selectSQL, selectArgs...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

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
