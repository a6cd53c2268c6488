package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// statements is the fixed set of parameterized lookups the resolver runs.
// Each is parsed once right after the store becomes current and re-executed
// with fresh positional binds.
type statements struct {
	listCategories  *sql.Stmt
	listTypes       *sql.Stmt
	listComponents  *sql.Stmt
	listVariants    *sql.Stmt
	listAnimations  *sql.Stmt
	listBodyTypes   *sql.Stmt
	inventory       *sql.Stmt
	componentLayers *sql.Stmt
	resolveAssets   *sql.Stmt
	credits         *sql.Stmt
}

func (c *Client) prepare(ctx context.Context) error {
	c.stmts = &statements{}

	defs := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&c.stmts.listCategories, `
			SELECT id, name, display_name, description
			FROM categories
			ORDER BY display_name, name`},
		{&c.stmts.listTypes, `
			SELECT id, category_id, name, display_name
			FROM component_types
			WHERE category_id = ?
			ORDER BY display_name, name`},
		{&c.stmts.listComponents, `
			SELECT id, type_id, name, display_name, source_file, match_body_color
			FROM components
			WHERE type_id = ?
			ORDER BY display_name, name`},
		{&c.stmts.listVariants, `
			SELECT v.id, v.name, v.display_name
			FROM variants v
			JOIN component_variants cv ON cv.variant_id = v.id
			WHERE cv.component_id = ?
			ORDER BY v.name`},
		{&c.stmts.listAnimations, `
			SELECT a.id, a.name, a.display_name, a.frame_count
			FROM animations a
			JOIN component_animations ca ON ca.animation_id = a.id
			WHERE ca.component_id = ?
			ORDER BY a.name`},
		{&c.stmts.listBodyTypes, `
			SELECT id, name, display_name
			FROM body_types
			ORDER BY name`},
		{&c.stmts.inventory, `
			SELECT c.id, c.name, c.display_name, t.id, t.name, cat.name
			FROM components c
			JOIN component_types t ON c.type_id = t.id
			JOIN categories cat ON t.category_id = cat.id
			ORDER BY cat.name, t.name, c.name`},
		{&c.stmts.componentLayers, `
			SELECT l.layer_number, l.z_position, l.custom_animation, lp.path
			FROM layers l
			JOIN layer_paths lp ON lp.layer_id = l.id
			WHERE l.component_id = ? AND lp.body_type_id = ?
			ORDER BY l.z_position ASC, l.layer_number ASC`},
		{&c.stmts.resolveAssets, `
			SELECT af.file_path, l.z_position, l.layer_number
			FROM asset_files af
			JOIN layer_paths lp ON af.layer_path_id = lp.id
			JOIN layers l ON lp.layer_id = l.id
			WHERE l.component_id = ?
			  AND af.variant_id = ?
			  AND af.animation_id = ?
			  AND lp.body_type_id = ?
			ORDER BY l.z_position ASC, l.layer_number ASC`},
		{&c.stmts.credits, `
			SELECT cr.id, cr.notes, cr.urls
			FROM credits cr
			WHERE cr.component_id = ?
			ORDER BY cr.id`},
	}

	for _, def := range defs {
		stmt, err := c.db.PrepareContext(ctx, def.query)
		if err != nil {
			c.stmts.close()
			c.stmts = nil
			return fmt.Errorf("preparing statement: %w", err)
		}
		*def.dst = stmt
	}

	return nil
}

func (s *statements) all() []*sql.Stmt {
	return []*sql.Stmt{
		s.listCategories,
		s.listTypes,
		s.listComponents,
		s.listVariants,
		s.listAnimations,
		s.listBodyTypes,
		s.inventory,
		s.componentLayers,
		s.resolveAssets,
		s.credits,
	}
}

func (s *statements) close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	for _, stmt := range s.all() {
		if stmt == nil {
			continue
		}
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var errClosed = errors.New("store is closed")

func (c *Client) queries() (*statements, error) {
	if c.stmts == nil {
		return nil, errClosed
	}
	return c.stmts, nil
}
