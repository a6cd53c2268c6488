package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"spritedb/internal/store"
)

func (c *Client) ListCategories(ctx context.Context) ([]store.Category, error) {
	stmts, err := c.queries()
	if err != nil {
		return nil, err
	}

	rows, err := stmts.listCategories.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	categories := []store.Category{}
	for rows.Next() {
		var cat store.Category
		var description sql.NullString
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.DisplayName, &description); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		if description.Valid {
			cat.Description = &description.String
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return categories, nil
}

func (c *Client) ListComponentTypes(ctx context.Context, categoryID int64) ([]store.ComponentType, error) {
	stmts, err := c.queries()
	if err != nil {
		return nil, err
	}

	rows, err := stmts.listTypes.QueryContext(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing component types: %w", err)
	}
	defer rows.Close()

	types := []store.ComponentType{}
	for rows.Next() {
		var ct store.ComponentType
		if err := rows.Scan(&ct.ID, &ct.CategoryID, &ct.Name, &ct.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning component type: %w", err)
		}
		types = append(types, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating component types: %w", err)
	}

	return types, nil
}

func (c *Client) ListComponents(ctx context.Context, typeID int64) ([]store.Component, error) {
	stmts, err := c.queries()
	if err != nil {
		return nil, err
	}

	rows, err := stmts.listComponents.QueryContext(ctx, typeID)
	if err != nil {
		return nil, fmt.Errorf("listing components: %w", err)
	}
	defer rows.Close()

	components := []store.Component{}
	for rows.Next() {
		var comp store.Component
		var matchBodyColor int
		if err := rows.Scan(&comp.ID, &comp.TypeID, &comp.Name, &comp.DisplayName, &comp.SourceFile, &matchBodyColor); err != nil {
			return nil, fmt.Errorf("scanning component: %w", err)
		}
		comp.MatchBodyColor = matchBodyColor != 0
		components = append(components, comp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating components: %w", err)
	}

	return components, nil
}

func (c *Client) ListVariants(ctx context.Context, componentID int64) ([]store.Variant, error) {
	stmts, err := c.queries()
	if err != nil {
		return nil, err
	}

	rows, err := stmts.listVariants.QueryContext(ctx, componentID)
	if err != nil {
		return nil, fmt.Errorf("listing variants: %w", err)
	}
	defer rows.Close()

	variants := []store.Variant{}
	for rows.Next() {
		var v store.Variant
		if err := rows.Scan(&v.ID, &v.Name, &v.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning variant: %w", err)
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating variants: %w", err)
	}

	return variants, nil
}

func (c *Client) ListAnimations(ctx context.Context, componentID int64) ([]store.Animation, error) {
	stmts, err := c.queries()
	if err != nil {
		return nil, err
	}

	rows, err := stmts.listAnimations.QueryContext(ctx, componentID)
	if err != nil {
		return nil, fmt.Errorf("listing animations: %w", err)
	}
	defer rows.Close()

	animations := []store.Animation{}
	for rows.Next() {
		var a store.Animation
		if err := rows.Scan(&a.ID, &a.Name, &a.DisplayName, &a.FrameCount); err != nil {
			return nil, fmt.Errorf("scanning animation: %w", err)
		}
		animations = append(animations, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating animations: %w", err)
	}

	return animations, nil
}

func (c *Client) ListBodyTypes(ctx context.Context) ([]store.BodyType, error) {
	stmts, err := c.queries()
	if err != nil {
		return nil, err
	}

	rows, err := stmts.listBodyTypes.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing body types: %w", err)
	}
	defer rows.Close()

	bodyTypes := []store.BodyType{}
	for rows.Next() {
		var bt store.BodyType
		if err := rows.Scan(&bt.ID, &bt.Name, &bt.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning body type: %w", err)
		}
		bodyTypes = append(bodyTypes, bt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating body types: %w", err)
	}

	return bodyTypes, nil
}

func (c *Client) ComponentInventory(ctx context.Context) ([]store.ComponentSummary, error) {
	stmts, err := c.queries()
	if err != nil {
		return nil, err
	}

	rows, err := stmts.inventory.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing component inventory: %w", err)
	}
	defer rows.Close()

	summaries := []store.ComponentSummary{}
	for rows.Next() {
		var s store.ComponentSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.DisplayName, &s.TypeID, &s.TypeName, &s.CategoryName); err != nil {
			return nil, fmt.Errorf("scanning component summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating component inventory: %w", err)
	}

	return summaries, nil
}

func (c *Client) ComponentLayers(ctx context.Context, componentID, bodyTypeID int64) ([]store.LayerRef, error) {
	stmts, err := c.queries()
	if err != nil {
		return nil, err
	}

	rows, err := stmts.componentLayers.QueryContext(ctx, componentID, bodyTypeID)
	if err != nil {
		return nil, fmt.Errorf("listing component layers: %w", err)
	}
	defer rows.Close()

	layers := []store.LayerRef{}
	for rows.Next() {
		var l store.LayerRef
		var customAnimation sql.NullString
		if err := rows.Scan(&l.LayerNumber, &l.ZPosition, &customAnimation, &l.Path); err != nil {
			return nil, fmt.Errorf("scanning layer: %w", err)
		}
		if customAnimation.Valid {
			l.CustomAnimation = &customAnimation.String
		}
		layers = append(layers, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating layers: %w", err)
	}

	return layers, nil
}

func (c *Client) ResolveAssetFiles(ctx context.Context, componentID, variantID, animationID, bodyTypeID int64) ([]store.AssetRef, error) {
	stmts, err := c.queries()
	if err != nil {
		return nil, err
	}

	rows, err := stmts.resolveAssets.QueryContext(ctx, componentID, variantID, animationID, bodyTypeID)
	if err != nil {
		return nil, fmt.Errorf("resolving asset files: %w", err)
	}
	defer rows.Close()

	refs := []store.AssetRef{}
	for rows.Next() {
		var ref store.AssetRef
		if err := rows.Scan(&ref.FilePath, &ref.ZPosition, &ref.LayerNumber); err != nil {
			return nil, fmt.Errorf("scanning asset file: %w", err)
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating asset files: %w", err)
	}

	return refs, nil
}

func (c *Client) GetCredits(ctx context.Context, componentID int64) ([]store.Credit, error) {
	stmts, err := c.queries()
	if err != nil {
		return nil, err
	}

	rows, err := stmts.credits.QueryContext(ctx, componentID)
	if err != nil {
		return nil, fmt.Errorf("listing credits: %w", err)
	}
	defer rows.Close()

	type creditRow struct {
		id    int64
		notes string
		urls  []byte
	}
	var creditRows []creditRow
	for rows.Next() {
		var cr creditRow
		if err := rows.Scan(&cr.id, &cr.notes, &cr.urls); err != nil {
			return nil, fmt.Errorf("scanning credit: %w", err)
		}
		creditRows = append(creditRows, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating credits: %w", err)
	}

	credits := []store.Credit{}
	for _, cr := range creditRows {
		credit := store.Credit{Notes: cr.notes}
		if len(cr.urls) > 0 {
			if err := json.Unmarshal(cr.urls, &credit.URLs); err != nil {
				return nil, fmt.Errorf("unmarshaling credit urls: %w", err)
			}
		}
		if credit.URLs == nil {
			credit.URLs = []string{}
		}

		authors, err := c.creditNames(ctx, `
			SELECT a.name FROM credit_authors ca
			JOIN authors a ON ca.author_id = a.id
			WHERE ca.credit_id = ? ORDER BY a.name`, cr.id)
		if err != nil {
			return nil, fmt.Errorf("fetching credit authors: %w", err)
		}
		credit.Authors = authors

		licenses, err := c.creditNames(ctx, `
			SELECT l.name FROM credit_licenses cl
			JOIN licenses l ON cl.license_id = l.id
			WHERE cl.credit_id = ? ORDER BY l.name`, cr.id)
		if err != nil {
			return nil, fmt.Errorf("fetching credit licenses: %w", err)
		}
		credit.Licenses = licenses

		credits = append(credits, credit)
	}

	return credits, nil
}

func (c *Client) creditNames(ctx context.Context, query string, creditID int64) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query, creditID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
