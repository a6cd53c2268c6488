// Package validate checks an ingested sprite store for definitions that
// cannot render: components without variants, animations, or layers, and
// resolved asset paths with no file on disk.
package validate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"spritedb/internal/config"
	"spritedb/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeNoVariants   = "component_no_variants"
	codeNoAnimations = "component_no_animations"
	codeNoLayers     = "component_no_layers"
	codeNoCredits    = "component_no_credits"
	codeAssetMissing = "asset_missing"
)

type Issue struct {
	Severity  Severity
	Code      string
	Message   string
	Component string
	FilePath  string
}

type Report struct {
	Issues []Issue
}

func (r *Report) Errors() []Issue {
	return r.bySeverity(SeverityError)
}

func (r *Report) Warnings() []Issue {
	return r.bySeverity(SeverityWarn)
}

func (r *Report) bySeverity(sev Severity) []Issue {
	var matched []Issue
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			matched = append(matched, issue)
		}
	}
	return matched
}

func Run(ctx context.Context, cfg *config.ProjectConfig, db store.Store) (*Report, error) {
	if db == nil {
		return nil, fmt.Errorf("store is required")
	}

	inventory, err := db.ComponentInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}

	bodyTypes, err := db.ListBodyTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list body types: %w", err)
	}

	issues := make([]Issue, 0)
	for _, component := range inventory {
		variants, err := db.ListVariants(ctx, component.ID)
		if err != nil {
			return nil, fmt.Errorf("list variants for %s: %w", component.Name, err)
		}
		if len(variants) == 0 {
			issues = append(issues, Issue{
				Severity:  SeverityWarn,
				Code:      codeNoVariants,
				Message:   "component has no variants and cannot be composed",
				Component: component.Name,
			})
		}

		animations, err := db.ListAnimations(ctx, component.ID)
		if err != nil {
			return nil, fmt.Errorf("list animations for %s: %w", component.Name, err)
		}
		if len(animations) == 0 {
			issues = append(issues, Issue{
				Severity:  SeverityWarn,
				Code:      codeNoAnimations,
				Message:   "component has no animations",
				Component: component.Name,
			})
		}

		layers := 0
		for _, bodyType := range bodyTypes {
			refs, err := db.ComponentLayers(ctx, component.ID, bodyType.ID)
			if err != nil {
				return nil, fmt.Errorf("list layers for %s: %w", component.Name, err)
			}
			layers += len(refs)
		}
		if layers == 0 {
			issues = append(issues, Issue{
				Severity:  SeverityError,
				Code:      codeNoLayers,
				Message:   "component has no layer paths for any body type",
				Component: component.Name,
			})
		}

		credits, err := db.GetCredits(ctx, component.ID)
		if err != nil {
			return nil, fmt.Errorf("list credits for %s: %w", component.Name, err)
		}
		if len(credits) == 0 {
			issues = append(issues, Issue{
				Severity:  SeverityWarn,
				Code:      codeNoCredits,
				Message:   "component has no attribution credits",
				Component: component.Name,
			})
		}

		if cfg != nil && cfg.Sprites.Root != "" {
			missing, err := missingAssets(ctx, cfg.Sprites.Root, db, component, variants, animations, bodyTypes)
			if err != nil {
				return nil, err
			}
			issues = append(issues, missing...)
		}
	}

	return &Report{Issues: issues}, nil
}

func missingAssets(ctx context.Context, root string, db store.Store, component store.ComponentSummary, variants []store.Variant, animations []store.Animation, bodyTypes []store.BodyType) ([]Issue, error) {
	var issues []Issue
	for _, bodyType := range bodyTypes {
		for _, animation := range animations {
			for _, variant := range variants {
				refs, err := db.ResolveAssetFiles(ctx, component.ID, variant.ID, animation.ID, bodyType.ID)
				if err != nil {
					return nil, fmt.Errorf("resolve assets for %s: %w", component.Name, err)
				}
				for _, ref := range refs {
					if _, err := os.Stat(filepath.Join(root, ref.FilePath)); err != nil {
						issues = append(issues, Issue{
							Severity:  SeverityWarn,
							Code:      codeAssetMissing,
							Message:   fmt.Sprintf("asset file not found under sprite root (%s/%s/%s)", bodyType.Name, animation.Name, variant.Name),
							Component: component.Name,
							FilePath:  ref.FilePath,
						})
					}
				}
			}
		}
	}
	return issues, nil
}
