package store

import (
	"context"
)

// Store is the query and population surface over a sprite asset database.
// List operations returning zero rows are a normal outcome, never an error.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	UpsertComponent(ctx context.Context, in ComponentInput) (int64, error)
	RemoveStaleComponents(ctx context.Context, currentSourceFiles []string) (int64, error)
	SourceHashes(ctx context.Context) (map[string]string, error)

	ListCategories(ctx context.Context) ([]Category, error)
	ListComponentTypes(ctx context.Context, categoryID int64) ([]ComponentType, error)
	ListComponents(ctx context.Context, typeID int64) ([]Component, error)
	ListVariants(ctx context.Context, componentID int64) ([]Variant, error)
	ListAnimations(ctx context.Context, componentID int64) ([]Animation, error)
	ListBodyTypes(ctx context.Context) ([]BodyType, error)
	ComponentInventory(ctx context.Context) ([]ComponentSummary, error)
	ComponentLayers(ctx context.Context, componentID, bodyTypeID int64) ([]LayerRef, error)
	ResolveAssetFiles(ctx context.Context, componentID, variantID, animationID, bodyTypeID int64) ([]AssetRef, error)
	GetCredits(ctx context.Context, componentID int64) ([]Credit, error)

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
