package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"spritedb/internal/compose"
	"spritedb/internal/store"
)

type ListCategoriesInput struct{}

type ListComponentTypesInput struct {
	CategoryID int64 `json:"category_id" jsonschema:"id of the category to list types under"`
}

type ListComponentsInput struct {
	TypeID int64 `json:"type_id" jsonschema:"id of the component type"`
}

type ListVariantsInput struct {
	ComponentID int64 `json:"component_id" jsonschema:"id of the component"`
}

type ListAnimationsInput struct {
	ComponentID int64 `json:"component_id" jsonschema:"id of the component"`
}

type ListBodyTypesInput struct{}

type ResolveAssetFilesInput struct {
	ComponentID int64 `json:"component_id" jsonschema:"id of the component"`
	VariantID   int64 `json:"variant_id" jsonschema:"id of the variant"`
	AnimationID int64 `json:"animation_id" jsonschema:"id of the animation"`
	BodyTypeID  int64 `json:"body_type_id" jsonschema:"id of the body type"`
}

type ComposeCharacterInput struct {
	Seed      *int64 `json:"seed,omitempty" jsonschema:"random seed for reproducible output"`
	BodyType  string `json:"body_type,omitempty" jsonschema:"body type name, random when omitted"`
	Animation string `json:"animation,omitempty" jsonschema:"animation state, idle when omitted"`
}

type CategoryOutput struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Description *string `json:"description,omitempty"`
}

type ComponentTypeOutput struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type ComponentOutput struct {
	ID             int64  `json:"id"`
	TypeID         int64  `json:"type_id"`
	Name           string `json:"name"`
	DisplayName    string `json:"display_name"`
	SourceFile     string `json:"source_file,omitempty"`
	MatchBodyColor bool   `json:"match_body_color,omitempty"`
}

type VariantOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type AnimationOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	FrameCount  int    `json:"frame_count"`
}

type BodyTypeOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type AssetFileOutput struct {
	FilePath    string `json:"file_path"`
	ZPosition   int    `json:"z_position"`
	LayerNumber int    `json:"layer_number"`
}

type ListCategoriesOutput struct {
	Categories []CategoryOutput `json:"categories"`
}

type ListComponentTypesOutput struct {
	Types []ComponentTypeOutput `json:"types"`
}

type ListComponentsOutput struct {
	Components []ComponentOutput `json:"components"`
}

type ListVariantsOutput struct {
	Variants []VariantOutput `json:"variants"`
}

type ListAnimationsOutput struct {
	Animations []AnimationOutput `json:"animations"`
}

type ListBodyTypesOutput struct {
	BodyTypes []BodyTypeOutput `json:"body_types"`
}

type ResolveAssetFilesOutput struct {
	Files []AssetFileOutput `json:"files"`
}

type ComposeCharacterOutput struct {
	Character compose.Character `json:"character"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_categories",
		Description: "List the top-level part categories",
	}, s.handleListCategories)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_component_types",
		Description: "List component types under a category",
	}, s.handleListComponentTypes)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_components",
		Description: "List components of a component type",
	}, s.handleListComponents)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_variants",
		Description: "List the color/material variants of a component",
	}, s.handleListVariants)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_animations",
		Description: "List the animations a component supports",
	}, s.handleListAnimations)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_body_types",
		Description: "List the known body types",
	}, s.handleListBodyTypes)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "resolve_asset_files",
		Description: "Resolve the draw-ordered sprite sheet files for a component/variant/animation/body type",
	}, s.handleResolveAssetFiles)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "compose_character",
		Description: "Compose a random character from the component hierarchy",
	}, s.handleComposeCharacter)
}

func (s *Server) handleListCategories(ctx context.Context, req *sdk.CallToolRequest, input ListCategoriesInput) (*sdk.CallToolResult, ListCategoriesOutput, error) {
	categories, err := s.db.ListCategories(ctx)
	if err != nil {
		return nil, ListCategoriesOutput{}, err
	}

	output := make([]CategoryOutput, 0, len(categories))
	for _, cat := range categories {
		output = append(output, CategoryOutput{
			ID:          cat.ID,
			Name:        cat.Name,
			DisplayName: cat.DisplayName,
			Description: cat.Description,
		})
	}
	return nil, ListCategoriesOutput{Categories: output}, nil
}

func (s *Server) handleListComponentTypes(ctx context.Context, req *sdk.CallToolRequest, input ListComponentTypesInput) (*sdk.CallToolResult, ListComponentTypesOutput, error) {
	if input.CategoryID == 0 {
		return nil, ListComponentTypesOutput{}, fmt.Errorf("category_id is required")
	}
	types, err := s.db.ListComponentTypes(ctx, input.CategoryID)
	if err != nil {
		return nil, ListComponentTypesOutput{}, err
	}

	output := make([]ComponentTypeOutput, 0, len(types))
	for _, ct := range types {
		output = append(output, ComponentTypeOutput{
			ID:          ct.ID,
			CategoryID:  ct.CategoryID,
			Name:        ct.Name,
			DisplayName: ct.DisplayName,
		})
	}
	return nil, ListComponentTypesOutput{Types: output}, nil
}

func (s *Server) handleListComponents(ctx context.Context, req *sdk.CallToolRequest, input ListComponentsInput) (*sdk.CallToolResult, ListComponentsOutput, error) {
	if input.TypeID == 0 {
		return nil, ListComponentsOutput{}, fmt.Errorf("type_id is required")
	}
	components, err := s.db.ListComponents(ctx, input.TypeID)
	if err != nil {
		return nil, ListComponentsOutput{}, err
	}

	output := make([]ComponentOutput, 0, len(components))
	for _, comp := range components {
		output = append(output, componentOutputFromStore(comp))
	}
	return nil, ListComponentsOutput{Components: output}, nil
}

func (s *Server) handleListVariants(ctx context.Context, req *sdk.CallToolRequest, input ListVariantsInput) (*sdk.CallToolResult, ListVariantsOutput, error) {
	if input.ComponentID == 0 {
		return nil, ListVariantsOutput{}, fmt.Errorf("component_id is required")
	}
	variants, err := s.db.ListVariants(ctx, input.ComponentID)
	if err != nil {
		return nil, ListVariantsOutput{}, err
	}

	output := make([]VariantOutput, 0, len(variants))
	for _, v := range variants {
		output = append(output, VariantOutput{ID: v.ID, Name: v.Name, DisplayName: v.DisplayName})
	}
	return nil, ListVariantsOutput{Variants: output}, nil
}

func (s *Server) handleListAnimations(ctx context.Context, req *sdk.CallToolRequest, input ListAnimationsInput) (*sdk.CallToolResult, ListAnimationsOutput, error) {
	if input.ComponentID == 0 {
		return nil, ListAnimationsOutput{}, fmt.Errorf("component_id is required")
	}
	animations, err := s.db.ListAnimations(ctx, input.ComponentID)
	if err != nil {
		return nil, ListAnimationsOutput{}, err
	}

	output := make([]AnimationOutput, 0, len(animations))
	for _, a := range animations {
		output = append(output, AnimationOutput{ID: a.ID, Name: a.Name, DisplayName: a.DisplayName, FrameCount: a.FrameCount})
	}
	return nil, ListAnimationsOutput{Animations: output}, nil
}

func (s *Server) handleListBodyTypes(ctx context.Context, req *sdk.CallToolRequest, input ListBodyTypesInput) (*sdk.CallToolResult, ListBodyTypesOutput, error) {
	bodyTypes, err := s.db.ListBodyTypes(ctx)
	if err != nil {
		return nil, ListBodyTypesOutput{}, err
	}

	output := make([]BodyTypeOutput, 0, len(bodyTypes))
	for _, bt := range bodyTypes {
		output = append(output, BodyTypeOutput{ID: bt.ID, Name: bt.Name, DisplayName: bt.DisplayName})
	}
	return nil, ListBodyTypesOutput{BodyTypes: output}, nil
}

func (s *Server) handleResolveAssetFiles(ctx context.Context, req *sdk.CallToolRequest, input ResolveAssetFilesInput) (*sdk.CallToolResult, ResolveAssetFilesOutput, error) {
	if input.ComponentID == 0 || input.VariantID == 0 || input.AnimationID == 0 || input.BodyTypeID == 0 {
		return nil, ResolveAssetFilesOutput{}, fmt.Errorf("component_id, variant_id, animation_id, and body_type_id are required")
	}
	refs, err := s.db.ResolveAssetFiles(ctx, input.ComponentID, input.VariantID, input.AnimationID, input.BodyTypeID)
	if err != nil {
		return nil, ResolveAssetFilesOutput{}, err
	}

	output := make([]AssetFileOutput, 0, len(refs))
	for _, ref := range refs {
		output = append(output, AssetFileOutput{
			FilePath:    ref.FilePath,
			ZPosition:   ref.ZPosition,
			LayerNumber: ref.LayerNumber,
		})
	}
	return nil, ResolveAssetFilesOutput{Files: output}, nil
}

func (s *Server) handleComposeCharacter(ctx context.Context, req *sdk.CallToolRequest, input ComposeCharacterInput) (*sdk.CallToolResult, ComposeCharacterOutput, error) {
	character, err := s.composer.Compose(ctx, compose.Options{
		Seed:      input.Seed,
		BodyType:  input.BodyType,
		Animation: input.Animation,
	})
	if err != nil {
		return nil, ComposeCharacterOutput{}, err
	}
	return nil, ComposeCharacterOutput{Character: *character}, nil
}

func componentOutputFromStore(comp store.Component) ComponentOutput {
	return ComponentOutput{
		ID:             comp.ID,
		TypeID:         comp.TypeID,
		Name:           comp.Name,
		DisplayName:    comp.DisplayName,
		SourceFile:     comp.SourceFile,
		MatchBodyColor: comp.MatchBodyColor,
	}
}
