// Package compose assembles randomized characters from the component
// hierarchy. Sampling happens here over fetched candidate sets with a
// seedable source, so a fixed seed reproduces the same character.
package compose

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"spritedb/internal/config"
	"spritedb/internal/sheet"
	"spritedb/internal/store"
)

type Options struct {
	// Seed fixes the random source for reproducible output. Nil draws a
	// fresh seed from the process-wide source.
	Seed *int64
	// BodyType names the body shape to resolve layer paths against. Empty
	// picks one at random.
	BodyType string
	// Animation is the motion state paths are resolved for. Empty means
	// "idle", which is always available even when not stored.
	Animation string
}

// Slot is one filled part type on a composed character.
type Slot struct {
	TypeName    string           `json:"type_name"`
	ComponentID int64            `json:"component_id"`
	Component   string           `json:"component"`
	VariantID   int64            `json:"variant_id"`
	Variant     string           `json:"variant"`
	Files       []store.AssetRef `json:"files"`
	// Missing marks slots whose resolved paths have no file under the
	// sprite root. The renderer substitutes a placeholder for these.
	Missing bool `json:"missing,omitempty"`
}

type Character struct {
	BodyType   string          `json:"body_type"`
	Animation  string          `json:"animation"`
	Slots      map[string]Slot `json:"slots"`
	Animations []string        `json:"animations"`
	// Incomplete lists essential part types no component could fill.
	Incomplete []string `json:"incomplete,omitempty"`
}

type Composer struct {
	store          store.Store
	spriteRoot     string
	essentialTypes []string
	optionalProb   float64
}

func New(st store.Store, cfg *config.ProjectConfig) *Composer {
	essential := cfg.Composer.EssentialTypes
	if len(essential) == 0 {
		essential = config.DefaultEssentialTypes
	}
	prob := config.DefaultOptionalProbability
	if cfg.Composer.OptionalProbability != nil {
		prob = *cfg.Composer.OptionalProbability
	}
	return &Composer{
		store:          st,
		spriteRoot:     cfg.Sprites.Root,
		essentialTypes: essential,
		optionalProb:   prob,
	}
}

func (c *Composer) Compose(ctx context.Context, opts Options) (*Character, error) {
	seed := rand.Int63()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	bodyType, err := c.pickBodyType(ctx, rng, opts.BodyType)
	if err != nil {
		return nil, err
	}

	animation := strings.TrimSpace(opts.Animation)
	if animation == "" {
		animation = "idle"
	}

	inventory, err := c.store.ComponentInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching component inventory: %w", err)
	}

	byType := make(map[string][]store.ComponentSummary)
	for _, item := range inventory {
		byType[item.TypeName] = append(byType[item.TypeName], item)
	}

	character := &Character{
		BodyType:  bodyType.Name,
		Animation: animation,
		Slots:     map[string]Slot{},
	}

	for _, typeName := range c.essentialTypes {
		slot, ok, err := c.fillSlot(ctx, rng, typeName, byType[typeName], bodyType.ID, animation)
		if err != nil {
			return nil, err
		}
		if !ok {
			character.Incomplete = append(character.Incomplete, typeName)
			continue
		}
		character.Slots[typeName] = slot
	}

	for _, typeName := range c.optionalTypes(byType) {
		if _, filled := character.Slots[typeName]; filled {
			continue
		}
		if rng.Float64() >= c.optionalProb {
			continue
		}
		slot, ok, err := c.fillSlot(ctx, rng, typeName, byType[typeName], bodyType.ID, animation)
		if err != nil {
			return nil, err
		}
		if ok {
			character.Slots[typeName] = slot
		}
	}

	animations, err := c.jointAnimations(ctx, character)
	if err != nil {
		return nil, err
	}
	character.Animations = animations

	return character, nil
}

// fillSlot tries each component of the type in a shuffled order until one
// has at least a variant and a layer path for the body type. A type whose
// components all lack variants yields no slot, never an error.
func (c *Composer) fillSlot(ctx context.Context, rng *rand.Rand, typeName string, candidates []store.ComponentSummary, bodyTypeID int64, animation string) (Slot, bool, error) {
	if len(candidates) == 0 {
		return Slot{}, false, nil
	}

	for _, idx := range rng.Perm(len(candidates)) {
		candidate := candidates[idx]

		variants, err := c.store.ListVariants(ctx, candidate.ID)
		if err != nil {
			return Slot{}, false, fmt.Errorf("listing variants for %s: %w", candidate.Name, err)
		}
		if len(variants) == 0 {
			continue
		}
		variant := variants[rng.Intn(len(variants))]

		layers, err := c.store.ComponentLayers(ctx, candidate.ID, bodyTypeID)
		if err != nil {
			return Slot{}, false, fmt.Errorf("listing layers for %s: %w", candidate.Name, err)
		}
		if len(layers) == 0 {
			continue
		}

		slot := Slot{
			TypeName:    typeName,
			ComponentID: candidate.ID,
			Component:   candidate.Name,
			VariantID:   variant.ID,
			Variant:     variant.Name,
		}
		for _, layer := range layers {
			path := assetFilePath(layer.Path, animation, variant.Name)
			slot.Files = append(slot.Files, store.AssetRef{
				FilePath:    path,
				ZPosition:   layer.ZPosition,
				LayerNumber: layer.LayerNumber,
			})
			if c.spriteRoot != "" {
				if _, err := os.Stat(filepath.Join(c.spriteRoot, path)); err != nil {
					slot.Missing = true
				}
			}
		}
		sheet.SortLayers(slot.Files)

		return slot, true, nil
	}

	return Slot{}, false, nil
}

func (c *Composer) pickBodyType(ctx context.Context, rng *rand.Rand, name string) (store.BodyType, error) {
	bodyTypes, err := c.store.ListBodyTypes(ctx)
	if err != nil {
		return store.BodyType{}, fmt.Errorf("listing body types: %w", err)
	}
	if len(bodyTypes) == 0 {
		return store.BodyType{}, fmt.Errorf("store has no body types")
	}

	if strings.TrimSpace(name) == "" {
		return bodyTypes[rng.Intn(len(bodyTypes))], nil
	}
	for _, bt := range bodyTypes {
		if strings.EqualFold(bt.Name, name) {
			return bt, nil
		}
	}
	return store.BodyType{}, fmt.Errorf("unknown body type: %s", name)
}

// optionalTypes returns the inventory's part types outside the essential
// set, sorted so the inclusion rolls consume the rng in a stable order.
func (c *Composer) optionalTypes(byType map[string][]store.ComponentSummary) []string {
	essential := make(map[string]struct{}, len(c.essentialTypes))
	for _, t := range c.essentialTypes {
		essential[t] = struct{}{}
	}

	optional := make([]string, 0, len(byType))
	for typeName := range byType {
		if _, ok := essential[typeName]; ok {
			continue
		}
		optional = append(optional, typeName)
	}
	sort.Strings(optional)
	return optional
}

// jointAnimations intersects the animation sets of every filled slot's
// component. "idle" is always available even when no component stores it.
func (c *Composer) jointAnimations(ctx context.Context, character *Character) ([]string, error) {
	var counts map[string]int
	slots := 0
	for _, slot := range character.Slots {
		animations, err := c.store.ListAnimations(ctx, slot.ComponentID)
		if err != nil {
			return nil, fmt.Errorf("listing animations for %s: %w", slot.Component, err)
		}
		if counts == nil {
			counts = make(map[string]int)
		}
		seen := make(map[string]struct{}, len(animations))
		for _, a := range animations {
			if _, dup := seen[a.Name]; dup {
				continue
			}
			seen[a.Name] = struct{}{}
			counts[a.Name]++
		}
		slots++
	}

	joint := []string{"idle"}
	for name, n := range counts {
		if n == slots && name != "idle" {
			joint = append(joint, name)
		}
	}
	sort.Strings(joint)
	return joint, nil
}

func assetFilePath(layerPath, animation, variant string) string {
	return strings.TrimSuffix(layerPath, "/") + "/" + animation + "/" + variant + ".png"
}
