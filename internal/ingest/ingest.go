// Package ingest populates a sprite store from a directory of LPC
// sheet-definition JSON files.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"spritedb/internal/config"
	"spritedb/internal/parser"
	"spritedb/internal/store"
)

type Result struct {
	ComponentsUpserted int
	ComponentsRemoved  int
	FilesSkipped       int
	AssetsMissing      int
	MissingFiles       []string
	Errors             []error
}

type Options struct {
	// Full reprocesses every definition file even when its content hash
	// matches the stored one.
	Full bool
	// Verify checks that every derived asset path exists as a PNG under
	// the configured sprite root.
	Verify bool
}

// Frame counts for the universal LPC animation rows. Definitions list
// animation names only; the counts are a property of the shared layout.
var defaultFrameCounts = map[string]int{
	"walk":      9,
	"thrust":    8,
	"shoot":     13,
	"cast":      7,
	"slash":     6,
	"spellcast": 7,
	"hurt":      6,
	"idle":      1,
}

func Run(ctx context.Context, cfg *config.ProjectConfig, db store.Store, dir string, options Options) (*Result, error) {
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	var existingHashes map[string]string
	if !options.Full {
		var err error
		existingHashes, err = db.SourceHashes(ctx)
		if err != nil {
			return nil, fmt.Errorf("get source hashes: %w", err)
		}
	}

	files, err := walkDefinitionFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("walking definition files: %w", err)
	}

	result := &Result{}
	for _, path := range files {
		hash, err := computeHash(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("hashing %s: %w", path, err))
			continue
		}
		if !options.Full {
			if existing, ok := existingHashes[path]; ok && existing == hash {
				result.FilesSkipped++
				continue
			}
		}

		def, err := parser.ParseFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}

		input := componentInput(cfg, def, hash)
		if _, err := db.UpsertComponent(ctx, input); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("upserting %s: %w", path, err))
			continue
		}
		result.ComponentsUpserted++

		if options.Verify && cfg.Sprites.Root != "" {
			verifyAssets(cfg.Sprites.Root, input, result)
		}
	}

	removed, err := db.RemoveStaleComponents(ctx, files)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("removing stale components: %w", err))
	} else {
		result.ComponentsRemoved = int(removed)
	}

	return result, nil
}

func componentInput(cfg *config.ProjectConfig, def *parser.Definition, hash string) store.ComponentInput {
	animations := def.Animations
	if len(animations) == 0 {
		animations = defaultAnimationNames()
	}
	animationInputs := make([]store.AnimationInput, 0, len(animations))
	for _, name := range animations {
		animationInputs = append(animationInputs, store.AnimationInput{
			Name:       name,
			FrameCount: FrameCount(name),
		})
	}

	layers := make([]store.LayerInput, 0, len(def.Layers))
	for _, layer := range def.Layers {
		layers = append(layers, store.LayerInput{
			Number:          layer.Number,
			ZPosition:       layer.ZPos,
			CustomAnimation: layer.CustomAnimation,
			Paths:           layer.Paths,
		})
	}

	credits := make([]store.CreditInput, 0, len(def.Credits))
	for _, credit := range def.Credits {
		credits = append(credits, store.CreditInput{
			Notes:    credit.Notes,
			Authors:  credit.Authors,
			Licenses: credit.Licenses,
			URLs:     credit.URLs,
		})
	}

	return store.ComponentInput{
		Name:           def.Name,
		Category:       cfg.CategoryFor(def.TypeName),
		TypeName:       def.TypeName,
		SourceFile:     def.SourceFile,
		SourceHash:     hash,
		RawDefinition:  def.Raw,
		MatchBodyColor: def.MatchBodyColor,
		Variants:       def.Variants,
		Animations:     animationInputs,
		Tags:           def.Tags,
		Layers:         layers,
		Credits:        credits,
	}
}

// verifyAssets stats every derived sheet path under the sprite root. A
// missing file is recorded, never fatal.
func verifyAssets(root string, input store.ComponentInput, result *Result) {
	for _, layer := range input.Layers {
		bodyTypes := make([]string, 0, len(layer.Paths))
		for bodyType := range layer.Paths {
			bodyTypes = append(bodyTypes, bodyType)
		}
		sort.Strings(bodyTypes)

		for _, bodyType := range bodyTypes {
			base := strings.TrimSuffix(layer.Paths[bodyType], "/")
			for _, animation := range input.Animations {
				for _, variant := range input.Variants {
					rel := base + "/" + animation.Name + "/" + variant + ".png"
					if _, err := os.Stat(filepath.Join(root, rel)); err != nil {
						result.AssetsMissing++
						result.MissingFiles = append(result.MissingFiles, rel)
					}
				}
			}
		}
	}
}

// FrameCount returns the universal-layout frame count for an animation
// name. Unknown animations hold a single frame.
func FrameCount(name string) int {
	if count, ok := defaultFrameCounts[strings.ToLower(name)]; ok {
		return count
	}
	return 1
}

func defaultAnimationNames() []string {
	names := make([]string, 0, len(defaultFrameCounts))
	for name := range defaultFrameCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func walkDefinitionFiles(root string) ([]string, error) {
	root = filepath.Clean(root)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func computeHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
