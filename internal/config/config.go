package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type ProjectConfig struct {
	Project  string          `yaml:"project"`
	Version  int             `yaml:"version"`
	Database DatabaseConfig  `yaml:"database"`
	Sprites  SpritesConfig   `yaml:"sprites"`
	Composer ComposerConfig  `yaml:"composer"`
	Taxonomy []CategoryGroup `yaml:"taxonomy"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type SpritesConfig struct {
	Root        string         `yaml:"root"`
	FrameWidth  int            `yaml:"frame_width"`
	FrameHeight int            `yaml:"frame_height"`
	Directions  map[string]int `yaml:"directions"`
}

type ComposerConfig struct {
	EssentialTypes      []string `yaml:"essential_types"`
	OptionalProbability *float64 `yaml:"optional_probability"`
}

type CategoryGroup struct {
	Name        string   `yaml:"name"`
	DisplayName string   `yaml:"display_name"`
	Types       []string `yaml:"types"`
}

// Defaults applied when the corresponding config sections are omitted.
// The direction rows follow the universal LPC sheet layout.
var (
	DefaultDirections = map[string]int{
		"north": 1,
		"west":  2,
		"south": 3,
		"east":  4,
	}
	DefaultEssentialTypes      = []string{"body", "head", "feet"}
	DefaultOptionalProbability = 0.5
	DefaultFrameSize           = 64
)

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if len(cfg.Sprites.Directions) == 0 {
		cfg.Sprites.Directions = DefaultDirections
	}
	if cfg.Sprites.FrameWidth == 0 {
		cfg.Sprites.FrameWidth = DefaultFrameSize
	}
	if cfg.Sprites.FrameHeight == 0 {
		cfg.Sprites.FrameHeight = DefaultFrameSize
	}
	if len(cfg.Composer.EssentialTypes) == 0 {
		cfg.Composer.EssentialTypes = DefaultEssentialTypes
	}
	if cfg.Composer.OptionalProbability == nil {
		p := DefaultOptionalProbability
		cfg.Composer.OptionalProbability = &p
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}

	for name, row := range cfg.Sprites.Directions {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("direction with empty name")
		}
		if row < 1 {
			return fmt.Errorf("direction %s must map to a row index >= 1", name)
		}
	}
	if cfg.Sprites.FrameWidth < 1 || cfg.Sprites.FrameHeight < 1 {
		return fmt.Errorf("frame dimensions must be positive")
	}

	if p := *cfg.Composer.OptionalProbability; p < 0 || p > 1 {
		return fmt.Errorf("optional_probability must be between 0 and 1")
	}

	seenTypes := make(map[string]string)
	seenGroups := make(map[string]struct{})
	for i, group := range cfg.Taxonomy {
		if strings.TrimSpace(group.Name) == "" {
			return fmt.Errorf("taxonomy group %d name is required", i)
		}
		key := strings.ToLower(group.Name)
		if _, exists := seenGroups[key]; exists {
			return fmt.Errorf("duplicate taxonomy group: %s", group.Name)
		}
		seenGroups[key] = struct{}{}
		for _, typeName := range group.Types {
			typeKey := strings.ToLower(strings.TrimSpace(typeName))
			if typeKey == "" {
				return fmt.Errorf("taxonomy group %s has an empty type name", group.Name)
			}
			if other, exists := seenTypes[typeKey]; exists {
				return fmt.Errorf("type %s appears in both %s and %s", typeName, other, group.Name)
			}
			seenTypes[typeKey] = group.Name
		}
	}

	return nil
}

// CategoryFor returns the taxonomy group that owns the given component
// type. Types not covered by the taxonomy form their own category.
func (c *ProjectConfig) CategoryFor(typeName string) string {
	key := strings.ToLower(strings.TrimSpace(typeName))
	for _, group := range c.Taxonomy {
		for _, t := range group.Types {
			if strings.ToLower(t) == key {
				return group.Name
			}
		}
	}
	return typeName
}
