// Package parser reads LPC sheet-definition JSON files into typed
// definitions. Layers arrive as dynamic "layer_N" keys holding a z position
// and one path per body type, so decoding goes through a raw key map rather
// than a fixed struct.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

type Definition struct {
	Name           string
	TypeName       string
	MatchBodyColor bool
	Variants       []string
	Animations     []string
	Tags           []string
	Layers         []Layer
	Credits        []Credit
	Raw            string
	SourceFile     string
}

type Layer struct {
	Number          int
	ZPos            int
	CustomAnimation string
	// Paths maps body type name to the layer's sprite directory.
	Paths map[string]string
}

type Credit struct {
	Notes    string   `json:"notes"`
	Authors  []string `json:"authors"`
	Licenses []string `json:"licenses"`
	URLs     []string `json:"urls"`
}

var (
	ErrInvalidJSON = errors.New("invalid JSON in sheet definition")
	ErrMissingName = errors.New("sheet definition missing required 'name' field")
	ErrMissingType = errors.New("sheet definition missing required 'type_name' field")
)

func ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	def, err := Parse(data)
	if err != nil {
		return nil, err
	}
	def.SourceFile = path
	return def, nil
}

func Parse(content []byte) (*Definition, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, ErrInvalidJSON
	}

	def := &Definition{Raw: string(content)}

	if err := decodeString(fields, "name", &def.Name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(def.Name) == "" {
		return nil, ErrMissingName
	}
	if err := decodeString(fields, "type_name", &def.TypeName); err != nil {
		return nil, err
	}
	if strings.TrimSpace(def.TypeName) == "" {
		return nil, ErrMissingType
	}

	if raw, ok := fields["match_body_color"]; ok {
		if err := json.Unmarshal(raw, &def.MatchBodyColor); err != nil {
			return nil, fmt.Errorf("decoding match_body_color: %w", err)
		}
	}
	if err := decodeStrings(fields, "variants", &def.Variants); err != nil {
		return nil, err
	}
	if err := decodeStrings(fields, "animations", &def.Animations); err != nil {
		return nil, err
	}
	if err := decodeStrings(fields, "tags", &def.Tags); err != nil {
		return nil, err
	}
	if raw, ok := fields["credits"]; ok {
		if err := json.Unmarshal(raw, &def.Credits); err != nil {
			return nil, fmt.Errorf("decoding credits: %w", err)
		}
	}

	for key, raw := range fields {
		if !strings.HasPrefix(key, "layer_") {
			continue
		}
		layer, err := parseLayer(key, raw)
		if err != nil {
			return nil, err
		}
		def.Layers = append(def.Layers, layer)
	}
	sort.Slice(def.Layers, func(i, j int) bool {
		return def.Layers[i].Number < def.Layers[j].Number
	})

	return def, nil
}

func parseLayer(key string, raw json.RawMessage) (Layer, error) {
	number, err := strconv.Atoi(strings.TrimPrefix(key, "layer_"))
	if err != nil || number < 1 {
		return Layer{}, fmt.Errorf("invalid layer key %q", key)
	}

	var entries map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Layer{}, fmt.Errorf("decoding %s: %w", key, err)
	}

	layer := Layer{Number: number, Paths: map[string]string{}}
	for field, value := range entries {
		switch field {
		case "zPos":
			z, ok := value.(float64)
			if !ok {
				return Layer{}, fmt.Errorf("%s: zPos must be a number", key)
			}
			layer.ZPos = int(z)
		case "custom_animation":
			s, ok := value.(string)
			if !ok {
				return Layer{}, fmt.Errorf("%s: custom_animation must be a string", key)
			}
			layer.CustomAnimation = s
		default:
			// Remaining string entries map a body type to its sprite path.
			s, ok := value.(string)
			if !ok {
				return Layer{}, fmt.Errorf("%s: path for body type %q must be a string", key, field)
			}
			layer.Paths[field] = s
		}
	}

	return layer, nil
}

func decodeString(fields map[string]json.RawMessage, key string, dst *string) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func decodeStrings(fields map[string]json.RawMessage, key string, dst *[]string) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}
