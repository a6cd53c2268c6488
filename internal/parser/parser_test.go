package parser

import (
	"errors"
	"testing"
)

const blouseJSON = `{
	"name": "blouse",
	"type_name": "clothes",
	"match_body_color": false,
	"layer_1": {
		"zPos": 35,
		"female": "torso/clothes/blouse/female",
		"teen": "torso/clothes/blouse/teen"
	},
	"variants": ["red", "blue"],
	"animations": ["walk", "slash"],
	"tags": ["clothing"],
	"credits": [{
		"notes": "original art",
		"authors": ["artist"],
		"licenses": ["CC-BY-SA 3.0"],
		"urls": ["https://example.org"]
	}]
}`

func TestParse(t *testing.T) {
	def, err := Parse([]byte(blouseJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if def.Name != "blouse" {
		t.Errorf("Name = %q, want blouse", def.Name)
	}
	if def.TypeName != "clothes" {
		t.Errorf("TypeName = %q, want clothes", def.TypeName)
	}
	if def.MatchBodyColor {
		t.Error("MatchBodyColor should be false")
	}
	if len(def.Variants) != 2 || def.Variants[0] != "red" {
		t.Errorf("Variants = %v", def.Variants)
	}
	if len(def.Animations) != 2 {
		t.Errorf("Animations = %v", def.Animations)
	}
	if len(def.Tags) != 1 || def.Tags[0] != "clothing" {
		t.Errorf("Tags = %v", def.Tags)
	}
	if def.Raw == "" {
		t.Error("Raw should carry the source JSON")
	}

	if len(def.Layers) != 1 {
		t.Fatalf("Layers = %+v", def.Layers)
	}
	layer := def.Layers[0]
	if layer.Number != 1 || layer.ZPos != 35 {
		t.Errorf("layer = %+v", layer)
	}
	if layer.Paths["female"] != "torso/clothes/blouse/female" {
		t.Errorf("female path = %q", layer.Paths["female"])
	}
	if layer.Paths["teen"] != "torso/clothes/blouse/teen" {
		t.Errorf("teen path = %q", layer.Paths["teen"])
	}

	if len(def.Credits) != 1 || def.Credits[0].Notes != "original art" {
		t.Fatalf("Credits = %+v", def.Credits)
	}
	if len(def.Credits[0].URLs) != 1 {
		t.Errorf("credit URLs = %v", def.Credits[0].URLs)
	}
}

func TestParseSortsLayers(t *testing.T) {
	def, err := Parse([]byte(`{
		"name": "cape",
		"type_name": "cloak",
		"layer_2": {"zPos": 10, "female": "cloak/behind/female"},
		"layer_1": {"zPos": 120, "female": "cloak/front/female", "custom_animation": "idle"}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(def.Layers) != 2 {
		t.Fatalf("Layers = %+v", def.Layers)
	}
	if def.Layers[0].Number != 1 || def.Layers[1].Number != 2 {
		t.Fatalf("layers not sorted by number: %+v", def.Layers)
	}
	if def.Layers[0].CustomAnimation != "idle" {
		t.Errorf("custom animation = %q", def.Layers[0].CustomAnimation)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "not json", content: "name: blouse", wantErr: ErrInvalidJSON},
		{name: "missing name", content: `{"type_name": "clothes"}`, wantErr: ErrMissingName},
		{name: "empty name", content: `{"name": " ", "type_name": "clothes"}`, wantErr: ErrMissingName},
		{name: "missing type", content: `{"name": "blouse"}`, wantErr: ErrMissingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseRejectsMalformedLayers(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "non numeric layer key", content: `{"name": "x", "type_name": "y", "layer_a": {"zPos": 1}}`},
		{name: "zero layer number", content: `{"name": "x", "type_name": "y", "layer_0": {"zPos": 1}}`},
		{name: "string zPos", content: `{"name": "x", "type_name": "y", "layer_1": {"zPos": "ten"}}`},
		{name: "non string path", content: `{"name": "x", "type_name": "y", "layer_1": {"zPos": 1, "female": 3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.content)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
