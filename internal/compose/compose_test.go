package compose

import (
	"context"
	"reflect"
	"testing"

	"spritedb/internal/config"
	"spritedb/internal/store"
	"spritedb/internal/store/sqlite"
)

func testConfig() *config.ProjectConfig {
	p := 0.5
	return &config.ProjectConfig{
		Composer: config.ComposerConfig{
			EssentialTypes:      []string{"body", "head", "feet"},
			OptionalProbability: &p,
		},
	}
}

func seededStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()

	client, err := sqlite.New(ctx, "sqlite://:memory:", testConfig())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { client.Close(ctx) })

	walk := store.AnimationInput{Name: "walk", FrameCount: 9}
	slash := store.AnimationInput{Name: "slash", FrameCount: 6}

	inputs := []store.ComponentInput{
		{
			Name: "humanlike", Category: "body", TypeName: "body",
			Variants:   []string{"light", "dark", "tanned"},
			Animations: []store.AnimationInput{walk, slash},
			Layers:     []store.LayerInput{{Number: 1, ZPosition: 10, Paths: map[string]string{"female": "body/humanlike/female", "male": "body/humanlike/male"}}},
		},
		{
			Name: "round", Category: "head", TypeName: "head",
			Variants:   []string{"light", "dark"},
			Animations: []store.AnimationInput{walk, slash},
			Layers:     []store.LayerInput{{Number: 1, ZPosition: 100, Paths: map[string]string{"female": "head/round/female", "male": "head/round/male"}}},
		},
		{
			Name: "boots", Category: "feet", TypeName: "feet",
			Variants:   []string{"brown", "black"},
			Animations: []store.AnimationInput{walk},
			Layers:     []store.LayerInput{{Number: 1, ZPosition: 15, Paths: map[string]string{"female": "feet/boots/female", "male": "feet/boots/male"}}},
		},
		{
			Name: "blouse", Category: "torso", TypeName: "clothes",
			Variants:   []string{"red", "blue"},
			Animations: []store.AnimationInput{walk},
			Layers:     []store.LayerInput{{Number: 1, ZPosition: 35, Paths: map[string]string{"female": "torso/clothes/blouse/female"}}},
		},
		{
			Name: "longsword", Category: "weapon", TypeName: "sword",
			Variants:   []string{"steel"},
			Animations: []store.AnimationInput{slash},
			Layers:     []store.LayerInput{{Number: 1, ZPosition: 140, Paths: map[string]string{"female": "weapon/sword/longsword/female", "male": "weapon/sword/longsword/male"}}},
		},
	}
	for _, in := range inputs {
		if _, err := client.UpsertComponent(ctx, in); err != nil {
			t.Fatalf("upserting %s: %v", in.Name, err)
		}
	}

	return client
}

func TestComposeIsDeterministicForSeed(t *testing.T) {
	ctx := context.Background()
	composer := New(seededStore(t), testConfig())

	seed := int64(42)
	first, err := composer.Compose(ctx, Options{Seed: &seed, BodyType: "female"})
	if err != nil {
		t.Fatalf("first compose: %v", err)
	}
	second, err := composer.Compose(ctx, Options{Seed: &seed, BodyType: "female"})
	if err != nil {
		t.Fatalf("second compose: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different characters:\n%+v\n%+v", first, second)
	}
}

func TestComposeSeedsDiverge(t *testing.T) {
	ctx := context.Background()
	composer := New(seededStore(t), testConfig())

	diverged := false
	for trial := int64(0); trial < 20 && !diverged; trial++ {
		seedA := int64(42) + trial*1000
		seedB := int64(7) + trial*1000
		a, err := composer.Compose(ctx, Options{Seed: &seedA, BodyType: "female"})
		if err != nil {
			t.Fatalf("compose with seed %d: %v", seedA, err)
		}
		b, err := composer.Compose(ctx, Options{Seed: &seedB, BodyType: "female"})
		if err != nil {
			t.Fatalf("compose with seed %d: %v", seedB, err)
		}
		if !reflect.DeepEqual(a, b) {
			diverged = true
		}
	}
	if !diverged {
		t.Fatal("20 seed pairs all produced identical characters")
	}
}

func TestComposeFillsEssentialSlots(t *testing.T) {
	ctx := context.Background()
	composer := New(seededStore(t), testConfig())

	seed := int64(1)
	character, err := composer.Compose(ctx, Options{Seed: &seed, BodyType: "female", Animation: "walk"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	for _, typeName := range []string{"body", "head", "feet"} {
		slot, ok := character.Slots[typeName]
		if !ok {
			t.Fatalf("essential slot %s not filled: %+v", typeName, character)
		}
		if len(slot.Files) == 0 {
			t.Fatalf("slot %s has no resolved files", typeName)
		}
		for _, f := range slot.Files {
			if f.FilePath == "" {
				t.Fatalf("slot %s has empty file path", typeName)
			}
		}
	}
	if len(character.Incomplete) != 0 {
		t.Fatalf("unexpected incomplete slots: %v", character.Incomplete)
	}

	body := character.Slots["body"]
	want := "body/humanlike/female/walk/" + body.Variant + ".png"
	if body.Files[0].FilePath != want {
		t.Fatalf("body path = %s, want %s", body.Files[0].FilePath, want)
	}
}

func TestComposeMarksMissingEssential(t *testing.T) {
	ctx := context.Background()

	p := 0.0
	cfg := testConfig()
	cfg.Composer.EssentialTypes = []string{"body", "tail"}
	cfg.Composer.OptionalProbability = &p
	composer := New(seededStore(t), cfg)

	seed := int64(3)
	character, err := composer.Compose(ctx, Options{Seed: &seed, BodyType: "female"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	if _, ok := character.Slots["tail"]; ok {
		t.Fatal("slot filled for type with no components")
	}
	if len(character.Incomplete) != 1 || character.Incomplete[0] != "tail" {
		t.Fatalf("incomplete = %v, want [tail]", character.Incomplete)
	}
	if _, ok := character.Slots["body"]; !ok {
		t.Fatal("body slot should still be filled")
	}
}

func TestComposeJointAnimationsIncludeImplicitIdle(t *testing.T) {
	ctx := context.Background()

	p := 0.0
	cfg := testConfig()
	cfg.Composer.OptionalProbability = &p
	composer := New(seededStore(t), cfg)

	seed := int64(5)
	character, err := composer.Compose(ctx, Options{Seed: &seed, BodyType: "female"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	// body and head support walk+slash, feet only walk; the joint set is
	// their intersection plus the implicit idle.
	want := []string{"idle", "walk"}
	if !reflect.DeepEqual(character.Animations, want) {
		t.Fatalf("animations = %v, want %v", character.Animations, want)
	}
}

func TestComposeRejectsUnknownBodyType(t *testing.T) {
	ctx := context.Background()
	composer := New(seededStore(t), testConfig())

	seed := int64(9)
	if _, err := composer.Compose(ctx, Options{Seed: &seed, BodyType: "reptile"}); err == nil {
		t.Fatal("expected error for unknown body type")
	}
}

func TestComposeDefaultsToIdleAnimation(t *testing.T) {
	ctx := context.Background()
	composer := New(seededStore(t), testConfig())

	seed := int64(11)
	character, err := composer.Compose(ctx, Options{Seed: &seed, BodyType: "male"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if character.Animation != "idle" {
		t.Fatalf("animation = %s, want idle", character.Animation)
	}
	if character.BodyType != "male" {
		t.Fatalf("body type = %s, want male", character.BodyType)
	}
}

func TestComposeOptionalProbabilityBounds(t *testing.T) {
	ctx := context.Background()

	always := 1.0
	cfg := testConfig()
	cfg.Composer.OptionalProbability = &always
	composer := New(seededStore(t), cfg)

	seed := int64(13)
	character, err := composer.Compose(ctx, Options{Seed: &seed, BodyType: "female"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	// p=1 must include every optional type that can resolve for the body.
	if _, ok := character.Slots["clothes"]; !ok {
		t.Fatalf("clothes slot absent at p=1: %+v", character.Slots)
	}
	if _, ok := character.Slots["sword"]; !ok {
		t.Fatalf("sword slot absent at p=1: %+v", character.Slots)
	}

	never := 0.0
	cfg.Composer.OptionalProbability = &never
	composer = New(seededStore(t), cfg)
	character, err = composer.Compose(ctx, Options{Seed: &seed, BodyType: "female"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	for typeName := range character.Slots {
		if typeName != "body" && typeName != "head" && typeName != "feet" {
			t.Fatalf("optional slot %s filled at p=0", typeName)
		}
	}
}
