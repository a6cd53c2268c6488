package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spritedb/internal/compose"
)

func composeCmd() *cobra.Command {
	var seed int64
	var bodyType string
	var animation string
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose a random character from the ingested components",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seedPtr *int64
			if cmd.Flags().Changed("seed") {
				seedPtr = &seed
			}
			return runCompose(compose.Options{Seed: seedPtr, BodyType: bodyType, Animation: animation})
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for reproducible output")
	cmd.Flags().StringVar(&bodyType, "body-type", "", "Body type name (random when omitted)")
	cmd.Flags().StringVar(&animation, "animation", "", "Animation state (idle when omitted)")
	return cmd
}

func runCompose(opts compose.Options) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	character, err := compose.New(db, cfg).Compose(ctx, opts)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(character, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding character: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
