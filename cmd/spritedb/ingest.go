package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spritedb/internal/ingest"
)

var (
	ingestFull   bool
	ingestVerify bool
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Synchronise the store with sheet-definition JSON files",
		Args:  cobra.ExactArgs(1),
		RunE:  runIngest,
	}
	cmd.Flags().BoolVar(&ingestFull, "full", false, "Re-ingest every definition file, ignoring stored hashes")
	cmd.Flags().BoolVar(&ingestVerify, "verify", false, "Check that derived asset paths exist under the sprite root")
	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	result, err := ingest.Run(ctx, cfg, db, args[0], ingest.Options{Full: ingestFull, Verify: ingestVerify})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Ingested %d component(s), removed %d stale, skipped %d unchanged file(s).\n",
		result.ComponentsUpserted, result.ComponentsRemoved, result.FilesSkipped)
	if ingestVerify {
		fmt.Fprintf(os.Stdout, "%d asset file(s) missing under the sprite root.\n", result.AssetsMissing)
		for _, path := range result.MissingFiles {
			fmt.Fprintf(os.Stdout, "  missing: %s\n", path)
		}
	}

	for _, item := range result.Errors {
		fmt.Fprintf(os.Stdout, "error: %v\n", item)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d definition file(s) failed to ingest", len(result.Errors))
	}

	return nil
}
