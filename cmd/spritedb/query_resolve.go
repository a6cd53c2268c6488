package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spritedb/internal/store"
)

func queryResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <component-id> <variant-id> <animation-id> <body-type-id>",
		Short: "Resolve draw-ordered sprite sheet files for a combination",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := []string{"component id", "variant id", "animation id", "body type id"}
			ids := make([]int64, 4)
			for i, arg := range args {
				id, err := parseID(arg, names[i])
				if err != nil {
					return err
				}
				ids[i] = id
			}
			return withStore(func(ctx context.Context, db store.Store) error {
				refs, err := db.ResolveAssetFiles(ctx, ids[0], ids[1], ids[2], ids[3])
				if err != nil {
					return err
				}
				if len(refs) == 0 {
					fmt.Fprintln(os.Stdout, "No asset files found.")
					return nil
				}
				for _, ref := range refs {
					fmt.Fprintf(os.Stdout, "z=%d\tlayer=%d\t%s\n", ref.ZPosition, ref.LayerNumber, ref.FilePath)
				}
				return nil
			})
		},
	}
}
