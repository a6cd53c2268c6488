package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"spritedb/internal/store"
)

func queryVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants <component-id>",
		Short: "List the colour/material variants of a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			componentID, err := parseID(args[0], "component id")
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, db store.Store) error {
				variants, err := db.ListVariants(ctx, componentID)
				if err != nil {
					return err
				}
				if len(variants) == 0 {
					fmt.Fprintln(os.Stdout, "No variants found.")
					return nil
				}
				for _, v := range variants {
					fmt.Fprintf(os.Stdout, "%d\t%s\t%s\n", v.ID, v.Name, v.DisplayName)
				}
				return nil
			})
		},
	}
}

func queryAnimationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "animations <component-id>",
		Short: "List the animations a component supports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			componentID, err := parseID(args[0], "component id")
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, db store.Store) error {
				animations, err := db.ListAnimations(ctx, componentID)
				if err != nil {
					return err
				}
				if len(animations) == 0 {
					fmt.Fprintln(os.Stdout, "No animations found.")
					return nil
				}
				for _, a := range animations {
					fmt.Fprintf(os.Stdout, "%d\t%s\t%d frames\n", a.ID, a.Name, a.FrameCount)
				}
				return nil
			})
		},
	}
}

func queryCreditsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "credits <component-id>",
		Short: "Show attribution credits for a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			componentID, err := parseID(args[0], "component id")
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, db store.Store) error {
				credits, err := db.GetCredits(ctx, componentID)
				if err != nil {
					return err
				}
				if len(credits) == 0 {
					fmt.Fprintln(os.Stdout, "No credits found.")
					return nil
				}
				for _, credit := range credits {
					fmt.Fprintf(os.Stdout, "Authors:  %s\n", strings.Join(credit.Authors, ", "))
					fmt.Fprintf(os.Stdout, "Licenses: %s\n", strings.Join(credit.Licenses, ", "))
					if len(credit.URLs) > 0 {
						fmt.Fprintf(os.Stdout, "URLs:     %s\n", strings.Join(credit.URLs, ", "))
					}
					if credit.Notes != "" {
						fmt.Fprintf(os.Stdout, "Notes:    %s\n", credit.Notes)
					}
					fmt.Fprintln(os.Stdout, "")
				}
				return nil
			})
		},
	}
}
