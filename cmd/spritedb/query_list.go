package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"spritedb/internal/store"
)

// withStore loads the project config, opens the backend, runs fn, and
// guarantees the handle is released.
func withStore(fn func(ctx context.Context, db store.Store) error) error {
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

	return fn(ctx, db)
}

func parseID(arg, name string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s %q", name, arg)
	}
	return id, nil
}

func queryCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the top-level part categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, db store.Store) error {
				categories, err := db.ListCategories(ctx)
				if err != nil {
					return err
				}
				if len(categories) == 0 {
					fmt.Fprintln(os.Stdout, "No categories found.")
					return nil
				}
				for _, cat := range categories {
					fmt.Fprintf(os.Stdout, "%d\t%s\t%s\n", cat.ID, cat.Name, cat.DisplayName)
				}
				return nil
			})
		},
	}
}

func queryTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types <category-id>",
		Short: "List component types under a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := parseID(args[0], "category id")
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, db store.Store) error {
				types, err := db.ListComponentTypes(ctx, categoryID)
				if err != nil {
					return err
				}
				if len(types) == 0 {
					fmt.Fprintln(os.Stdout, "No component types found.")
					return nil
				}
				for _, ct := range types {
					fmt.Fprintf(os.Stdout, "%d\t%s\t%s\n", ct.ID, ct.Name, ct.DisplayName)
				}
				return nil
			})
		},
	}
}

func queryComponentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "components <type-id>",
		Short: "List components of a component type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typeID, err := parseID(args[0], "type id")
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, db store.Store) error {
				components, err := db.ListComponents(ctx, typeID)
				if err != nil {
					return err
				}
				if len(components) == 0 {
					fmt.Fprintln(os.Stdout, "No components found.")
					return nil
				}
				for _, comp := range components {
					fmt.Fprintf(os.Stdout, "%d\t%s\t%s\n", comp.ID, comp.Name, comp.DisplayName)
				}
				return nil
			})
		},
	}
}

func queryBodyTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bodytypes",
		Short: "List the known body types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, db store.Store) error {
				bodyTypes, err := db.ListBodyTypes(ctx)
				if err != nil {
					return err
				}
				if len(bodyTypes) == 0 {
					fmt.Fprintln(os.Stdout, "No body types found.")
					return nil
				}
				for _, bt := range bodyTypes {
					fmt.Fprintf(os.Stdout, "%d\t%s\t%s\n", bt.ID, bt.Name, bt.DisplayName)
				}
				return nil
			})
		},
	}
}

func queryInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "List every component with its type and category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, db store.Store) error {
				inventory, err := db.ComponentInventory(ctx)
				if err != nil {
					return err
				}
				if len(inventory) == 0 {
					fmt.Fprintln(os.Stdout, "No components found.")
					return nil
				}
				for _, item := range inventory {
					fmt.Fprintf(os.Stdout, "%d\t%s/%s/%s\n", item.ID, item.CategoryName, item.TypeName, item.Name)
				}
				return nil
			})
		},
	}
}
