package main

import "github.com/spf13/cobra"

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the sprite store from the CLI",
	}
	cmd.AddCommand(queryCategoriesCmd())
	cmd.AddCommand(queryTypesCmd())
	cmd.AddCommand(queryComponentsCmd())
	cmd.AddCommand(queryVariantsCmd())
	cmd.AddCommand(queryAnimationsCmd())
	cmd.AddCommand(queryBodyTypesCmd())
	cmd.AddCommand(queryInventoryCmd())
	cmd.AddCommand(queryCreditsCmd())
	cmd.AddCommand(queryResolveCmd())
	cmd.AddCommand(querySQLCmd())
	return cmd
}
