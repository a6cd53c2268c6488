package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"spritedb/internal/validate"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run consistency checks against the sprite store",
		RunE:  runValidate,
	}
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	report, err := validate.Run(ctx, cfg, db)
	if err != nil {
		return err
	}

	errs := report.Errors()
	warns := report.Warnings()
	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(os.Stdout, "Store is consistent, no issues found.")
		return nil
	}

	printIssues(os.Stdout, "error", errs)
	printIssues(os.Stdout, "warning", warns)
	fmt.Fprintf(os.Stdout, "%d error(s), %d warning(s)\n", len(errs), len(warns))

	if len(errs) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out io.Writer, label string, issues []validate.Issue) {
	for _, issue := range issues {
		where := issue.Component
		if issue.FilePath != "" {
			where += " " + issue.FilePath
		}
		fmt.Fprintf(out, "%s [%s] %s: %s\n", label, issue.Code, where, issue.Message)
	}
}
