package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var projectName string
	var dsn string
	var spriteRoot string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new spritedb project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, dsn, spriteRoot)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&dsn, "dsn", "sqlite://sprites.sqlite", "Database DSN")
	cmd.Flags().StringVar(&spriteRoot, "sprite-root", "./spritesheets", "Directory holding the sprite sheet PNGs")
	return cmd
}

func runInit(projectName, dsn, spriteRoot string) error {
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("%s already exists", configFile)
	}

	contents := fmt.Sprintf(`project: %s
version: 1

database:
  dsn: %s

sprites:
  root: %s
  frame_width: 64
  frame_height: 64
  directions:
    north: 1
    west: 2
    south: 3
    east: 4

composer:
  essential_types:
    - body
    - head
    - feet
  optional_probability: 0.5

taxonomy:
  - name: torso
    display_name: Torso
    types: [clothes, jacket, armour]
  - name: weapon
    display_name: Weapon
    types: [sword, spear, bow]
`, projectName, dsn, spriteRoot)

	if err := os.WriteFile(configFile, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configFile, err)
	}
	return nil
}
