// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asyrjasalo/augent/pkg/cliutil"
	"github.com/asyrjasalo/augent/pkg/operations"
	"github.com/asyrjasalo/augent/pkg/selector"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall [name]",
	Short: "Remove a bundle and any dependency it alone required",
	Long: `uninstall removes name from augent.yaml, drops every transitive
dependency no remaining bundle still needs, deletes the files their
removal orphans, and rewrites the lockfile and index. Run with no name
to pick interactively from installed bundles.
` + cliutil.QuickStartHelp(`  augent uninstall bundle
  augent uninstall`),
	Args: cobra.MaximumNArgs(1),
	RunE: runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	if name == "" {
		candidates, err := operations.List(e, false)
		if err != nil {
			return err
		}
		name, err = selector.Choose("Uninstall which bundle?", candidates)
		if err != nil {
			if errors.Is(err, selector.ErrNoBundles) {
				fmt.Println("nothing installed")
				return nil
			}
			return err
		}
	}

	result, err := operations.Uninstall(cmd.Context(), e, name)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		cliutil.WriteJSON(os.Stdout, result, verbose)
	case "llm":
		cliutil.WriteLLM(os.Stdout, result)
	default:
		if quiet {
			return nil
		}
		fmt.Printf("removed: %v\n", result.Removed)
		for _, f := range result.FilesDeleted {
			fmt.Println("  deleted", f)
		}
	}
	return nil
}
