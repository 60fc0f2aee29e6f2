// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asyrjasalo/augent/pkg/cliutil"
	"github.com/asyrjasalo/augent/pkg/operations"
)

var listDetailed bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed bundles",
	Long: `list reads the lockfile and prints every installed bundle in
installation order.
` + cliutil.QuickStartHelp(`  augent list
  augent list --detailed`),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listDetailed, "detailed", false, "include every resource file (bundle-relative path) each bundle provides")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	bundles, err := operations.List(e, listDetailed)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		return cliutil.WriteJSON(os.Stdout, bundles, verbose)
	case "llm":
		return cliutil.WriteLLM(os.Stdout, bundles)
	default:
		if len(bundles) == 0 {
			fmt.Println("nothing installed")
			return nil
		}
		for _, b := range bundles {
			ref := b.Ref
			if b.SourceType == "git" && b.SHA != "" {
				ref = b.SHA[:12]
			}
			fmt.Printf("%-24s %-5s %-20s %d file(s)\n", b.Name, b.SourceType, ref, b.FileCount)
			if listDetailed {
				for _, f := range b.Files {
					fmt.Println("   ", f)
				}
			}
		}
	}
	return nil
}
