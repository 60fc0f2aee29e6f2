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

var showCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a bundle's source and the files it contributed",
	Long: `show prints one installed bundle's lockfile entry and every
output file it owns in the index. Run with no name to pick
interactively from installed bundles.
` + cliutil.QuickStartHelp(`  augent show bundle
  augent show`),
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	if name == "" {
		candidates, err := operations.ShowCandidates(e)
		if err != nil {
			return err
		}
		name, err = selector.Choose("Show which bundle?", candidates)
		if err != nil {
			if errors.Is(err, selector.ErrNoBundles) {
				fmt.Println("nothing installed")
				return nil
			}
			return err
		}
	}

	b, err := operations.Show(e, name)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		return cliutil.WriteJSON(os.Stdout, b, verbose)
	case "llm":
		return cliutil.WriteLLM(os.Stdout, b)
	default:
		fmt.Println("name:  ", b.Name)
		fmt.Println("source:", b.SourceType)
		if b.SourceType == "dir" {
			fmt.Println("path:  ", b.SourcePath)
		} else {
			fmt.Println("url:   ", b.SourceURL)
			fmt.Println("ref:   ", b.Ref)
			fmt.Println("sha:   ", b.SHA)
		}
		fmt.Printf("files (%d):\n", b.FileCount)
		for _, f := range b.Files {
			fmt.Println("  ", f)
		}
	}
	return nil
}
