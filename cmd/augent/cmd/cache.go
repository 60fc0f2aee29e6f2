// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asyrjasalo/augent/pkg/cache"
	"github.com/asyrjasalo/augent/pkg/cliutil"
)

var cacheRepoFilter string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the content-addressed bundle cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entries and their disk usage",
	Long: `stats lists every <repo>/<sha> entry in the cache, one per line,
with its size on disk.
` + cliutil.QuickStartHelp(`  augent cache stats
  augent cache stats --repo github.com-example-bundle`),
	RunE: runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cache entries",
	Long: `clear removes every cached entry, or only those for --repo if set.
It does not touch augent.yaml/augent.lock; the next install re-fetches
whatever is needed.
` + cliutil.QuickStartHelp(`  augent cache clear --repo github.com-example-bundle
  augent cache clear`),
	RunE: runCacheClear,
}

func init() {
	cacheStatsCmd.Flags().StringVar(&cacheRepoFilter, "repo", "", "restrict to entries for one repository key")
	cacheClearCmd.Flags().StringVar(&cacheRepoFilter, "repo", "", "restrict to entries for one repository key")
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func newCache() (*cache.Cache, error) {
	root, err := cache.DefaultRoot()
	if err != nil {
		return nil, err
	}
	return cache.New(root, cache.NewFetcher()), nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := newCache()
	if err != nil {
		return err
	}
	entries, err := c.Stats(cacheRepoFilter)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		return cliutil.WriteJSON(os.Stdout, entries, verbose)
	case "llm":
		return cliutil.WriteLLM(os.Stdout, entries)
	default:
		if len(entries) == 0 {
			fmt.Println("cache is empty")
			return nil
		}
		var total int64
		for _, e := range entries {
			fmt.Printf("%-48s %10d bytes\n", e.RepoKey+"/"+e.SHA, e.Size)
			total += e.Size
		}
		fmt.Printf("total: %d bytes\n", total)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := newCache()
	if err != nil {
		return err
	}
	if err := c.Clear(cacheRepoFilter); err != nil {
		return err
	}
	if !quiet {
		if cacheRepoFilter != "" {
			fmt.Println("cleared cache entries for", cacheRepoFilter)
		} else {
			fmt.Println("cleared cache")
		}
	}
	return nil
}
