// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asyrjasalo/augent/pkg/cliutil"
	"github.com/asyrjasalo/augent/pkg/operations"
	"github.com/asyrjasalo/augent/pkg/progress"
	"github.com/asyrjasalo/augent/pkg/watchmode"
)

var (
	installFrozen bool
	installWatch  bool
)

var installCmd = &cobra.Command{
	Use:   "install [source...]",
	Short: "Install one or more bundles into the workspace",
	Long: `install adds each source to augent.yaml (if not already declared),
resolves the full dependency graph, merges every bundle's contributions
per output path, and writes the result for every targeted platform.
` + cliutil.QuickStartHelp(`  augent install github:example/bundle
  augent install ./local-bundle --for claude,cursor
  augent install --frozen`),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installFrozen, "frozen", false, "fail if the computed lockfile would differ from the one on disk")
	installCmd.Flags().BoolVar(&installWatch, "watch", false, "re-install automatically whenever a local (Dir) bundle source changes")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	opts := operations.InstallOptions{For: forPlatforms, Frozen: installFrozen}

	result, err := runInstallWithProgress(cmd.Context(), e, args, opts)
	if err != nil {
		return err
	}
	renderInstallResult(result)

	if !installWatch {
		return nil
	}
	return watchAndReinstall(cmd.Context(), e, opts)
}

// runInstallWithProgress wraps operations.Install with a Bubble Tea
// progress display. operations.Install itself never imports
// pkg/progress and reports no per-step events, so the steps shown here
// are coarse (resolve+write, then done) rather than per-file; a
// machine-readable format or --quiet has no terminal reader for a TUI,
// so those paths call Install directly.
func runInstallWithProgress(ctx context.Context, e *operations.Env, sources []string, opts operations.InstallOptions) (*operations.InstallResult, error) {
	if quiet || outputFormat != "default" {
		return operations.Install(ctx, e, sources, opts)
	}

	r := progress.NewReporter()
	var result *operations.InstallResult
	var installErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer r.Close()
		r.Report("resolving sources and building install plan", nil)
		result, installErr = operations.Install(ctx, e, sources, opts)
		if installErr != nil {
			r.Report("install", installErr)
			return
		}
		r.Report("install complete", nil)
	}()
	if err := progress.Run(r); err != nil {
		<-done
		return nil, err
	}
	<-done
	return result, installErr
}

func renderInstallResult(result *operations.InstallResult) {
	switch outputFormat {
	case "json":
		cliutil.WriteJSON(os.Stdout, result, verbose)
	case "llm":
		cliutil.WriteLLM(os.Stdout, result)
	default:
		if quiet {
			return
		}
		fmt.Printf("installed for: %v\n", result.PlatformsTargeted)
		for _, f := range result.FilesWritten {
			fmt.Println("  wrote", f)
		}
		for _, f := range result.PreservedEdits {
			fmt.Println("  preserved (locally modified)", f)
		}
		for _, w := range result.Warnings {
			fmt.Println("warning:", w)
		}
	}
}

// watchAndReinstall re-runs install whenever one of the workspace's Dir
// sources changes. It refuses (exit code 2) if any bundle in the
// lockfile, dependencies included, is Git, since a remote bundle has no
// local tree for fsnotify to watch.
func watchAndReinstall(ctx context.Context, e *operations.Env, opts operations.InstallOptions) error {
	bundles, err := operations.List(e, false)
	if err != nil {
		return err
	}

	var paths []string
	for _, b := range bundles {
		if b.SourceType == "git" {
			return newUsageError("--watch refused: %q is a Git source and has no local tree to watch", b.Name)
		}
		paths = append(paths, b.SourcePath)
	}
	if len(paths) == 0 {
		return watchmode.ErrNoLocalSources
	}

	fmt.Println("watching for changes, ctrl-c to stop")
	return watchmode.Watch(ctx, paths, watchmode.Options{}, func(ctx context.Context) error {
		result, err := operations.Install(ctx, e, nil, opts)
		if err != nil {
			return err
		}
		renderInstallResult(result)
		return nil
	})
}
