// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package cmd implements the CLI commands for augent.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/asyrjasalo/augent/pkg/cache"
	"github.com/asyrjasalo/augent/pkg/cliutil"
	"github.com/asyrjasalo/augent/pkg/operations"
)

// usageError marks a fatal CLI usage problem (as opposed to an ordinary
// operational failure) that exits with code 2 instead of 1, e.g.
// `install --watch` against a workspace with a Git source.
type usageError struct{ error }

func (usageError) ExitCode() int { return 2 }

func newUsageError(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

var (
	// appVersion is set by main.go
	appVersion string

	// Global flags
	verbose       bool
	quiet         bool
	workspaceRoot string
	forPlatforms  []string
	outputFormat  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "augent",
	Short: "Reproducible AI-assistant resource manager",
	Long: `augent installs, transforms, and tracks bundles of AI-assistant
resources (rules, commands, skills, sub-agents, MCP server configs)
into the layout each supported tool expects.
` + cliutil.QuickStartHelp(`  # Install a bundle and track it in augent.yaml
  augent install github:example/bundle

  # See what's installed, then remove it
  augent list
  augent uninstall bundle`),
	Version:           appVersion,
	Run:               runRoot,
	PersistentPreRunE: validateGlobalFlags,
}

func validateGlobalFlags(cmd *cobra.Command, args []string) error {
	return cliutil.ValidateFormat(outputFormat, cliutil.CoreFormats)
}

func runRoot(cmd *cobra.Command, args []string) {
	if outputFormat == "llm" {
		generateLLMDocs(cmd)
		return
	}
	cmd.Help()
}

// newEnv wires an operations.Env rooted at workspaceRoot, backed by a
// cache.Cache at the default (or AUGENT_CACHE_DIR-overridden) root.
func newEnv() (*operations.Env, error) {
	root, err := cache.DefaultRoot()
	if err != nil {
		return nil, err
	}
	c := cache.New(root, cache.NewFetcher())
	return operations.NewEnv(workspaceRoot, c)
}

func generateLLMDocs(cmd *cobra.Command) {
	fmt.Println("# augent CLI Tool Specification")
	fmt.Println("\nThis document defines the capabilities and interface of the augent CLI for AI Agents.")
	fmt.Println("Hierarchy: Top-level commands (##) -> Subcommands (###)")

	fmt.Println("\n## Global Flags")
	fmt.Println("- `-v, --verbose`: Enable verbose logging (use for debugging)")
	fmt.Println("- `-q, --quiet`: Suppress output (errors only)")
	fmt.Println("- `--for <ids>`: Target specific platform ids instead of auto-detecting")
	fmt.Println("- `--format <name>`: Output format (default, json, llm)")

	fmt.Println("\n## Available Commands")
	printCommandRecursive(cmd.Root(), 2)
}

func printCommandRecursive(cmd *cobra.Command, level int) {
	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.Name() == "help" {
			continue
		}

		header := strings.Repeat("#", level)

		fmt.Printf("\n%s `%s`\n", header, c.Name())
		fmt.Printf("- **Path**: `%s`\n", c.CommandPath())
		fmt.Printf("- **Purpose**: %s\n", c.Short)
		fmt.Printf("- **Usage**: `%s`\n", c.UseLine())

		hasLocalFlags := false
		var flagLines []string
		c.LocalFlags().VisitAll(func(f *pflag.Flag) {
			if f.Hidden {
				return
			}
			hasLocalFlags = true
			var typeStr string
			if f.Value.Type() == "bool" {
				typeStr = ""
			} else {
				typeStr = fmt.Sprintf(" <%s>", f.Value.Type())
			}
			flagLines = append(flagLines, fmt.Sprintf("  - `--%s%s`: %s", f.Name, typeStr, f.Usage))
		})

		if hasLocalFlags {
			fmt.Println("- **Flags**:")
			for _, line := range flagLines {
				fmt.Println(line)
			}
		}

		printCommandRecursive(c, level+1)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(version string) {
	appVersion = version
	rootCmd.Version = version

	rootCmd.SetUsageTemplate(usageTemplate)
	setCommandGroups(rootCmd)
	applyUsageTemplateRecursive(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := 1
		var ec interface{ ExitCode() int }
		if errors.As(err, &ec) {
			code = ec.ExitCode()
		}
		os.Exit(code)
	}
}

func setCommandGroups(cmd *cobra.Command) {
	coreGroup := &cobra.Group{ID: "core", Title: cliutil.ColorYellowBold + "Bundle Operations" + cliutil.ColorReset}
	toolGroup := &cobra.Group{ID: "tool", Title: cliutil.ColorYellowBold + "Additional Tools" + cliutil.ColorReset}

	cmd.AddGroup(coreGroup, toolGroup)

	for _, c := range cmd.Commands() {
		if c.Name() == "help" || c.Name() == "completion" || c.Name() == "version" {
			continue
		}

		switch c.Name() {
		case "install", "uninstall", "list", "show":
			c.GroupID = coreGroup.ID
		default:
			c.GroupID = toolGroup.ID
		}
	}
}

func applyUsageTemplateRecursive(cmd *cobra.Command) {
	cmd.SetUsageTemplate(usageTemplate)
	// Cobra does not propagate SilenceUsage/SilenceErrors to child commands.
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	for _, c := range cmd.Commands() {
		applyUsageTemplateRecursive(c)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (errors only)")
	rootCmd.PersistentFlags().StringVar(&workspaceRoot, "workspace", ".", "workspace root directory")
	rootCmd.PersistentFlags().StringSliceVar(&forPlatforms, "for", nil, "target platform id(s), overriding auto-detection")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "default", "output format: default, json, llm")

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)

	rootCmd.SetUsageTemplate(usageTemplate)
}

const usageTemplate = `{{if .Runnable}}` + cliutil.ColorGreenBold + `Usage:` + cliutil.ColorReset + `
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}` + cliutil.ColorGreenBold + `Usage:` + cliutil.ColorReset + `
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

` + cliutil.ColorGreenBold + `Examples:` + cliutil.ColorReset + `
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

Available Commands:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

` + cliutil.ColorMagentaBold + `Additional Commands:` + cliutil.ColorReset + `{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

` + cliutil.ColorGreenBold + `Flags:` + cliutil.ColorReset + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

` + cliutil.ColorGreenBold + `Global Flags:` + cliutil.ColorReset + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
