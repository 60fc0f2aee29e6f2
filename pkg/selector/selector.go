// Package selector implements the interactive bundle selector: a
// terminal prompt used when a command that needs a bundle name (show,
// uninstall) is invoked without one.
package selector

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/asyrjasalo/augent/pkg/operations"
)

// ErrNoBundles is returned when there is nothing to select from.
var ErrNoBundles = errors.New("no bundles installed")

// ErrCancelled is returned when the user aborts the prompt.
var ErrCancelled = errors.New("selection cancelled")

// Choose prompts the user to pick one of candidates by name and returns
// the chosen name. candidates is typically the result of
// operations.ShowCandidates or operations.List.
func Choose(title string, candidates []operations.BundleSummary) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoBundles
	}
	if len(candidates) == 1 {
		return candidates[0].Name, nil
	}

	options := make([]huh.Option[string], 0, len(candidates))
	for _, c := range candidates {
		label := c.Name
		if c.SourceType == "git" && c.Ref != "" {
			label = fmt.Sprintf("%s (%s)", c.Name, c.Ref)
		}
		options = append(options, huh.NewOption(label, c.Name))
	}

	var chosen string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(&chosen),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return chosen, nil
}

// Confirm prompts a yes/no question, defaulting to no on a non-interactive
// terminal or cancellation.
func Confirm(title, description string) (bool, error) {
	var confirm bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&confirm),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return confirm, nil
}
