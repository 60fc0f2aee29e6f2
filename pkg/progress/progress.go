// Package progress implements progress reporting for the install
// command: a small Bubble Tea program that prints one line per reported
// step and exits once the caller closes its update channel.
package progress

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	stepStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Step is one unit of work reported to the Reporter, e.g. "fetching
// example/bundle@main" or "writing .claude/rules/debug.md".
type Step struct {
	Label string
	Err   error
}

// doneMsg signals the update channel has closed: all steps reported.
type doneMsg struct{}

func stepCmd(steps <-chan Step) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-steps
		if !ok {
			return doneMsg{}
		}
		return s
	}
}

type model struct {
	steps   <-chan Step
	history []Step
	failed  bool
}

func (m model) Init() tea.Cmd {
	return stepCmd(m.steps)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case Step:
		m.history = append(m.history, msg)
		if msg.Err != nil {
			m.failed = true
		}
		return m, stepCmd(m.steps)
	case doneMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	var out string
	for _, s := range m.history {
		if s.Err != nil {
			out += errStyle.Render(fmt.Sprintf("✗ %s: %v", s.Label, s.Err)) + "\n"
		} else {
			out += doneStyle.Render("✓ "+s.Label) + "\n"
		}
	}
	if !m.failed && len(m.history) > 0 {
		out += stepStyle.Render(fmt.Sprintf("%d step(s) complete", len(m.history)))
	}
	return out
}

// Reporter is the write side of a progress channel; a caller reports
// each completed step through it without knowing whether a TUI is
// attached. operations.Install and operations.Uninstall do not use it;
// the install command reports coarse steps around operations.Install.
type Reporter struct {
	steps chan Step
}

// NewReporter creates a Reporter. Run must be called (typically in a
// goroutine from the caller's perspective is unnecessary: Run blocks
// until Close, so callers run the operation in a goroutine and Run on
// the main goroutine, or skip the TUI entirely and just range over
// Steps()).
func NewReporter() *Reporter {
	return &Reporter{steps: make(chan Step, 16)}
}

// Report sends one completed step.
func (r *Reporter) Report(label string, err error) {
	r.steps <- Step{Label: label, Err: err}
}

// Close signals no further steps will be reported.
func (r *Reporter) Close() {
	close(r.steps)
}

// Steps exposes the raw channel for non-interactive callers (e.g. tests,
// or --format=json output) that want each step without rendering a TUI.
func (r *Reporter) Steps() <-chan Step {
	return r.steps
}

// Run drives a Bubble Tea program that renders steps from r as they
// arrive, returning once r is closed and every step has been drained.
func Run(r *Reporter) error {
	p := tea.NewProgram(model{steps: r.steps})
	_, err := p.Run()
	return err
}
