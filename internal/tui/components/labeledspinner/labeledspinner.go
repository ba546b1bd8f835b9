// Package labeledspinner renders a spinner with a title, subtitle and help line.
package labeledspinner

import (
	"strings"

	"github.com/alkime/voiceover/internal/tui/style"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model displays a spinner next to a title, with an optional subtitle and
// help line below it. The dashboard shows it while a narration is being
// uploaded and generated.
type Model struct {
	Spinner  spinner.Model
	Title    string
	Subtitle string
	Help     string
}

// New creates a labeled spinner.
func New(s spinner.Spinner, title, subtitle, help string) Model {
	sp := spinner.New()
	sp.Spinner = s
	sp.Style = style.Progress

	return Model{
		Spinner:  sp,
		Title:    title,
		Subtitle: subtitle,
		Help:     help,
	}
}

// Init starts the spinner.
func (ls Model) Init() tea.Cmd {
	return ls.Spinner.Tick
}

// Update advances the spinner on its own ticks and ignores everything else.
func (ls Model) Update(teaMsg tea.Msg) (Model, tea.Cmd) {
	tickMsg, ok := teaMsg.(spinner.TickMsg)
	if !ok {
		return ls, nil
	}

	var cmd tea.Cmd
	ls.Spinner, cmd = ls.Spinner.Update(tickMsg)

	return ls, cmd
}

// WithLabels returns a copy showing title and subtitle.
func (ls Model) WithLabels(title, subtitle string) Model {
	ls.Title = title
	ls.Subtitle = subtitle

	return ls
}

// View renders the spinner block. Empty subtitle and help lines are left out.
func (ls Model) View() string {
	var sb strings.Builder

	sb.WriteString(ls.Inline())

	if ls.Subtitle != "" {
		sb.WriteString("\n")
		sb.WriteString(style.Subtitle.Render(ls.Subtitle))
	}

	if ls.Help != "" {
		sb.WriteString("\n\n")
		sb.WriteString(style.Help.Render(ls.Help))
	}

	return sb.String()
}

// Inline renders the spinner and title on a single line.
func (ls Model) Inline() string {
	return ls.Spinner.View() + " " + style.Title.Render(ls.Title)
}
