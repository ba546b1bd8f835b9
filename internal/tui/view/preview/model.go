// Package preview plays a project's audio inside the TUI.
package preview

import (
	"fmt"
	"strings"
	"time"

	"github.com/alkime/voiceover/internal/tui/components/waveform"
	"github.com/alkime/voiceover/internal/tui/msg"
	"github.com/alkime/voiceover/internal/tui/style"
	"github.com/alkime/voiceover/pkg/uictl"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// FinishedMsg is sent once playback reaches the end of the clip.
type FinishedMsg struct{}

// Controls connect the view to a running player.
type Controls struct {
	Title      string
	URL        string
	SampleRate int
	Progress   uictl.CappedDial[int64]
	Playing    uictl.Knob
	Levels     uictl.Levels[int16]
	Finished   <-chan struct{}
}

// Model shows playback progress and a level meter.
type Model struct {
	controls Controls
	keys     KeyMap
	spinner  spinner.Model
	bar      progress.Model
	wave     waveform.Model
	done     bool
}

// New creates a preview over controls.
func New(controls Controls, width int) Model {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = max(width-24, 10)

	return Model{
		controls: controls,
		keys:     DefaultKeyMap(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Points), spinner.WithStyle(style.Progress)),
		bar:      bar,
		wave:     waveform.New(controls.Levels, max(width-4, 10), 3),
	}
}

// Init starts the spinner, the meter and the end-of-clip watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wave.Init(), m.waitFinished())
}

func (m Model) waitFinished() tea.Cmd {
	if m.controls.Finished == nil {
		return nil
	}

	finished := m.controls.Finished

	return func() tea.Msg {
		<-finished
		return FinishedMsg{}
	}
}

// Update handles playback keys and redraw ticks.
func (m Model) Update(teaMsg tea.Msg) (Model, tea.Cmd) {
	switch teaMsg := teaMsg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(teaMsg, m.keys.Toggle):
			if !m.done {
				m.controls.Playing.Toggle()
			}

			return m, nil

		case key.Matches(teaMsg, m.keys.Close):
			return m, func() tea.Msg { return msg.ClosePreviewMsg{} }
		}

	case tea.WindowSizeMsg:
		m.bar.Width = max(teaMsg.Width-24, 10)
		m.wave = m.wave.SetWidth(max(teaMsg.Width-4, 10))

		return m, nil

	case FinishedMsg:
		m.done = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(teaMsg)

		return m, cmd

	case waveform.TickMsg:
		if m.done {
			return m, nil
		}

		var cmd tea.Cmd
		m.wave, cmd = m.wave.Update(teaMsg)

		return m, cmd
	}

	return m, nil
}

// View renders title, state, progress and the meter.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("Preview: " + m.controls.Title))
	sb.WriteString("\n")

	if m.controls.URL != "" {
		sb.WriteString(style.Muted.Render(m.controls.URL))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	switch {
	case m.done:
		sb.WriteString(style.Success.Render("Finished"))
	case m.controls.Playing.Read():
		sb.WriteString(m.spinner.View() + " Playing")
	default:
		sb.WriteString(style.Warning.Render("Paused"))
	}

	played, total := m.controls.Progress.Cap()

	sb.WriteString("\n")
	sb.WriteString(m.bar.ViewAs(fraction(played, total)))
	sb.WriteString(" ")
	sb.WriteString(formatPosition(played, total, m.controls.SampleRate))
	sb.WriteString("\n\n")
	sb.WriteString(m.wave.View())
	sb.WriteString("\n\n")
	sb.WriteString(style.KeyHint(m.keys.Toggle.Help().Key, m.keys.Toggle.Help().Desc))
	sb.WriteString("  ")
	sb.WriteString(style.KeyHint(m.keys.Close.Help().Key, m.keys.Close.Help().Desc))

	return style.Panel.Render(sb.String())
}

func fraction(num, den int64) float64 {
	if den <= 0 {
		return 0
	}

	return min(float64(num)/float64(den), 1)
}

// formatPosition renders frame counts as "m:ss / m:ss".
func formatPosition(played, total int64, sampleRate int) string {
	if sampleRate <= 0 {
		return fmt.Sprintf("%d / %d", played, total)
	}

	rate := int64(sampleRate)

	return clock(played/rate) + " / " + clock(total/rate)
}

func clock(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
