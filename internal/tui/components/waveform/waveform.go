// Package waveform draws a live amplitude meter for audio being played.
package waveform

import (
	"math"
	"strings"
	"time"

	"github.com/alkime/voiceover/internal/tui/style"
	"github.com/alkime/voiceover/pkg/uictl"
	tea "github.com/charmbracelet/bubbletea"
)

// bars holds one empty cell and eight fill heights.
var bars = []rune(" ▁▂▃▄▅▆▇█")

const (
	stepsPerRow = 8
	fullScale   = float64(math.MaxInt16)
	frameRate   = 50 * time.Millisecond
)

// TickMsg triggers a redraw.
type TickMsg struct{}

// Model renders the most recent samples from a Levels source as columns
// of bars, oldest on the left.
type Model struct {
	levels uictl.Levels[int16]
	width  int
	height int
}

// New creates a meter width columns wide and height rows tall.
func New(levels uictl.Levels[int16], width, height int) Model {
	return Model{
		levels: levels,
		width:  max(width, 1),
		height: max(height, 1),
	}
}

// SetWidth resizes the meter.
func (m Model) SetWidth(width int) Model {
	m.width = max(width, 1)
	return m
}

// Init starts the redraw ticker.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update keeps the redraw ticker running.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, m.tick()
	}

	return m, nil
}

// View renders the meter. Without samples it draws a flat baseline.
func (m Model) View() string {
	var samples []int16
	if m.levels != nil {
		samples = m.levels.Read()
	}

	if len(samples) == 0 {
		return m.baseline()
	}

	heights := m.columnHeights(samples)
	rows := make([]string, m.height)

	for row := range rows {
		// row 0 is the top of the meter
		floor := (m.height - 1 - row) * stepsPerRow

		var sb strings.Builder
		for _, h := range heights {
			fill := min(max(h-floor, 0), stepsPerRow)
			sb.WriteRune(bars[fill])
		}

		rows[row] = style.Progress.Render(sb.String())
	}

	return strings.Join(rows, "\n")
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(frameRate, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// columnHeights buckets samples into one peak per column and scales each
// peak to 0..height*8. Columns past the end of the samples stay empty.
func (m Model) columnHeights(samples []int16) []int {
	heights := make([]int, m.width)
	bucket := max(1, len(samples)/m.width)
	top := m.height * stepsPerRow

	for col := range heights {
		start := col * bucket
		if start >= len(samples) {
			break
		}

		end := min(start+bucket, len(samples))
		heights[col] = scale(peak(samples[start:end]), top)
	}

	return heights
}

func (m Model) baseline() string {
	blank := strings.Repeat(" ", m.width)
	rows := make([]string, m.height)

	for i := range rows {
		rows[i] = blank
	}

	rows[m.height-1] = strings.Repeat(string(bars[1]), m.width)

	return style.Muted.Render(strings.Join(rows, "\n"))
}

// peak returns the largest absolute amplitude, saturating at MaxInt16.
func peak(samples []int16) int {
	p := 0

	for _, s := range samples {
		a := int(s)
		if a < 0 {
			a = -a
		}

		p = max(p, a)
	}

	return min(p, math.MaxInt16)
}

// scale maps an amplitude onto 0..top on a square-root curve so quiet
// passages still register.
func scale(amp, top int) int {
	if amp == 0 {
		return 0
	}

	return min(int(math.Sqrt(float64(amp)/fullScale)*float64(top)), top)
}
