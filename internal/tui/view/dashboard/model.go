// Package dashboard provides the logged-in view: the narration form, the
// project history and the selected project's detail.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/alkime/voiceover/internal/api"
	"github.com/alkime/voiceover/internal/narration"
	"github.com/alkime/voiceover/internal/output"
	"github.com/alkime/voiceover/internal/tui/msg"
	"github.com/alkime/voiceover/internal/tui/style"
	"github.com/alkime/voiceover/pkg/collections"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Focus targets, in tab order.
const (
	focusTitle = iota
	focusVoice
	focusLanguage
	focusStyle
	focusText
	focusFile
	focusHistory
	focusCount
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	detailHeight  = 6
)

// AutomaticVoice is the picker entry that lets the service choose.
const AutomaticVoice = "Automatic"

// Model is the dashboard.
type Model struct {
	keys KeyMap

	title    textinput.Model
	language textinput.Model
	style    textinput.Model
	text     textarea.Model
	file     textinput.Model
	voice    int // 0 is AutomaticVoice, i is voices[i-1]

	focus  int
	cursor int

	voices     []api.Voice
	projects   []api.ProjectSummary
	selected   *api.ProjectDetail
	submitting bool

	transcript viewport.Model
	width      int
	height     int
}

// New creates an empty dashboard with the title field focused.
func New() Model {
	m := Model{
		keys:       DefaultKeyMap(),
		title:      newInput("Title:    ", "My audiobook", 200),
		language:   newInput("Language: ", "en", 16),
		style:      newInput("Style:    ", "narration", 64),
		file:       newInput("File:     ", "path to .txt, .pdf or .docx", 4096),
		text:       textarea.New(),
		transcript: viewport.New(defaultWidth/2-4, detailHeight),
		width:      defaultWidth,
		height:     defaultHeight,
	}

	m.text.Placeholder = "Paste the text to narrate..."
	m.text.ShowLineNumbers = false
	m.text.SetHeight(4)
	m.text.SetWidth(defaultWidth/2 - 4)

	m.title.Focus()

	return m
}

func newInput(prompt, placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit

	return in
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize lays the panes out for a terminal of the given size.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height

	half := max(width/2-4, 20)
	m.text.SetWidth(half)
	m.transcript.Width = half
	m.transcript.Height = max(detailHeight, height/4)

	return m
}

// SetState copies what the dashboard shows from a shell snapshot.
func (m Model) SetState(st narration.State) Model {
	m.voices = st.Voices
	m.projects = st.Projects
	m.submitting = st.Submitting

	if m.voice > len(m.voices) {
		m.voice = 0
	}

	if m.cursor >= len(m.projects) {
		m.cursor = max(len(m.projects)-1, 0)
	}

	if !sameDetail(m.selected, st.Selected) {
		m.selected = st.Selected
		m.transcript.SetContent(m.transcriptText())
		m.transcript.GotoTop()
	}

	return m
}

// ResetForm clears the narration form.
func (m Model) ResetForm() Model {
	m.title.Reset()
	m.language.Reset()
	m.style.Reset()
	m.text.Reset()
	m.file.Reset()
	m.voice = 0

	return m
}

// Typing reports whether keys go to a text field, so single-letter
// shortcuts must not fire.
func (m Model) Typing() bool {
	return m.focus != focusHistory && m.focus != focusVoice
}

// Form builds the narration request from the form fields.
func (m Model) Form() (api.ProjectForm, string) {
	form := api.ProjectForm{
		Title:    strings.TrimSpace(m.title.Value()),
		Language: strings.TrimSpace(m.language.Value()),
		Style:    strings.TrimSpace(m.style.Value()),
		Text:     m.text.Value(),
	}

	if m.voice > 0 {
		form.VoiceID = fmt.Sprint(m.voices[m.voice-1].ID)
	}

	return form, strings.TrimSpace(m.file.Value())
}

// Update handles key presses and forwards the rest to the focused field.
func (m Model) Update(teaMsg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := teaMsg.(tea.KeyMsg)
	if !ok {
		return m.updateFocused(teaMsg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Next):
		return m.focusOn((m.focus + 1) % focusCount), nil

	case key.Matches(keyMsg, m.keys.Prev):
		return m.focusOn((m.focus + focusCount - 1) % focusCount), nil

	case key.Matches(keyMsg, m.keys.Submit):
		if m.submitting {
			return m, nil
		}

		form, path := m.Form()

		return m, func() tea.Msg { return msg.SubmitProjectMsg{Form: form, FilePath: path} }

	case key.Matches(keyMsg, m.keys.Logout):
		return m, func() tea.Msg { return msg.LogoutMsg{} }
	}

	switch m.focus {
	case focusVoice:
		return m.updateVoice(keyMsg), nil
	case focusHistory:
		return m.updateHistory(keyMsg)
	}

	return m.updateFocused(teaMsg)
}

func (m Model) updateVoice(keyMsg tea.KeyMsg) Model {
	n := len(m.voices) + 1

	switch {
	case key.Matches(keyMsg, m.keys.VoiceNext):
		m.voice = (m.voice + 1) % n
	case key.Matches(keyMsg, m.keys.VoicePrev):
		m.voice = (m.voice + n - 1) % n
	}

	return m
}

func (m Model) updateHistory(keyMsg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, m.keys.Refresh):
		return m, func() tea.Msg { return msg.RefreshMsg{} }

	case key.Matches(keyMsg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
		return m, nil

	case key.Matches(keyMsg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(len(m.projects)-1, 0))
		return m, nil
	}

	project, ok := m.current()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Details):
		return m, func() tea.Msg { return msg.SelectProjectMsg{ID: project.ID} }

	case key.Matches(keyMsg, m.keys.Download):
		if project.HasAudio() {
			return m, func() tea.Msg { return msg.DownloadMsg{Project: project} }
		}

	case key.Matches(keyMsg, m.keys.Preview):
		if project.HasAudio() {
			return m, func() tea.Msg { return msg.PreviewMsg{Project: project} }
		}
	}

	// let pgup/pgdown scroll the transcript
	var cmd tea.Cmd
	m.transcript, cmd = m.transcript.Update(keyMsg)

	return m, cmd
}

func (m Model) updateFocused(teaMsg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.focus {
	case focusTitle:
		m.title, cmd = m.title.Update(teaMsg)
	case focusLanguage:
		m.language, cmd = m.language.Update(teaMsg)
	case focusStyle:
		m.style, cmd = m.style.Update(teaMsg)
	case focusText:
		m.text, cmd = m.text.Update(teaMsg)
	case focusFile:
		m.file, cmd = m.file.Update(teaMsg)
	}

	return m, cmd
}

func (m Model) focusOn(target int) Model {
	m.title.Blur()
	m.language.Blur()
	m.style.Blur()
	m.text.Blur()
	m.file.Blur()

	switch target {
	case focusTitle:
		m.title.Focus()
	case focusLanguage:
		m.language.Focus()
	case focusStyle:
		m.style.Focus()
	case focusText:
		m.text.Focus()
	case focusFile:
		m.file.Focus()
	}

	m.focus = target

	return m
}

func (m Model) current() (api.ProjectSummary, bool) {
	if m.cursor < 0 || m.cursor >= len(m.projects) {
		return api.ProjectSummary{}, false
	}

	return m.projects[m.cursor], true
}

// View renders the form on the left and history plus detail on the right.
func (m Model) View() string {
	half := max(m.width/2-2, 24)

	left := m.panel(m.focus != focusHistory, half).Render(m.formView())
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.panel(m.focus == focusHistory, half).Render(m.historyView()),
		style.Panel.Width(half).Render(m.detailView()),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) panel(focused bool, width int) lipgloss.Style {
	if focused {
		return style.FocusedPanel.Width(width)
	}

	return style.Panel.Width(width)
}

func (m Model) formView() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("New narration"))
	sb.WriteString("\n\n")
	sb.WriteString(m.title.View())
	sb.WriteString("\n")
	sb.WriteString(m.voiceView())
	sb.WriteString("\n")
	sb.WriteString(m.language.View())
	sb.WriteString("\n")
	sb.WriteString(m.style.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.text.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.file.View())
	sb.WriteString("\n\n")
	sb.WriteString(style.KeyHint(m.keys.Submit.Help().Key, m.keys.Submit.Help().Desc))
	sb.WriteString("  ")
	sb.WriteString(style.KeyHint(m.keys.Next.Help().Key, m.keys.Next.Help().Desc))

	return sb.String()
}

func (m Model) voiceView() string {
	labels := append([]string{AutomaticVoice}, collections.Apply(m.voices, VoiceLabel)...)
	current := labels[min(m.voice, len(labels)-1)]

	if m.focus == focusVoice {
		return "Voice:    " + style.Key.Render("‹ "+current+" ›")
	}

	return "Voice:    " + current
}

// VoiceLabel renders a catalog entry for the picker.
func VoiceLabel(v api.Voice) string {
	details := []string{v.Language}
	for _, extra := range []string{v.Accent, v.Gender, v.Style} {
		if extra != "" {
			details = append(details, extra)
		}
	}

	return fmt.Sprintf("%s (%s)", v.Name, strings.Join(details, ", "))
}

func (m Model) historyView() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("Your projects"))
	sb.WriteString("\n\n")

	if len(m.projects) == 0 {
		sb.WriteString(style.Muted.Render("No projects yet."))
	}

	for i, p := range m.projects {
		marker := "  "
		if i == m.cursor && m.focus == focusHistory {
			marker = style.Bullet.Render("> ")
		}

		sb.WriteString(marker)
		sb.WriteString(p.Title)
		sb.WriteString(" ")
		sb.WriteString(statusStyle(p.Status).Render(string(p.Status)))
		sb.WriteString(" ")
		sb.WriteString(style.Muted.Render(output.LocalTime(p.UpdatedAt)))
		sb.WriteString("\n")
	}

	if m.focus == focusHistory {
		sb.WriteString("\n")
		sb.WriteString(strings.Join([]string{
			style.KeyHint(m.keys.Details.Help().Key, m.keys.Details.Help().Desc),
			style.KeyHint(m.keys.Download.Help().Key, m.keys.Download.Help().Desc),
			style.KeyHint(m.keys.Preview.Help().Key, m.keys.Preview.Help().Desc),
			style.KeyHint(m.keys.Refresh.Help().Key, m.keys.Refresh.Help().Desc),
		}, "  "))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) detailView() string {
	if m.selected == nil {
		return style.Muted.Render("Select a project to see its details.")
	}

	p := m.selected

	var sb strings.Builder

	sb.WriteString(style.Title.Render(p.Title))
	sb.WriteString("\n")

	rows := [][2]string{
		{"Status", statusStyle(p.Status).Render(string(p.Status))},
		{"Created", output.LocalTime(p.CreatedAt)},
		{"Updated", output.LocalTime(p.UpdatedAt)},
		{"Voice", m.voiceName(p.VoiceID)},
	}

	if p.SourceFilename != "" {
		rows = append(rows, [2]string{"Source", p.SourceFilename})
	}

	for _, r := range rows {
		sb.WriteString(style.Label.Render(r[0]+": ") + r[1] + "\n")
	}

	if p.ErrorMessage != "" {
		sb.WriteString(style.Error.Render(p.ErrorMessage))
		sb.WriteString("\n")
	}

	if p.SourceText != "" {
		sb.WriteString(style.Viewport.Render(m.transcript.View()))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// voiceName shows the catalog name when the id is known.
func (m Model) voiceName(id *int64) string {
	if id == nil {
		return output.VoiceLabel(id)
	}

	v, ok := collections.Find(m.voices, func(v api.Voice) bool { return v.ID == *id })
	if !ok {
		return output.VoiceLabel(id)
	}

	return v.Name
}

func (m Model) transcriptText() string {
	if m.selected == nil {
		return ""
	}

	return lipgloss.NewStyle().Width(m.transcript.Width).Render(m.selected.SourceText)
}

func statusStyle(s api.ProjectStatus) lipgloss.Style {
	switch s {
	case api.StatusCompleted:
		return style.Success
	case api.StatusFailed:
		return style.Error
	default:
		return style.Warning
	}
}

func sameDetail(a, b *api.ProjectDetail) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.ID == b.ID && a.Status == b.Status && a.UpdatedAt.Equal(b.UpdatedAt.Time) && a.SourceText == b.SourceText
}
