// Package auth provides the login/signup view.
package auth

import (
	"strings"

	"github.com/alkime/voiceover/internal/narration"
	"github.com/alkime/voiceover/internal/tui/msg"
	"github.com/alkime/voiceover/internal/tui/style"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldCount
)

// Model is the email/password form.
type Model struct {
	keys   KeyMap
	inputs [fieldCount]textinput.Model
	focus  int
	mode   narration.Mode
}

// New creates the auth form with the email field focused.
func New() Model {
	email := textinput.New()
	email.Prompt = "Email address: "
	email.Placeholder = "you@example.com"
	email.CharLimit = 254

	password := textinput.New()
	password.Prompt = "Password:      "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	m := Model{
		keys:   DefaultKeyMap(),
		inputs: [fieldCount]textinput.Model{email, password},
		mode:   narration.ModeLogin,
	}
	m.inputs[fieldEmail].Focus()

	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetMode updates the heading and submit label.
func (m Model) SetMode(mode narration.Mode) Model {
	m.mode = mode
	return m
}

// Reset clears both fields and focuses the email field.
func (m Model) Reset() Model {
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}

	m.focus = fieldEmail
	m.inputs[fieldEmail].Focus()

	return m
}

// Update handles key presses and forwards the rest to the focused field.
func (m Model) Update(teaMsg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := teaMsg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.ToggleMode):
			return m, func() tea.Msg { return msg.ToggleModeMsg{} }

		case key.Matches(keyMsg, m.keys.Submit):
			submit := msg.SubmitAuthMsg{
				Email:    m.inputs[fieldEmail].Value(),
				Password: m.inputs[fieldPassword].Value(),
			}

			return m, func() tea.Msg { return submit }

		case key.Matches(keyMsg, m.keys.Next):
			return m.focusField((m.focus + 1) % fieldCount), nil

		case key.Matches(keyMsg, m.keys.Prev):
			return m.focusField((m.focus + fieldCount - 1) % fieldCount), nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(teaMsg)

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	var sb strings.Builder

	heading, switchHint := "Welcome back", "Need an account?"
	if m.mode == narration.ModeSignup {
		heading, switchHint = "Create your account", "Already registered?"
	}

	sb.WriteString(style.Title.Render(heading))
	sb.WriteString("\n")
	sb.WriteString(style.Subtitle.Render("Turn manuscripts into narrated audio."))
	sb.WriteString("\n\n")

	for i := range m.inputs {
		sb.WriteString(m.inputs[i].View())
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(style.KeyHint(m.keys.Submit.Help().Key, string(m.mode)))
	sb.WriteString("  ")
	sb.WriteString(style.KeyHint(m.keys.ToggleMode.Help().Key, switchHint))
	sb.WriteString("  ")
	sb.WriteString(style.KeyHint(m.keys.Next.Help().Key, m.keys.Next.Help().Desc))

	return style.Panel.Render(sb.String())
}

func (m Model) focusField(i int) Model {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()

	return m
}
