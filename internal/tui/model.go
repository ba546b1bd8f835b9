// Package tui is the terminal front end. It renders narration.Shell state
// and turns key presses into shell operations run as commands.
package tui

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/alkime/voiceover/internal/api"
	"github.com/alkime/voiceover/internal/audio"
	"github.com/alkime/voiceover/internal/narration"
	"github.com/alkime/voiceover/internal/tui/components/labeledspinner"
	"github.com/alkime/voiceover/internal/tui/msg"
	"github.com/alkime/voiceover/internal/tui/style"
	"github.com/alkime/voiceover/internal/tui/view/auth"
	"github.com/alkime/voiceover/internal/tui/view/dashboard"
	"github.com/alkime/voiceover/internal/tui/view/preview"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
)

// Config wires the model to the rest of the program.
type Config struct {
	Shell       *narration.Shell
	Fs          afero.Fs
	DownloadDir string
	// NewOutput opens the playback device for previews. Nil disables
	// previews.
	NewOutput func() audio.Output
	Cancel    context.CancelFunc
}

type screen int

const (
	screenAuth screen = iota
	screenDashboard
	screenPreview
)

// opDoneMsg reports a finished shell operation.
type opDoneMsg struct {
	err       error
	notice    string
	resetAuth bool
	resetForm bool
}

type previewReadyMsg struct {
	player  *audio.Player
	project api.ProjectSummary
	url     string
	cancel  context.CancelFunc
}

type model struct {
	ctx    context.Context
	config Config
	keys   KeyMap

	auth    auth.Model
	dash    dashboard.Model
	preview preview.Model
	player  *audio.Player
	stop    context.CancelFunc

	spinner labeledspinner.Model
	state   narration.State
	busy    int
	notice  string

	width  int
	height int
}

// New creates the root model. ctx bounds every operation it starts.
func New(ctx context.Context, config Config) tea.Model {
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}

	m := &model{
		ctx:     ctx,
		config:  config,
		keys:    DefaultKeyMap(),
		auth:    auth.New(),
		dash:    dashboard.New(),
		spinner: labeledspinner.New(spinner.Dot, "Working...", "", ""),
		width:   100,
		height:  30,
	}
	m.refresh()

	return m
}

// Init loads voices and history when a stored session exists.
func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.auth.Init(), m.dash.Init()}

	if m.state.Authenticated {
		cmds = append(cmds, m.run("Loading...", func(ctx context.Context) opDoneMsg {
			m.config.Shell.Start(ctx)
			return opDoneMsg{}
		}))
	}

	return tea.Batch(cmds...)
}

// Update handles all messages.
func (m *model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch teaMsg := teaMsg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = teaMsg.Width, teaMsg.Height
		m.dash = m.dash.SetSize(teaMsg.Width, teaMsg.Height-4)

		if m.current() == screenPreview {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(teaMsg)

			return m, cmd
		}

		return m, nil

	case tea.KeyMsg:
		if key.Matches(teaMsg, m.keys.ForceQuit) || (key.Matches(teaMsg, m.keys.Quit) && !m.typing()) {
			m.closePreview()

			if m.config.Cancel != nil {
				m.config.Cancel()
			}

			return m, tea.Quit
		}

	case spinner.TickMsg:
		if teaMsg.ID != m.spinner.Spinner.ID() {
			return m.delegate(teaMsg)
		}

		if m.busy == 0 {
			return m, nil
		}

		// operations update the shell from another goroutine
		m.refresh()

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(teaMsg)

		return m, cmd

	case opDoneMsg:
		m.finish(teaMsg)
		return m, nil

	case previewReadyMsg:
		m.busy = max(m.busy-1, 0)
		m.player, m.stop = teaMsg.player, teaMsg.cancel
		m.preview = preview.New(preview.Controls{
			Title:      teaMsg.project.Title,
			URL:        teaMsg.url,
			SampleRate: teaMsg.player.Clip().SampleRate,
			Progress:   teaMsg.player.Progress(),
			Playing:    teaMsg.player.Playing(),
			Levels:     teaMsg.player.Levels(),
			Finished:   teaMsg.player.Finished(),
		}, m.width)
		m.refresh()

		return m, m.preview.Init()

	case msg.SubmitAuthMsg:
		return m, m.submitAuth(teaMsg)

	case msg.ToggleModeMsg:
		m.config.Shell.ToggleMode()
		m.config.Shell.ClearStatus()
		m.refresh()

		return m, nil

	case msg.SubmitProjectMsg:
		return m, m.submitProject(teaMsg)

	case msg.RefreshMsg:
		return m, m.run("Refreshing...", func(ctx context.Context) opDoneMsg {
			return opDoneMsg{err: m.config.Shell.LoadProjects(ctx)}
		})

	case msg.SelectProjectMsg:
		return m, m.run("Loading project...", func(ctx context.Context) opDoneMsg {
			return opDoneMsg{err: m.config.Shell.SelectProject(ctx, teaMsg.ID)}
		})

	case msg.DownloadMsg:
		return m, m.download(teaMsg.Project)

	case msg.PreviewMsg:
		return m, m.startPreview(teaMsg.Project)

	case msg.ClosePreviewMsg:
		m.closePreview()
		return m, nil

	case msg.LogoutMsg:
		m.closePreview()
		if err := m.config.Shell.Logout(); err != nil {
			m.notice = "Logout failed: " + err.Error()
		}

		m.dash = m.dash.ResetForm()
		m.auth = m.auth.Reset()
		m.refresh()

		return m, nil
	}

	return m.delegate(teaMsg)
}

func (m *model) delegate(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.current() {
	case screenAuth:
		m.auth, cmd = m.auth.Update(teaMsg)
	case screenDashboard:
		m.dash, cmd = m.dash.Update(teaMsg)
	case screenPreview:
		m.preview, cmd = m.preview.Update(teaMsg)
	}

	return m, cmd
}

func (m *model) current() screen {
	switch {
	case !m.state.Authenticated:
		return screenAuth
	case m.player != nil:
		return screenPreview
	default:
		return screenDashboard
	}
}

// typing reports whether q belongs to a text field.
func (m *model) typing() bool {
	switch m.current() {
	case screenAuth:
		return true
	case screenDashboard:
		return m.dash.Typing()
	default:
		return false
	}
}

func (m *model) refresh() {
	m.state = m.config.Shell.State()
	m.auth = m.auth.SetMode(m.state.Mode)
	m.dash = m.dash.SetState(m.state)
}

// run executes op in the background with the spinner showing label.
func (m *model) run(label string, op func(ctx context.Context) opDoneMsg) tea.Cmd {
	ctx := m.ctx

	return tea.Batch(
		m.startBusy(label),
		func() tea.Msg { return op(ctx) },
	)
}

// startBusy shows the spinner. Only the first outstanding operation
// starts a tick loop.
func (m *model) startBusy(label string) tea.Cmd {
	m.busy++
	m.notice = ""
	m.spinner = m.spinner.WithLabels(label, "")

	if m.busy > 1 {
		return nil
	}

	return m.spinner.Init()
}

func (m *model) finish(done opDoneMsg) {
	m.busy = max(m.busy-1, 0)
	m.notice = done.notice

	if done.err != nil {
		slog.Debug("operation failed", "error", done.err)
	}

	if done.resetAuth {
		m.auth = m.auth.Reset()
	}

	if done.resetForm {
		m.dash = m.dash.ResetForm()
	}

	m.refresh()
}

func (m *model) submitAuth(submit msg.SubmitAuthMsg) tea.Cmd {
	shell := m.config.Shell
	login := shell.Mode() == narration.ModeLogin

	return m.run("Signing in...", func(ctx context.Context) opDoneMsg {
		err := shell.SubmitAuth(ctx, submit.Email, submit.Password)

		// signup keeps the entered credentials for the login that follows
		return opDoneMsg{err: err, resetAuth: login && err == nil}
	})
}

func (m *model) submitProject(submit msg.SubmitProjectMsg) tea.Cmd {
	form := submit.Form

	if submit.FilePath != "" {
		if err := form.AttachFile(m.config.Fs, submit.FilePath); err != nil {
			m.notice = err.Error()
			return nil
		}
	}

	return m.run("Generating narration...", func(ctx context.Context) opDoneMsg {
		_, _, err := m.config.Shell.SubmitProject(ctx, form)

		return opDoneMsg{err: err, resetForm: err == nil}
	})
}

func (m *model) download(project api.ProjectSummary) tea.Cmd {
	shell, dir := m.config.Shell, m.config.DownloadDir

	return m.run("Downloading...", func(ctx context.Context) opDoneMsg {
		path, err := shell.DownloadAudio(ctx, project, dir)
		if err != nil {
			// logged by the shell; the screen stays as it was
			return opDoneMsg{err: err}
		}

		return opDoneMsg{notice: "Saved " + path}
	})
}

func (m *model) startPreview(project api.ProjectSummary) tea.Cmd {
	if m.config.NewOutput == nil {
		m.notice = "Audio playback is not available."
		return nil
	}

	shell, newOutput := m.config.Shell, m.config.NewOutput
	playCtx, cancel := context.WithCancel(m.ctx)

	return tea.Batch(m.startBusy("Loading audio..."), func() tea.Msg {
		player, url, err := openPreview(playCtx, shell, newOutput, project)
		if err != nil {
			cancel()
			return opDoneMsg{err: err, notice: "Preview failed: " + api.DetailOr(err, err.Error())}
		}

		return previewReadyMsg{player: player, project: project, url: url, cancel: cancel}
	})
}

func openPreview(
	ctx context.Context,
	shell *narration.Shell,
	newOutput func() audio.Output,
	project api.ProjectSummary,
) (*audio.Player, string, error) {
	url, err := shell.PreviewURL(project)
	if err != nil {
		return nil, "", err
	}

	data, err := shell.FetchAudio(ctx, project)
	if err != nil {
		return nil, "", err
	}

	clip, err := audio.DecodeWAV(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}

	player, err := audio.NewPlayer(newOutput(), clip)
	if err != nil {
		return nil, "", err
	}

	if err := player.Start(ctx); err != nil {
		_ = player.Close()
		return nil, "", err
	}

	return player, url, nil
}

func (m *model) closePreview() {
	if m.player == nil {
		return
	}

	if err := m.player.Close(); err != nil && !errors.Is(err, context.Canceled) {
		m.notice = err.Error()
	}

	if m.stop != nil {
		m.stop()
	}

	m.player, m.stop = nil, nil
}

// View renders the current screen with the status line below it.
func (m *model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("Voiceover"))

	if m.state.Authenticated {
		sb.WriteString(style.Muted.Render("  " + m.state.Email))
	}

	sb.WriteString("\n\n")

	switch m.current() {
	case screenAuth:
		sb.WriteString(m.auth.View())
	case screenDashboard:
		sb.WriteString(m.dash.View())
	case screenPreview:
		sb.WriteString(m.preview.View())
	}

	sb.WriteString("\n")

	if m.busy > 0 {
		sb.WriteString(m.spinner.Inline())
		sb.WriteString("\n")
	}

	if status := m.statusLine(); status != "" {
		sb.WriteString(style.Toast.Render(status))
		sb.WriteString("\n")
	}

	hints := []string{style.KeyHint(m.keys.ForceQuit.Help().Key, m.keys.ForceQuit.Help().Desc)}
	if m.current() == screenDashboard {
		hints = append(hints, style.KeyHint("ctrl+l", "log out"))
	}

	sb.WriteString(strings.Join(hints, "  "))

	return sb.String()
}

func (m *model) statusLine() string {
	if m.notice != "" {
		return m.notice
	}

	return m.state.StatusMessage
}
