package tui_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alkime/voiceover/internal/api"
	"github.com/alkime/voiceover/internal/apitest"
	"github.com/alkime/voiceover/internal/audio"
	"github.com/alkime/voiceover/internal/authstore"
	"github.com/alkime/voiceover/internal/narration"
	"github.com/alkime/voiceover/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

const (
	email    = "u@x.com"
	password = "secret1"
)

type fakeOutput struct {
	started atomic.Bool
	closed  atomic.Bool
}

func (o *fakeOutput) Open(audio.DeviceConfig, audio.FillFunc) error { return nil }
func (o *fakeOutput) Start() error                                  { o.started.Store(true); return nil }
func (o *fakeOutput) Stop() error                                   { o.started.Store(false); return nil }
func (o *fakeOutput) IsStarted() bool                               { return o.started.Load() }
func (o *fakeOutput) Close()                                        { o.closed.Store(true) }

type harness struct {
	srv   *apitest.Server
	store *authstore.Store
	shell *narration.Shell
	fs    afero.Fs
	out   *fakeOutput
}

func newHarness(t *testing.T, loggedIn bool, opts ...apitest.Option) *harness {
	t.Helper()

	srv := apitest.New(opts...)
	t.Cleanup(srv.Close)

	client, err := api.New(srv.BaseURL())
	require.NoError(t, err)

	store := authstore.New(authstore.NewMemoryKV())
	if loggedIn {
		srv.AddUser(email, password)
		srv.IssueToken("stored-token", email)
		require.NoError(t, store.SetAuth("stored-token", email))
	}

	fs := afero.NewMemMapFs()
	shell := narration.New(client, store,
		narration.WithFs(fs),
		narration.WithWaiter(func(context.Context, time.Duration) error { return nil }),
	)

	return &harness{srv: srv, store: store, shell: shell, fs: fs, out: &fakeOutput{}}
}

func (h *harness) start(t *testing.T) *teatest.TestModel {
	t.Helper()

	m := tui.New(context.Background(), tui.Config{
		Shell:       h.shell,
		Fs:          h.fs,
		DownloadDir: "/downloads",
		NewOutput:   func() audio.Output { return h.out },
	})

	return teatest.NewTestModel(t, m, teatest.WithInitialTermSize(160, 60))
}

func waitFor(t *testing.T, tm *teatest.TestModel, want ...string) {
	t.Helper()

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		for _, s := range want {
			if !strings.Contains(string(b), s) {
				return false
			}
		}

		return true
	}, teatest.WithCheckInterval(20*time.Millisecond), teatest.WithDuration(3*time.Second))
}

func quit(t *testing.T, tm *teatest.TestModel) {
	t.Helper()

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}

func TestTUI_SignupThenLogin(t *testing.T) {
	h := newHarness(t, false)
	tm := h.start(t)

	waitFor(t, tm, "Welcome back")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlT})
	waitFor(t, tm, "Create your account")

	tm.Type(email)
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Type(password)
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitFor(t, tm, narration.MsgAccountCreated, "Welcome back", email)

	// the credentials entered for signup are reused for login
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitFor(t, tm, narration.MsgLoggedIn, "Your projects", "No projects yet.")

	quit(t, tm)

	assert.Equal(t, 1, h.srv.Calls("POST /auth/signup"))
	assert.Equal(t, 1, h.srv.Calls("POST /auth/login"))

	tok, ok := h.store.Token()
	require.True(t, ok)
	assert.NotEmpty(t, tok)
}

func TestTUI_AuthFailureShowsDetail(t *testing.T) {
	h := newHarness(t, false)
	tm := h.start(t)

	tm.Type(email)
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Type("wrong-password")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitFor(t, tm, "Incorrect email or password")

	quit(t, tm)
	assert.False(t, h.store.IsAuthenticated())
}

func TestTUI_SubmitNarration(t *testing.T) {
	h := newHarness(t, true)
	h.srv.AddProject("Chapter one", api.StatusCompleted)
	tm := h.start(t)

	waitFor(t, tm, "Chapter one")

	tm.Type("Intro")
	for range 4 {
		tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	}
	tm.Type("Hello there")
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlS})

	waitFor(t, tm, narration.MsgReady)
	quit(t, tm)

	form := h.srv.LastForm()
	require.NotNil(t, form)
	assert.Equal(t, "Intro", form.Fields["title"])
	assert.Equal(t, "Hello there", form.Fields["text"])

	st := h.shell.State()
	require.NotNil(t, st.Selected)
	assert.Equal(t, api.StatusCompleted, st.Selected.Status)
	assert.Len(t, st.Projects, 2)
}

func TestTUI_MissingUploadIsReported(t *testing.T) {
	h := newHarness(t, true)
	tm := h.start(t)

	waitFor(t, tm, "Your projects")

	tm.Type("Intro")
	for range 5 {
		tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	}
	tm.Type("/nope/story.txt")
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlS})

	waitFor(t, tm, "failed to read /nope/story.txt")
	quit(t, tm)

	assert.Nil(t, h.srv.LastForm())
}

func TestTUI_DownloadAndPreview(t *testing.T) {
	h := newHarness(t, true)
	h.srv.AddProject("Chapter one", api.StatusCompleted)
	tm := h.start(t)

	waitFor(t, tm, "Chapter one")

	for range 6 {
		tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	}

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	waitFor(t, tm, "Saved /downloads/Chapter one.wav")

	data, err := afero.ReadFile(h.fs, "/downloads/Chapter one.wav")
	require.NoError(t, err)
	assert.Equal(t, h.srv.Audio(), data)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	waitFor(t, tm, "Preview: Chapter one", "Playing")
	assert.True(t, h.out.IsStarted())

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	waitFor(t, tm, "Your projects")
	assert.True(t, h.out.closed.Load())

	quit(t, tm)
}

func TestTUI_DownloadFailureLeavesScreenAlone(t *testing.T) {
	h := newHarness(t, true, apitest.ErrorOn("GET /projects/:id/audio", 500, ""))
	h.srv.AddProject("Chapter one", api.StatusCompleted)
	tm := h.start(t)

	waitFor(t, tm, "Chapter one")
	before := h.shell.State().StatusMessage

	for range 6 {
		tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	}

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.Eventually(t, func() bool {
		return h.srv.Calls("GET /projects/:id/audio") == 1
	}, 3*time.Second, 10*time.Millisecond)

	// let the failed operation finish before quitting
	time.Sleep(200 * time.Millisecond)
	quit(t, tm)

	view := tm.FinalModel(t).View()
	assert.NotContains(t, view, "Downloading...")
	assert.NotContains(t, view, "Download failed")
	assert.NotContains(t, view, "500")
	assert.Equal(t, before, h.shell.State().StatusMessage)

	exists, err := afero.Exists(h.fs, "/downloads/Chapter one.wav")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTUI_LogoutReturnsToLogin(t *testing.T) {
	h := newHarness(t, true)
	tm := h.start(t)

	waitFor(t, tm, "Your projects")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlL})
	waitFor(t, tm, "Welcome back")

	quit(t, tm)
	assert.False(t, h.store.IsAuthenticated())
}

func TestTUI_QuitKeyOnlyOutsideTextFields(t *testing.T) {
	h := newHarness(t, true)
	tm := h.start(t)

	waitFor(t, tm, "Your projects")

	// q goes into the title field
	tm.Type("q")
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})

	// on the voice picker it quits
	tm.Type("q")
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}
