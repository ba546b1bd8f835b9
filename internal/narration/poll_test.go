package narration_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alkime/voiceover/internal/api"
	"github.com/alkime/voiceover/internal/apitest"
	"github.com/alkime/voiceover/internal/authstore"
	"github.com/alkime/voiceover/internal/narration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textForm() api.ProjectForm {
	return api.ProjectForm{Title: "T", Text: "Once upon a time."}
}

func TestPoll_ResolvesAfterNPlusOneFetches(t *testing.T) {
	for _, n := range []int{0, 1, 5, 19} {
		t.Run("", func(t *testing.T) {
			f := newFixture(t, apitest.ResolveAfter(n))
			f.loggedIn(t)

			created, outcome, err := f.shell.SubmitProject(context.Background(), textForm())
			require.NoError(t, err)

			assert.Equal(t, narration.PollCompleted, outcome)
			assert.Equal(t, n+1, f.srv.Calls(projectRoute))
			assert.Len(t, f.waiter.Waits(), n)

			st := f.shell.State()
			assert.Equal(t, narration.MsgReady, st.StatusMessage)
			assert.False(t, st.Submitting)
			require.NotNil(t, st.Selected)
			assert.Equal(t, created.ID, st.Selected.ID)
			assert.Equal(t, api.StatusCompleted, st.Selected.Status)
			assert.True(t, st.Selected.HasAudio())

			// history refreshed after polling: once at login, once after submit
			assert.Equal(t, 2, f.srv.Calls("GET /projects"))
			require.Len(t, st.Projects, 1)
			assert.Equal(t, api.StatusCompleted, st.Projects[0].Status)
		})
	}
}

func TestPoll_ExhaustsAfterTwentyFetches(t *testing.T) {
	f := newFixture(t, apitest.ResolveAfter(apitest.Never))
	f.loggedIn(t)

	_, outcome, err := f.shell.SubmitProject(context.Background(), textForm())
	require.NoError(t, err)

	assert.Equal(t, narration.PollExhausted, outcome)
	assert.Equal(t, 20, f.srv.Calls(projectRoute))

	waits := f.waiter.Waits()
	assert.Len(t, waits, 19)
	for _, w := range waits {
		assert.Equal(t, time.Second, w)
	}

	st := f.shell.State()
	assert.Equal(t, narration.MsgStillWorking, st.StatusMessage)
	require.NotNil(t, st.Selected)
	assert.Equal(t, api.StatusPending, st.Selected.Status)
}

func TestPoll_GenerationFailed(t *testing.T) {
	f := newFixture(t, apitest.ResolveAfter(2), apitest.FailGeneration("TTS provider unavailable"))
	f.loggedIn(t)

	_, outcome, err := f.shell.SubmitProject(context.Background(), textForm())
	require.NoError(t, err)

	assert.Equal(t, narration.PollFailed, outcome)
	assert.Equal(t, 3, f.srv.Calls(projectRoute))

	st := f.shell.State()
	assert.Equal(t, "Generation failed: TTS provider unavailable", st.StatusMessage)
	assert.Equal(t, api.StatusFailed, st.Selected.Status)
	assert.False(t, st.Selected.HasAudio())
}

func TestPoll_AbortsOnRequestError(t *testing.T) {
	f := newFixture(t, apitest.ErrorOn(projectRoute, http.StatusInternalServerError, "db down"))
	f.loggedIn(t)

	_, outcome, err := f.shell.SubmitProject(context.Background(), textForm())
	require.NoError(t, err)

	assert.Equal(t, narration.PollAborted, outcome)
	assert.Equal(t, 1, f.srv.Calls(projectRoute))
	assert.Empty(t, f.waiter.Waits())
	assert.Equal(t, narration.MsgStillWorking, f.shell.State().StatusMessage)
}

func TestPoll_CustomPolicy(t *testing.T) {
	srv := apitest.New(apitest.ResolveAfter(apitest.Never))
	defer srv.Close()
	srv.IssueToken("abc", "u@x.com")
	p := srv.AddProject("P", api.StatusProcessing)

	client, err := api.New(srv.BaseURL())
	require.NoError(t, err)

	store := authstore.New(authstore.NewMemoryKV())
	require.NoError(t, store.SetAuth("abc", "u@x.com"))

	waiter := &recordingWaiter{}
	shell := narration.New(client, store,
		narration.WithWaiter(waiter.Wait),
		narration.WithPollPolicy(narration.PollPolicy{Interval: 250 * time.Millisecond, Attempts: 3}),
	)

	assert.Equal(t, narration.PollExhausted, shell.Poll(context.Background(), p.ID))
	assert.Equal(t, 3, srv.Calls(projectRoute))
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond}, waiter.Waits())
}

func TestPoll_Canceled(t *testing.T) {
	f := newFixture(t, apitest.ResolveAfter(apitest.Never))
	f.loggedIn(t)
	p := f.srv.AddProject("P", api.StatusProcessing)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	shell := narration.New(mustClient(t, f.srv), f.store,
		narration.WithWaiter(func(ctx context.Context, _ time.Duration) error {
			calls++
			if calls == 3 {
				cancel()
			}
			return ctx.Err()
		}),
	)

	assert.Equal(t, narration.PollCanceled, shell.Poll(ctx, p.ID))
	assert.Equal(t, 3, f.srv.Calls(projectRoute))
	assert.Empty(t, shell.State().StatusMessage)
}

func TestPoll_DropsResultAfterSessionChange(t *testing.T) {
	tests := []struct {
		name    string
		relogin bool
	}{
		{name: "logged out"},
		{name: "logged in as someone else", relogin: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, apitest.ResolveAfter(2))
			f.loggedIn(t)
			f.srv.AddUser("v@x.com", "secret2")
			p := f.srv.AddProject("P", api.StatusProcessing)

			var shell *narration.Shell
			calls := 0
			shell = narration.New(mustClient(t, f.srv), f.store,
				narration.WithWaiter(func(ctx context.Context, _ time.Duration) error {
					calls++
					if calls == 2 {
						require.NoError(t, shell.Logout())
						if tt.relogin {
							require.NoError(t, shell.SubmitAuth(ctx, "v@x.com", "secret2"))
						}
					}
					return nil
				}),
			)

			assert.Equal(t, narration.PollCanceled, shell.Poll(context.Background(), p.ID))
			assert.Equal(t, 3, f.srv.Calls(projectRoute))

			st := shell.State()
			assert.Nil(t, st.Selected)
			assert.NotEqual(t, narration.MsgReady, st.StatusMessage)
			assert.Equal(t, tt.relogin, st.Authenticated)
		})
	}
}

func TestPoll_RealSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	assert.ErrorIs(t, narration.Sleep(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, narration.Sleep(context.Background(), time.Millisecond))
}

func TestSubmitProject_CreateFailure(t *testing.T) {
	tests := []struct {
		name   string
		opt    apitest.Option
		form   api.ProjectForm
		status string
	}{
		{
			name:   "server detail",
			opt:    apitest.ResolveAfter(0),
			form:   api.ProjectForm{Title: "Empty"},
			status: "No text provided for narration",
		},
		{
			name:   "fallback",
			opt:    apitest.ErrorOn("POST /projects", http.StatusInternalServerError, ""),
			form:   textForm(),
			status: narration.MsgCreateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.opt)
			f.loggedIn(t)

			_, _, err := f.shell.SubmitProject(context.Background(), tt.form)
			require.Error(t, err)

			st := f.shell.State()
			assert.Equal(t, tt.status, st.StatusMessage)
			assert.False(t, st.Submitting)
			assert.Nil(t, st.Selected)
			assert.Zero(t, f.srv.Calls(projectRoute))
		})
	}
}

func TestSubmitProject_RequiresAuthAndTitle(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.shell.SubmitProject(context.Background(), textForm())
	assert.ErrorIs(t, err, narration.ErrNotAuthenticated)

	f.loggedIn(t)

	_, _, err = f.shell.SubmitProject(context.Background(), api.ProjectForm{Text: "x"})
	assert.ErrorIs(t, err, narration.ErrInvalidInput)
	assert.Equal(t, "title is required", f.shell.State().StatusMessage)
	assert.Zero(t, f.srv.Calls("POST /projects"))
}

func TestSubmitProject_SendsForm(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)

	form := api.ProjectForm{
		Title:    "Doc",
		VoiceID:  "2",
		Language: "de",
		File:     &api.Upload{Filename: "chapter.txt", ContentType: "text/plain", Data: []byte("Es war einmal.")},
	}

	_, _, err := f.shell.SubmitProject(context.Background(), form)
	require.NoError(t, err)

	got := f.srv.LastForm()
	require.NotNil(t, got)
	assert.Equal(t, map[string]string{"title": "Doc", "voice_id": "2", "language": "de"}, got.Fields)
	assert.True(t, got.HasFile)
	assert.Equal(t, "chapter.txt", got.FileName)
	assert.Equal(t, "text/plain", got.FileContentType)
	assert.Equal(t, []byte("Es war einmal."), got.FileData)

	sel := f.shell.State().Selected
	require.NotNil(t, sel)
	assert.Equal(t, "chapter.txt", sel.SourceFilename)
	require.NotNil(t, sel.VoiceID)
	assert.Equal(t, int64(2), *sel.VoiceID)
}

func TestSubmitProject_SubmittingFlagWhilePolling(t *testing.T) {
	f := newFixture(t, apitest.ResolveAfter(1))
	f.loggedIn(t)

	var (
		shell  *narration.Shell
		during narration.State
	)

	shell = narration.New(mustClient(t, f.srv), f.store,
		narration.WithWaiter(func(context.Context, time.Duration) error {
			during = shell.State()
			return nil
		}),
	)

	_, outcome, err := shell.SubmitProject(context.Background(), textForm())
	require.NoError(t, err)
	assert.Equal(t, narration.PollCompleted, outcome)

	assert.True(t, during.Submitting)
	assert.Equal(t, narration.MsgRequested, during.StatusMessage)
	assert.False(t, shell.State().Submitting)
}

func TestPollOutcome_String(t *testing.T) {
	assert.Equal(t, "completed", narration.PollCompleted.String())
	assert.Equal(t, "exhausted", narration.PollExhausted.String())
	assert.Equal(t, "unknown", narration.PollOutcome(42).String())
}

func mustClient(t *testing.T, srv *apitest.Server) *api.Client {
	t.Helper()

	client, err := api.New(srv.BaseURL())
	require.NoError(t, err)

	return client
}
