// Package narration holds the client's business logic: the auth flow,
// project submission and polling, history and audio download. Front ends
// call its operations and render State snapshots.
package narration

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/alkime/voiceover/internal/api"
	"github.com/alkime/voiceover/internal/authstore"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Status messages shown to the user.
const (
	MsgAccountCreated = "Account created! Please log in."
	MsgLoggedIn       = "Logged in successfully."
	MsgAuthFailed     = "Authentication failed"
	MsgUploading      = "Uploading project..."
	MsgRequested      = "Narration requested. Generating audio..."
	MsgCreateFailed   = "Failed to create project"
	MsgReady          = "Narration ready! Download or preview below."
	MsgStillWorking   = "Still working... refresh the page to update status."

	msgGenerationFailed = "Generation failed: "
)

var (
	// ErrNotAuthenticated is returned by operations that need a token.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoAudio is returned when a project has no downloadable audio.
	ErrNoAudio = errors.New("project has no audio")
)

// Mode selects what the auth form does on submit.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

// API is the subset of the narration service the shell uses.
// *api.Client implements it.
type API interface {
	Signup(ctx context.Context, creds api.Credentials) error
	Login(ctx context.Context, creds api.Credentials) (api.Token, error)
	ListVoices(ctx context.Context, token string) ([]api.Voice, error)
	ListProjects(ctx context.Context, token string) ([]api.ProjectSummary, error)
	GetProject(ctx context.Context, token string, id int64) (api.ProjectDetail, error)
	CreateProject(ctx context.Context, token string, form api.ProjectForm) (api.ProjectDetail, error)
	DownloadAudio(ctx context.Context, token, audioURL string) ([]byte, string, error)
	ResolveURL(path string) (string, error)
}

// State is a point-in-time copy of everything a front end renders.
type State struct {
	Mode          Mode
	Email         string
	Authenticated bool
	Voices        []api.Voice
	Projects      []api.ProjectSummary
	Selected      *api.ProjectDetail
	StatusMessage string
	Submitting    bool
}

// Shell owns the client's in-memory state. Its methods are safe for
// concurrent use; each operation holds the lock only while touching state,
// never across a request.
type Shell struct {
	client API
	auth   *authstore.Store
	fs     afero.Fs
	policy PollPolicy
	wait   Waiter
	logger *slog.Logger

	mu         sync.Mutex
	mode       Mode
	voices     []api.Voice
	projects   []api.ProjectSummary
	selected   *api.ProjectDetail
	status     string
	submitting bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithPollPolicy replaces the default polling policy.
func WithPollPolicy(p PollPolicy) Option {
	return func(s *Shell) { s.policy = p }
}

// WithWaiter replaces the sleep between poll attempts.
func WithWaiter(w Waiter) Option {
	return func(s *Shell) { s.wait = w }
}

// WithFs sets the filesystem downloads are written to.
func WithFs(fs afero.Fs) Option {
	return func(s *Shell) { s.fs = fs }
}

// WithLogger sets the logger transient failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// New creates a shell over client and auth. The auth store is expected to
// be loaded already.
func New(client API, auth *authstore.Store, opts ...Option) *Shell {
	s := &Shell{
		client: client,
		auth:   auth,
		fs:     afero.NewOsFs(),
		policy: DefaultPollPolicy(),
		wait:   Sleep,
		logger: slog.Default(),
		mode:   ModeLogin,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// State returns a snapshot of the shell.
func (s *Shell) State() State {
	auth := s.auth.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	var selected *api.ProjectDetail
	if s.selected != nil {
		cp := *s.selected
		selected = &cp
	}

	return State{
		Mode:          s.mode,
		Email:         auth.Email,
		Authenticated: auth.IsAuthenticated(),
		Voices:        slices.Clone(s.voices),
		Projects:      slices.Clone(s.projects),
		Selected:      selected,
		StatusMessage: s.status,
		Submitting:    s.submitting,
	}
}

// Start loads the catalog and history when the store was hydrated with a
// token. Failures are logged only.
func (s *Shell) Start(ctx context.Context) {
	if !s.auth.IsAuthenticated() {
		return
	}

	s.loadAll(ctx)
}

// loadAll fetches voices and history concurrently. Each side fails on its
// own; neither cancels the other.
func (s *Shell) loadAll(ctx context.Context) {
	var g errgroup.Group

	g.Go(func() error {
		_ = s.LoadVoices(ctx)
		return nil
	})
	g.Go(func() error {
		_ = s.LoadProjects(ctx)
		return nil
	})

	_ = g.Wait()
}

// LoadVoices replaces the voice catalog. On failure the error is logged and
// the previous catalog kept.
func (s *Shell) LoadVoices(ctx context.Context) error {
	token, ok := s.auth.Token()
	if !ok {
		return ErrNotAuthenticated
	}

	voices, err := s.client.ListVoices(ctx, token)
	if err != nil {
		s.logger.Error("failed to load voices", "error", err)
		return err
	}

	s.mu.Lock()
	s.voices = voices
	s.mu.Unlock()

	return nil
}

// LoadProjects replaces the project history. On failure the error is
// logged and the previous history kept.
func (s *Shell) LoadProjects(ctx context.Context) error {
	token, ok := s.auth.Token()
	if !ok {
		return ErrNotAuthenticated
	}

	projects, err := s.client.ListProjects(ctx, token)
	if err != nil {
		s.logger.Error("failed to load projects", "error", err)
		return err
	}

	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()

	return nil
}

// SelectProject fetches a project's detail and makes it the selection.
func (s *Shell) SelectProject(ctx context.Context, id int64) error {
	token, ok := s.auth.Token()
	if !ok {
		return ErrNotAuthenticated
	}

	detail, err := s.client.GetProject(ctx, token, id)
	if err != nil {
		s.logger.Error("failed to load project", "id", id, "error", err)
		return err
	}

	s.setSelected(detail)

	return nil
}

// ClearStatus drops the current status message.
func (s *Shell) ClearStatus() {
	s.setStatus("")
}

func (s *Shell) setStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
}

// setStatusFor sets the status only while token is still the logged-in one.
func (s *Shell) setStatusFor(token, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sameSession(token) {
		return false
	}

	s.status = msg

	return true
}

// sameSession reports whether token is the current one.
func (s *Shell) sameSession(token string) bool {
	current, ok := s.auth.Token()
	return ok && current == token
}

func (s *Shell) setSelected(detail api.ProjectDetail) {
	s.mu.Lock()
	s.selected = &detail
	s.mu.Unlock()
}
