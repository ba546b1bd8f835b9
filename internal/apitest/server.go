// Package apitest provides a fake of the narration API. It speaks the same
// wire format as the real service and lets tests script project lifecycles
// and failures. cmd/mockapi serves it standalone for local development.
package apitest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alkime/voiceover/internal/api"
	"github.com/alkime/voiceover/internal/audio"
	"github.com/gin-gonic/gin"
)

// Never keeps projects processing forever.
const Never = -1

// RecordedForm is the last multipart payload received on POST /projects.
type RecordedForm struct {
	Fields          map[string]string
	HasFile         bool
	FileName        string
	FileContentType string
	FileData        []byte
}

type routeError struct {
	status int
	detail string
}

type project struct {
	detail api.ProjectDetail
	polls  int
}

// Server is a fake narration API mounted under /api.
type Server struct {
	mu     sync.Mutex
	router *gin.Engine
	srv    *httptest.Server

	users    map[string]string // email -> password
	tokens   map[string]string // token -> email
	voices   []api.Voice
	projects map[int64]*project
	order    []int64
	nextID   int64

	token        string
	resolveAfter int
	failMessage  string
	audio        []byte
	registration bool
	routeErrors  map[string]routeError
	calls        map[string]int
	lastForm     *RecordedForm
	now          func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithToken makes every login return token.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithVoices replaces the voice catalog.
func WithVoices(voices ...api.Voice) Option {
	return func(s *Server) { s.voices = voices }
}

// ResolveAfter makes project detail report "processing" for the first n
// fetches and resolve on fetch n+1. Never keeps it processing.
func ResolveAfter(n int) Option {
	return func(s *Server) { s.resolveAfter = n }
}

// FailGeneration resolves projects as failed with msg instead of completed.
func FailGeneration(msg string) Option {
	return func(s *Server) { s.failMessage = msg }
}

// WithAudio sets the bytes served for generated audio.
func WithAudio(data []byte) Option {
	return func(s *Server) { s.audio = data }
}

// DisableRegistration makes signup respond 403.
func DisableRegistration() Option {
	return func(s *Server) { s.registration = false }
}

// ErrorOn makes route (e.g. "GET /projects/:id") fail with status and detail.
// An empty detail sends a body without one.
func ErrorOn(route string, status int, detail string) Option {
	return func(s *Server) { s.routeErrors[route] = routeError{status: status, detail: detail} }
}

// New starts a fake API server on a loopback port. Close it when done.
func New(opts ...Option) *Server {
	gin.SetMode(gin.TestMode)

	s := NewUnstarted(opts...)
	s.srv = httptest.NewServer(s.router)

	return s
}

// NewUnstarted builds the fake without listening. Serve Router() yourself;
// BaseURL, Origin and Close are only valid on servers made by New.
func NewUnstarted(opts ...Option) *Server {
	s := &Server{
		users:        map[string]string{},
		tokens:       map[string]string{},
		projects:     map[int64]*project{},
		nextID:       1,
		resolveAfter: 0,
		registration: true,
		routeErrors:  map[string]routeError{},
		calls:        map[string]int{},
		now:          func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) },
		voices: []api.Voice{
			{ID: 1, Name: "Aria", Language: "en", Accent: "US", Gender: "female", Style: "narration"},
			{ID: 2, Name: "Bruno", Language: "de", Gender: "male", Style: "calm"},
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.audio == nil {
		s.audio = defaultAudio()
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.countCalls(), s.injectErrors())

	apiGroup := router.Group("/api")
	apiGroup.POST("/auth/signup", s.handleSignup)
	apiGroup.POST("/auth/login", s.handleLogin)

	authed := apiGroup.Group("", s.requireAuth())
	authed.GET("/voices", s.handleVoices)
	authed.GET("/projects", s.handleListProjects)
	authed.POST("/projects", s.handleCreateProject)
	authed.GET("/projects/:id", s.handleGetProject)
	authed.GET("/projects/:id/audio", s.handleAudio)

	s.router = router

	return s
}

// BaseURL returns the API base address, including the /api prefix.
func (s *Server) BaseURL() string {
	return s.srv.URL + "/api"
}

// Origin returns the scheme and host the server listens on.
func (s *Server) Origin() string {
	return s.srv.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// Router exposes the handler for direct ServeHTTP use.
func (s *Server) Router() http.Handler {
	return s.router
}

// AddUser registers an account.
func (s *Server) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[email] = password
}

// IssueToken registers token as a valid session for email.
func (s *Server) IssueToken(token, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = email
}

// AddProject stores a project owned by no one in particular and returns it.
func (s *Server) AddProject(title string, status api.ProjectStatus) api.ProjectDetail {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.newProject(title, "seeded text", "")
	p.detail.Status = status
	if status == api.StatusCompleted {
		p.detail.AudioURL = fmt.Sprintf("/projects/%d/audio", p.detail.ID)
	}

	return p.detail
}

// Calls returns how many requests hit route, e.g. "GET /projects/:id".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[route]
}

// LastForm returns the last multipart payload posted to /projects.
func (s *Server) LastForm() *RecordedForm {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastForm
}

// Audio returns the bytes served as generated audio.
func (s *Server) Audio() []byte {
	return s.audio
}

func (s *Server) countCalls() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + strings.TrimPrefix(c.FullPath(), "/api")

		s.mu.Lock()
		s.calls[route]++
		s.mu.Unlock()

		c.Next()
	}
}

func (s *Server) injectErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + strings.TrimPrefix(c.FullPath(), "/api")

		s.mu.Lock()
		rerr, ok := s.routeErrors[route]
		s.mu.Unlock()

		if !ok {
			c.Next()
			return
		}

		if rerr.detail == "" {
			c.AbortWithStatusJSON(rerr.status, gin.H{"error": "boom"})
			return
		}

		c.AbortWithStatusJSON(rerr.status, gin.H{"detail": rerr.detail})
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")

		s.mu.Lock()
		_, known := s.tokens[token]
		s.mu.Unlock()

		if !ok || !known {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}

		c.Next()
	}
}

func (s *Server) handleSignup(c *gin.Context) {
	var creds api.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "invalid body"}}})
		return
	}

	if len(creds.Password) < 6 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail": []gin.H{{"loc": []string{"body", "password"}, "msg": "String should have at least 6 characters"}},
		})

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registration {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Registration is disabled"})
		return
	}

	if _, exists := s.users[creds.Email]; exists {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered"})
		return
	}

	s.users[creds.Email] = creds.Password

	c.JSON(http.StatusCreated, gin.H{
		"id":         len(s.users),
		"email":      creds.Email,
		"created_at": s.now(),
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var creds api.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "invalid body"}}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	password, ok := s.users[creds.Email]
	if !ok || password != creds.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect email or password"})
		return
	}

	token := s.token
	if token == "" {
		token = "token-" + strconv.Itoa(len(s.tokens)+1)
	}

	s.tokens[token] = creds.Email

	c.JSON(http.StatusOK, api.Token{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleVoices(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, s.voices)
}

func (s *Server) handleListProjects(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]api.ProjectSummary, 0, len(s.order))
	// newest first
	for i := len(s.order) - 1; i >= 0; i-- {
		summaries = append(summaries, s.projects[s.order[i]].detail.ProjectSummary)
	}

	c.JSON(http.StatusOK, summaries)
}

func (s *Server) handleCreateProject(c *gin.Context) {
	form, err := recordForm(c)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastForm = form

	text := strings.TrimSpace(form.Fields["text"])
	filename := ""
	if form.HasFile {
		filename = form.FileName
		text = strings.TrimSpace(string(form.FileData))
	}

	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No text provided for narration"})
		return
	}

	p := s.newProject(form.Fields["title"], text, filename)
	p.detail.Language = form.Fields["language"]
	p.detail.Style = form.Fields["style"]

	if v, err := strconv.ParseInt(form.Fields["voice_id"], 10, 64); err == nil {
		p.detail.VoiceID = &v
	}

	c.JSON(http.StatusCreated, p.detail)
}

func (s *Server) handleGetProject(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.lookup(c)
	if !ok {
		return
	}

	if p.detail.Status.IsActive() {
		if s.resolveAfter == Never || p.polls < s.resolveAfter {
			p.polls++
			p.detail.Status = api.StatusProcessing
		} else {
			s.resolve(p)
		}
	}

	c.JSON(http.StatusOK, p.detail)
}

func (s *Server) handleAudio(c *gin.Context) {
	s.mu.Lock()
	p, ok := s.lookup(c)
	s.mu.Unlock()

	if !ok {
		return
	}

	if p.detail.AudioURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Audio not available yet"})
		return
	}

	c.Data(http.StatusOK, "audio/wav", s.audio)
}

// lookup resolves the :id param; it writes the 404 itself. Caller holds mu.
func (s *Server) lookup(c *gin.Context) (*project, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Project not found"})
		return nil, false
	}

	p, ok := s.projects[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Project not found"})
		return nil, false
	}

	return p, true
}

// newProject stores a pending project. Caller holds mu.
func (s *Server) newProject(title, text, filename string) *project {
	id := s.nextID
	s.nextID++

	now := s.now()
	p := &project{detail: api.ProjectDetail{
		ProjectSummary: api.ProjectSummary{
			ID:        id,
			Title:     title,
			Status:    api.StatusPending,
			CreatedAt: api.NewTimestamp(now),
			UpdatedAt: api.NewTimestamp(now),
		},
		SourceText:     text,
		SourceFilename: filename,
	}}

	s.projects[id] = p
	s.order = append(s.order, id)

	return p
}

// resolve moves p to its terminal state. Caller holds mu.
func (s *Server) resolve(p *project) {
	p.detail.UpdatedAt = api.NewTimestamp(s.now().Add(time.Duration(p.polls+1) * time.Second))

	if s.failMessage != "" {
		p.detail.Status = api.StatusFailed
		p.detail.ErrorMessage = s.failMessage

		return
	}

	p.detail.Status = api.StatusCompleted
	p.detail.AudioURL = fmt.Sprintf("/projects/%d/audio", p.detail.ID)
}

func recordForm(c *gin.Context) (*RecordedForm, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("expected multipart form: %w", err)
	}

	form := &RecordedForm{Fields: map[string]string{}}
	for name, values := range mf.Value {
		if len(values) > 0 {
			form.Fields[name] = values[0]
		}
	}

	files := mf.File["file"]
	if len(files) == 0 {
		return form, nil
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	form.HasFile = true
	form.FileName = fh.Filename
	form.FileContentType = fh.Header.Get("Content-Type")
	form.FileData = data

	return form, nil
}

// defaultAudio is a short 16 kHz mono tone.
func defaultAudio() []byte {
	clip := audio.Tone(16000, 440, 200*time.Millisecond)

	var buf bytes.Buffer
	if err := audio.EncodeWAV(&buf, clip); err != nil {
		panic(fmt.Sprintf("apitest: failed to build audio: %v", err))
	}

	return buf.Bytes()
}
