package api

// ProjectStatus is the server-driven lifecycle stage of a narration project.
type ProjectStatus string

const (
	StatusPending    ProjectStatus = "pending"
	StatusProcessing ProjectStatus = "processing"
	StatusCompleted  ProjectStatus = "completed"
	StatusFailed     ProjectStatus = "failed"
)

// IsActive reports whether the server is still working on the project.
func (s ProjectStatus) IsActive() bool {
	return s == StatusPending || s == StatusProcessing
}

// IsDone reports whether the project reached a terminal state.
func (s ProjectStatus) IsDone() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Voice is an entry of the server's voice catalog.
type Voice struct {
	ID       int64  `json:"id" csv:"id" yaml:"id"`
	Name     string `json:"name" csv:"name" yaml:"name"`
	Language string `json:"language" csv:"language" yaml:"language"`
	Accent   string `json:"accent,omitempty" csv:"accent,omitempty" yaml:"accent,omitempty"`
	Gender   string `json:"gender,omitempty" csv:"gender,omitempty" yaml:"gender,omitempty"`
	Style    string `json:"style,omitempty" csv:"style,omitempty" yaml:"style,omitempty"`
	Provider string `json:"provider,omitempty" csv:"provider,omitempty" yaml:"provider,omitempty"`
}

// ProjectSummary is a narration project as listed in the history.
type ProjectSummary struct {
	ID           int64         `json:"id" csv:"id" yaml:"id"`
	Title        string        `json:"title" csv:"title" yaml:"title"`
	Status       ProjectStatus `json:"status" csv:"status" yaml:"status"`
	Language     string        `json:"language,omitempty" csv:"language,omitempty" yaml:"language,omitempty"`
	Style        string        `json:"style,omitempty" csv:"style,omitempty" yaml:"style,omitempty"`
	VoiceID      *int64        `json:"voice_id,omitempty" csv:"voice_id,omitempty" yaml:"voice_id,omitempty"`
	AudioURL     string        `json:"audio_url,omitempty" csv:"audio_url,omitempty" yaml:"audio_url,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty" csv:"error_message,omitempty" yaml:"error_message,omitempty"`
	CreatedAt    Timestamp     `json:"created_at" csv:"created_at" yaml:"created_at"`
	UpdatedAt    Timestamp     `json:"updated_at" csv:"updated_at" yaml:"updated_at"`
}

// HasAudio reports whether generated audio can be downloaded.
func (p ProjectSummary) HasAudio() bool {
	return p.AudioURL != "" && p.Status == StatusCompleted
}

// ProjectDetail is a project with its full source text.
type ProjectDetail struct {
	ProjectSummary `yaml:",inline"`

	SourceText     string `json:"source_text" csv:"source_text" yaml:"source_text"`
	SourceFilename string `json:"source_filename,omitempty" csv:"source_filename,omitempty" yaml:"source_filename,omitempty"`
}

// Credentials is the body of the signup and login requests.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
