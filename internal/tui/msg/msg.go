// Package msg defines the messages views send to the root TUI model.
package msg

import (
	"github.com/alkime/voiceover/internal/api"
)

// SubmitAuthMsg asks to log in or sign up, depending on the current mode.
type SubmitAuthMsg struct {
	Email    string
	Password string
}

// ToggleModeMsg switches the auth form between login and signup.
type ToggleModeMsg struct{}

// SubmitProjectMsg asks to create a narration. FilePath, when set, is read
// and attached before sending.
type SubmitProjectMsg struct {
	Form     api.ProjectForm
	FilePath string
}

// RefreshMsg asks to reload the project history.
type RefreshMsg struct{}

// SelectProjectMsg asks to load a project's detail.
type SelectProjectMsg struct {
	ID int64
}

// DownloadMsg asks to save a project's audio.
type DownloadMsg struct {
	Project api.ProjectSummary
}

// PreviewMsg asks to play a project's audio.
type PreviewMsg struct {
	Project api.ProjectSummary
}

// ClosePreviewMsg stops playback and returns to the dashboard.
type ClosePreviewMsg struct{}

// LogoutMsg asks to forget the stored credentials.
type LogoutMsg struct{}
