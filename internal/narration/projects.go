package narration

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/alkime/voiceover/internal/api"
	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/afero"
)

// AudioExt is the extension downloads are saved with.
const AudioExt = ".wav"

// SubmitProject posts form, selects the created project, polls it to a
// resolution and refreshes the history. The returned detail is the created
// record; use State().Selected for the latest one.
func (s *Shell) SubmitProject(ctx context.Context, form api.ProjectForm) (api.ProjectDetail, PollOutcome, error) {
	token, ok := s.auth.Token()
	if !ok {
		return api.ProjectDetail{}, PollAborted, ErrNotAuthenticated
	}

	if err := form.Validate(); err != nil {
		s.setStatus(err.Error())
		return api.ProjectDetail{}, PollAborted, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	s.mu.Lock()
	s.submitting = true
	s.status = MsgUploading
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	created, err := s.client.CreateProject(ctx, token, form)
	if err != nil {
		s.setStatus(api.DetailOr(err, MsgCreateFailed))
		return api.ProjectDetail{}, PollAborted, err
	}

	s.mu.Lock()
	if s.sameSession(token) {
		s.selected = &created
		s.status = MsgRequested
	}
	s.mu.Unlock()

	outcome := s.Poll(ctx, created.ID)
	_ = s.LoadProjects(ctx)

	return created, outcome, nil
}

// Poll fetches the project until it leaves pending/processing or the
// attempt budget runs out. A failed fetch ends the sequence at once. If the
// user logs out (or in as someone else) meanwhile, the result is dropped
// and PollCanceled returned.
func (s *Shell) Poll(ctx context.Context, id int64) PollOutcome {
	token, ok := s.auth.Token()
	if !ok {
		return PollAborted
	}

	b := s.policy.backOff(ctx)
	attempt := 0

	for {
		attempt++

		detail, err := s.client.GetProject(ctx, token, id)
		if err != nil {
			s.logger.Error("polling failed", "id", id, "attempt", attempt, "error", err)

			if !s.setStatusFor(token, MsgStillWorking) {
				return PollCanceled
			}

			return PollAborted
		}

		if !detail.Status.IsActive() {
			return s.resolve(token, detail)
		}

		next := b.NextBackOff()
		if next == backoff.Stop {
			break
		}

		if err := s.wait(ctx, next); err != nil {
			s.logger.Debug("polling canceled", "id", id, "attempt", attempt)
			return PollCanceled
		}
	}

	if ctx.Err() != nil || !s.setStatusFor(token, MsgStillWorking) {
		return PollCanceled
	}

	return PollExhausted
}

func (s *Shell) resolve(token string, detail api.ProjectDetail) PollOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sameSession(token) {
		s.logger.Debug("dropping poll result from a previous session", "id", detail.ID)
		return PollCanceled
	}

	s.selected = &detail

	if detail.Status == api.StatusCompleted {
		s.status = MsgReady
		return PollCompleted
	}

	if detail.ErrorMessage != "" {
		s.status = msgGenerationFailed + detail.ErrorMessage
	}

	return PollFailed
}

// FetchAudio downloads a project's generated audio.
func (s *Shell) FetchAudio(ctx context.Context, project api.ProjectSummary) ([]byte, error) {
	token, ok := s.auth.Token()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	if project.AudioURL == "" {
		return nil, ErrNoAudio
	}

	data, _, err := s.client.DownloadAudio(ctx, token, project.AudioURL)
	if err != nil {
		s.logger.Error("download failed", "id", project.ID, "error", err)
		return nil, err
	}

	return data, nil
}

// DownloadAudio saves a project's audio as <dir>/<title>.wav and returns
// the path written. Failures are logged and never touch shell state.
func (s *Shell) DownloadAudio(ctx context.Context, project api.ProjectSummary, dir string) (string, error) {
	data, err := s.FetchAudio(ctx, project)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, AudioFilename(project, AudioExt))

	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("download failed", "id", project.ID, "error", err)
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		s.logger.Error("download failed", "id", project.ID, "error", err)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Info("audio saved", "id", project.ID, "path", path, "bytes", len(data))

	return path, nil
}

// PreviewURL returns the address the audio can be streamed from. The
// update time is appended so a regenerated file is not served from cache.
func (s *Shell) PreviewURL(project api.ProjectSummary) (string, error) {
	if project.AudioURL == "" {
		return "", ErrNoAudio
	}

	raw, err := s.client.ResolveURL(project.AudioURL)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid audio url %q: %w", raw, err)
	}

	q := u.Query()
	q.Set("t", project.UpdatedAt.UTC().Format(time.RFC3339Nano))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// AudioFilename turns a project title into a safe file name with ext.
func AudioFilename(project api.ProjectSummary, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, strings.ContainsRune(`<>:"/\|?*`, r):
			return '_'
		default:
			return r
		}
	}, project.Title)

	name = strings.Trim(strings.TrimSpace(name), ".")
	if name == "" {
		name = fmt.Sprintf("narration-%d", project.ID)
	}

	return name + ext
}
