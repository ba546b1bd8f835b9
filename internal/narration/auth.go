package narration

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/alkime/voiceover/internal/api"
)

// MinPasswordLength matches the service's password rule.
const MinPasswordLength = 6

// ErrInvalidInput wraps local form validation failures.
var ErrInvalidInput = errors.New("invalid input")

// Mode returns the current auth form mode.
func (s *Shell) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode
}

// ToggleMode flips between login and signup.
func (s *Shell) ToggleMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeLogin {
		s.mode = ModeSignup
	} else {
		s.mode = ModeLogin
	}

	return s.mode
}

// SetMode selects the auth form mode.
func (s *Shell) SetMode(m Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// SubmitAuth signs up or logs in depending on the mode. A signup switches
// the form to login without storing anything. A login stores the token
// with the submitted email and then loads voices and history. Every outcome
// is reported through the status message; the returned error is for
// callers that need to branch on it.
func (s *Shell) SubmitAuth(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	creds := api.Credentials{Email: email, Password: password}

	if err := validateCredentials(creds); err != nil {
		s.setStatus(err.Error())
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if s.Mode() == ModeSignup {
		return s.signup(ctx, creds)
	}

	return s.login(ctx, creds)
}

func (s *Shell) signup(ctx context.Context, creds api.Credentials) error {
	if err := s.client.Signup(ctx, creds); err != nil {
		s.setStatus(api.DetailOr(err, MsgAuthFailed))
		return err
	}

	s.mu.Lock()
	s.status = MsgAccountCreated
	s.mode = ModeLogin
	s.mu.Unlock()

	return nil
}

func (s *Shell) login(ctx context.Context, creds api.Credentials) error {
	tok, err := s.client.Login(ctx, creds)
	if err != nil {
		s.setStatus(api.DetailOr(err, MsgAuthFailed))
		return err
	}

	if err := s.auth.SetAuth(tok.AccessToken, creds.Email); err != nil {
		s.logger.Error("failed to persist credentials", "error", err)
		s.setStatus(MsgAuthFailed)

		return err
	}

	s.setStatus(MsgLoggedIn)
	s.loadAll(ctx)

	return nil
}

// Logout forgets the stored credentials and everything loaded with them.
func (s *Shell) Logout() error {
	err := s.auth.ClearAuth()

	s.mu.Lock()
	s.voices = nil
	s.projects = nil
	s.selected = nil
	s.submitting = false
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to clear stored credentials", "error", err)
		return err
	}

	return nil
}

func validateCredentials(creds api.Credentials) error {
	if creds.Email == "" {
		return errors.New("email is required")
	}

	if _, err := mail.ParseAddress(creds.Email); err != nil {
		return fmt.Errorf("invalid email address %q", creds.Email)
	}

	if creds.Password == "" {
		return errors.New("password is required")
	}

	if len(creds.Password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	return nil
}
