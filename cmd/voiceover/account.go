package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alkime/voiceover/internal/narration"
	"github.com/charmbracelet/x/term"
)

// credentialFlags are shared by signup and login.
type credentialFlags struct {
	Email    string `arg:"" help:"Account email address"`
	Password string `flag:"" env:"VOICEOVER_PASSWORD" help:"Account password (prompted when omitted)"`
}

// password returns the flag value or asks for it without echo.
func (c credentialFlags) password(app *App) (string, error) {
	if c.Password != "" {
		return c.Password, nil
	}

	fd := app.stdin.Fd()
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(app.stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(app.stdout, "Password: ")

	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(app.stdout)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(raw), nil
}

// SignupCmd creates an account.
type SignupCmd struct {
	credentialFlags `embed:""`
}

// Run executes the signup command.
func (c *SignupCmd) Run(ctx context.Context, app *App) error {
	return submitAuth(ctx, app, narration.ModeSignup, c.credentialFlags)
}

// LoginCmd logs in and stores the session.
type LoginCmd struct {
	credentialFlags `embed:""`
}

// Run executes the login command.
func (c *LoginCmd) Run(ctx context.Context, app *App) error {
	return submitAuth(ctx, app, narration.ModeLogin, c.credentialFlags)
}

func submitAuth(ctx context.Context, app *App, mode narration.Mode, creds credentialFlags) error {
	password, err := creds.password(app)
	if err != nil {
		return err
	}

	shell, err := app.Shell()
	if err != nil {
		return err
	}

	shell.SetMode(mode)

	if err := shell.SubmitAuth(ctx, creds.Email, password); err != nil {
		return errors.New(shell.State().StatusMessage)
	}

	fmt.Fprintln(app.stdout, shell.State().StatusMessage)

	return nil
}

// LogoutCmd forgets the stored session.
type LogoutCmd struct{}

// Run executes the logout command.
func (c *LogoutCmd) Run(app *App) error {
	shell, err := app.Shell()
	if err != nil {
		return err
	}

	if err := shell.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	fmt.Fprintln(app.stdout, "Logged out.")

	return nil
}

// WhoamiCmd prints the logged-in account.
type WhoamiCmd struct{}

// Run executes the whoami command.
func (c *WhoamiCmd) Run(app *App) error {
	store, err := app.AuthStore()
	if err != nil {
		return err
	}

	st := store.Snapshot()
	if !st.IsAuthenticated() {
		fmt.Fprintln(app.stdout, "Not logged in.")
		return nil
	}

	fmt.Fprintln(app.stdout, st.Email)

	return nil
}

// loggedIn returns a shell that holds a session, or explains how to get one.
func loggedIn(app *App) (*narration.Shell, error) {
	shell, err := app.Shell()
	if err != nil {
		return nil, err
	}

	if !shell.State().Authenticated {
		return nil, errors.New("not logged in: run 'voiceover login <email>' first")
	}

	return shell, nil
}
