package main

import (
	"context"
	"fmt"

	"github.com/alkime/voiceover/internal/audio"
	"github.com/alkime/voiceover/internal/logger"
	"github.com/alkime/voiceover/internal/narration"
	"github.com/alkime/voiceover/internal/tui"
	"github.com/alkime/voiceover/internal/workdir"
	tea "github.com/charmbracelet/bubbletea"
)

// TUICmd is the default command that runs the TUI.
type TUICmd struct {
	DownloadDir string `flag:"" optional:"" help:"Where downloads are saved (default: ~/.voiceover/downloads)"`
	Signup      bool   `flag:"" help:"Open the signup form instead of login"`
}

// Run executes the TUI command.
func (c *TUICmd) Run(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The TUI owns the terminal, so logs go to a rotating file.
	logPath, err := workdir.LogPath(app.cfg.StateDir)
	if err != nil {
		return err
	}

	stateDir, err := workdir.StateDir(app.cfg.StateDir)
	if err != nil {
		return err
	}

	if err := workdir.Prep(app.fs, stateDir); err != nil {
		return fmt.Errorf("failed to prepare state directory: %w", err)
	}

	logFile := logger.FileWriter(logPath)
	defer logFile.Close()

	app.logger = logger.SetupLogger(app.cfg, logFile)

	downloadDir := c.DownloadDir
	if downloadDir == "" {
		downloadDir, err = workdir.DownloadDir(app.cfg.DownloadDir)
		if err != nil {
			return err
		}
	}

	shell, err := app.Shell()
	if err != nil {
		return err
	}

	if c.Signup {
		shell.SetMode(narration.ModeSignup)
	}

	app.logger.Info("starting tui", "api", app.cfg.APIBaseURL, "origin", app.cfg.Origin)

	p := tea.NewProgram(tui.New(ctx, tui.Config{
		Shell:       shell,
		Fs:          app.fs,
		DownloadDir: downloadDir,
		NewOutput:   audio.NewOutput,
		Cancel:      cancel,
	}), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	fmt.Fprintln(app.stdout, "bye!")

	return nil
}
