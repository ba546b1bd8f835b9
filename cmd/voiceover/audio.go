package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alkime/voiceover/internal/audio"
	"github.com/alkime/voiceover/internal/output"
)

// PlayCmd plays a project's audio on the default output device.
type PlayCmd struct {
	ID int64 `arg:"" help:"Project id"`
}

// Run executes the play command.
func (c *PlayCmd) Run(ctx context.Context, app *App) error {
	shell, err := loggedIn(app)
	if err != nil {
		return err
	}

	project, err := selectProject(ctx, shell, c.ID)
	if err != nil {
		return err
	}

	clip, err := fetchClip(ctx, shell, project.ProjectSummary)
	if err != nil {
		return err
	}

	player, err := audio.NewPlayer(audio.NewOutput(), clip)
	if err != nil {
		return err
	}
	defer player.Close()

	if err := player.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Playing %q (%s)\n", project.Title, clip.Duration().Round(time.Second))

	if err := player.Wait(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// DevicesCmd lists audio output devices.
type DevicesCmd struct {
	formatFlag `embed:""`
}

// Run executes the devices command.
func (c *DevicesCmd) Run(ctx context.Context, app *App) error {
	app.logger.Debug("enumerating audio devices")

	devices, err := audio.EnumerateDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	return output.Devices(app.stdout, c.format(), devices)
}
