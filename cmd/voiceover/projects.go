package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/alkime/voiceover/internal/api"
	"github.com/alkime/voiceover/internal/audio"
	"github.com/alkime/voiceover/internal/narration"
	"github.com/alkime/voiceover/internal/output"
	"github.com/alkime/voiceover/internal/workdir"
	"github.com/spf13/afero"
)

// formatFlag selects how records are printed.
type formatFlag struct {
	Format string `flag:"" short:"o" default:"table" enum:"table,json,yaml,csv" help:"Output format: table, json, yaml or csv"`
}

func (f formatFlag) format() output.Format {
	format, err := output.ParseFormat(f.Format)
	if err != nil {
		return output.FormatTable
	}

	return format
}

// VoicesCmd lists the voice catalog.
type VoicesCmd struct {
	formatFlag `embed:""`
}

// Run executes the voices command.
func (c *VoicesCmd) Run(ctx context.Context, app *App) error {
	shell, err := loggedIn(app)
	if err != nil {
		return err
	}

	if err := shell.LoadVoices(ctx); err != nil {
		return err
	}

	return output.Voices(app.stdout, c.format(), shell.State().Voices)
}

// ProjectsCmd lists the project history.
type ProjectsCmd struct {
	formatFlag `embed:""`
}

// Run executes the projects command.
func (c *ProjectsCmd) Run(ctx context.Context, app *App) error {
	shell, err := loggedIn(app)
	if err != nil {
		return err
	}

	if err := shell.LoadProjects(ctx); err != nil {
		return err
	}

	return output.Projects(app.stdout, c.format(), shell.State().Projects)
}

// ShowCmd prints one project with its source text.
type ShowCmd struct {
	ID int64 `arg:"" help:"Project id"`

	formatFlag `embed:""`
}

// Run executes the show command.
func (c *ShowCmd) Run(ctx context.Context, app *App) error {
	shell, err := loggedIn(app)
	if err != nil {
		return err
	}

	project, err := selectProject(ctx, shell, c.ID)
	if err != nil {
		return err
	}

	return output.Project(app.stdout, c.format(), project)
}

// CreateCmd submits a narration request and, unless told not to, waits for
// it to finish.
type CreateCmd struct {
	Title    string `flag:"" required:"" help:"Project title"`
	Text     string `flag:"" optional:"" help:"Text to narrate"`
	File     string `flag:"" optional:"" type:"existingfile" help:"Document to narrate (.txt, .pdf or .docx)"`
	Voice    string `flag:"" optional:"" help:"Voice id (default: chosen by the service)"`
	Language string `flag:"" optional:"" help:"Language code, e.g. en"`
	Style    string `flag:"" optional:"" help:"Narration style"`
	NoWait   bool   `flag:"" name:"no-wait" help:"Return right after the request is accepted"`

	formatFlag `embed:""`
}

// Run executes the create command.
func (c *CreateCmd) Run(ctx context.Context, app *App) error {
	form := api.ProjectForm{
		Title:    c.Title,
		VoiceID:  c.Voice,
		Language: c.Language,
		Style:    c.Style,
		Text:     c.Text,
	}

	if c.File != "" {
		if err := form.AttachFile(app.fs, c.File); err != nil {
			return err
		}
	}

	if c.Text == "" && c.File == "" {
		return errors.New("either --text or --file is required")
	}

	if c.NoWait {
		return c.submitOnly(ctx, app, form)
	}

	shell, err := loggedIn(app)
	if err != nil {
		return err
	}

	created, outcome, err := shell.SubmitProject(ctx, form)
	if err != nil {
		return errors.New(shell.State().StatusMessage)
	}

	app.logger.Debug("narration finished", "id", created.ID, "outcome", outcome.String())

	st := shell.State()
	if st.Selected != nil {
		if err := output.Project(app.stdout, c.format(), *st.Selected); err != nil {
			return err
		}
	}

	switch outcome {
	case narration.PollCompleted:
		fmt.Fprintln(app.stdout, st.StatusMessage)
		return nil
	case narration.PollExhausted, narration.PollAborted:
		fmt.Fprintf(app.stdout, "Still working. Check again with 'voiceover show %d'.\n", created.ID)
		return nil
	case narration.PollCanceled:
		return ctx.Err()
	default:
		return fmt.Errorf("narration %d failed: %s", created.ID, st.StatusMessage)
	}
}

func (c *CreateCmd) submitOnly(ctx context.Context, app *App, form api.ProjectForm) error {
	if err := form.Validate(); err != nil {
		return err
	}

	store, err := app.AuthStore()
	if err != nil {
		return err
	}

	token, ok := store.Token()
	if !ok {
		return errors.New("not logged in: run 'voiceover login <email>' first")
	}

	client, err := app.Client()
	if err != nil {
		return err
	}

	created, err := client.CreateProject(ctx, token, form)
	if err != nil {
		return errors.New(api.DetailOr(err, narration.MsgCreateFailed))
	}

	return output.Project(app.stdout, c.format(), created)
}

// DownloadCmd saves a project's audio.
type DownloadCmd struct {
	ID  int64  `arg:"" help:"Project id"`
	Out string `flag:"" optional:"" help:"Directory to save into (default: the download directory)"`
	MP3 bool   `flag:"" name:"mp3" help:"Convert to MP3 before saving"`
}

// Run executes the download command.
func (c *DownloadCmd) Run(ctx context.Context, app *App) error {
	shell, err := loggedIn(app)
	if err != nil {
		return err
	}

	dir := c.Out
	if dir == "" {
		if dir, err = workdir.DownloadDir(app.cfg.DownloadDir); err != nil {
			return err
		}
	}

	project, err := selectProject(ctx, shell, c.ID)
	if err != nil {
		return err
	}

	if !c.MP3 {
		path, err := shell.DownloadAudio(ctx, project.ProjectSummary, dir)
		if err != nil {
			return err
		}

		fmt.Fprintf(app.stdout, "Saved %s\n", path)

		return nil
	}

	path, err := saveMP3(ctx, app, shell, project.ProjectSummary, dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Saved %s\n", path)

	return nil
}

func saveMP3(
	ctx context.Context,
	app *App,
	shell *narration.Shell,
	project api.ProjectSummary,
	dir string,
) (string, error) {
	clip, err := fetchClip(ctx, shell, project)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := audio.EncodeMP3(&buf, clip); err != nil {
		return "", fmt.Errorf("failed to encode mp3: %w", err)
	}

	if err := workdir.Prep(app.fs, dir); err != nil {
		return "", err
	}

	path := filepath.Join(dir, narration.AudioFilename(project, ".mp3"))
	if err := afero.WriteFile(app.fs, path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}

func selectProject(ctx context.Context, shell *narration.Shell, id int64) (api.ProjectDetail, error) {
	if err := shell.SelectProject(ctx, id); err != nil {
		return api.ProjectDetail{}, errors.New(api.DetailOr(err, err.Error()))
	}

	return *shell.State().Selected, nil
}

func fetchClip(ctx context.Context, shell *narration.Shell, project api.ProjectSummary) (audio.Clip, error) {
	if !project.HasAudio() {
		return audio.Clip{}, fmt.Errorf("project %d: %w (status %s)", project.ID, narration.ErrNoAudio, project.Status)
	}

	data, err := shell.FetchAudio(ctx, project)
	if err != nil {
		return audio.Clip{}, err
	}

	clip, err := audio.DecodeWAV(bytes.NewReader(data))
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to decode audio: %w", err)
	}

	return clip, nil
}
