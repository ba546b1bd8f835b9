package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/alkime/voiceover/internal/api"
	"github.com/alkime/voiceover/internal/authstore"
	"github.com/alkime/voiceover/internal/config"
	"github.com/alkime/voiceover/internal/logger"
	"github.com/alkime/voiceover/internal/narration"
	"github.com/alkime/voiceover/internal/workdir"
	"github.com/spf13/afero"
)

// CLI defines the voiceover command structure.
type CLI struct {
	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"withargs" help:"Launch the terminal UI"`

	// Account
	Signup SignupCmd `cmd:"" help:"Create an account"`
	Login  LoginCmd  `cmd:"" help:"Log in and remember the session"`
	Logout LogoutCmd `cmd:"" help:"Forget the stored session"`
	Whoami WhoamiCmd `cmd:"" help:"Show the logged-in account"`

	// Narration
	Voices   VoicesCmd   `cmd:"" help:"List the voice catalog"`
	Projects ProjectsCmd `cmd:"" help:"List your narration projects"`
	Show     ShowCmd     `cmd:"" help:"Show a project with its source text"`
	Create   CreateCmd   `cmd:"" help:"Request a new narration"`
	Download DownloadCmd `cmd:"" help:"Save a project's audio"`

	// Audio
	Play    PlayCmd    `cmd:"" help:"Play a project's audio"`
	Devices DevicesCmd `cmd:"" help:"List audio output devices"`
}

// App carries what every command needs. Commands receive it from kong.
type App struct {
	cfg    *config.Config
	fs     afero.Fs
	stdout io.Writer
	stdin  *os.File
	logger *slog.Logger
}

// Client builds an API client for the configured base address.
func (a *App) Client() (*api.Client, error) {
	base, err := a.cfg.ResolveBaseURL()
	if err != nil {
		return nil, err
	}

	return api.New(base,
		api.WithTimeout(a.cfg.HTTPTimeout),
		api.WithLogger(a.logger),
	)
}

// AuthStore opens the configured token store and hydrates it.
func (a *App) AuthStore() (*authstore.Store, error) {
	var kv authstore.KV

	switch a.cfg.TokenStore {
	case config.TokenStoreKeyring:
		kv = authstore.KeyringKV{}
	case config.TokenStoreMemory:
		kv = authstore.NewMemoryKV()
	default:
		dir, err := workdir.StateDir(a.cfg.StateDir)
		if err != nil {
			return nil, err
		}

		if err := workdir.Prep(a.fs, dir); err != nil {
			return nil, fmt.Errorf("failed to prepare state directory: %w", err)
		}

		path, err := workdir.AuthPath(a.cfg.StateDir)
		if err != nil {
			return nil, err
		}

		kv = authstore.NewFileKV(a.fs, path)
	}

	store := authstore.New(kv)
	store.Load()

	return store, nil
}

// Shell wires a narration shell over the client and token store.
func (a *App) Shell() (*narration.Shell, error) {
	client, err := a.Client()
	if err != nil {
		return nil, err
	}

	store, err := a.AuthStore()
	if err != nil {
		return nil, err
	}

	return narration.New(client, store,
		narration.WithFs(a.fs),
		narration.WithLogger(a.logger),
		narration.WithPollPolicy(narration.PollPolicy{
			Interval: a.cfg.PollInterval,
			Attempts: a.cfg.PollAttempts,
		}),
	), nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "voiceover: %v\n", err)
		os.Exit(1)
	}

	// Commands log to stderr; the TUI swaps in a log file.
	log := logger.SetupLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &App{
		cfg:    cfg,
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		stdin:  os.Stdin,
		logger: log,
	}

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	kctx := kong.Parse(cli,
		kong.Name("voiceover"),
		kong.Description("Turn manuscripts into narrated audio."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(app),
	)

	err = kctx.Run()
	kctx.FatalIfErrorf(err)
}
