// vizchat - Chat with a local vision model about an image.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/vizchat/internal/archive"
	"github.com/jeranaias/vizchat/internal/cli"
	"github.com/jeranaias/vizchat/internal/config"
	"github.com/jeranaias/vizchat/internal/logging"
	"github.com/jeranaias/vizchat/internal/model"
	"github.com/jeranaias/vizchat/internal/ollama"
	"github.com/jeranaias/vizchat/internal/session"
	"github.com/jeranaias/vizchat/internal/transcript"
	"github.com/jeranaias/vizchat/internal/ui/app"
	"github.com/jeranaias/vizchat/internal/ui/components"
	"github.com/jeranaias/vizchat/internal/ui/styles"
	"github.com/jeranaias/vizchat/internal/viewer"
	"github.com/jeranaias/vizchat/internal/worker"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code.
func run(argv []string) int {
	args := cli.NewArgParser(argv)
	cmd := cli.ParseCommand(args)

	// Help and version never need configuration.
	if cmd == cli.CmdHelp || cmd == cli.CmdVersion {
		cli.Run(context.Background(), cmd, args, cli.Deps{})
		return 0
	}

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, closer, err := logging.Open(settings.Log.Path, settings.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		logger = logging.Discard()
	} else {
		defer closer.Close()
	}
	logger.Info("vizchat starting", "version", Version, "ollama", settings.Ollama.URL)

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:       settings.Ollama.URL,
		StreamTimeout: settings.Ollama.StreamTimeout(),
		DefaultModel:  settings.Ollama.DefaultModel,
	})

	deps := cli.Deps{
		Settings: settings,
		Client:   client,
		Store:    config.NewStore(settings.Chat.EnvFile),
		Logger:   logger,
		Out:      os.Stdout,
	}

	if settings.Archive.Enabled {
		a, err := archive.Open(settings.Archive.Path)
		if err != nil {
			// The archive is optional; chatting works without it.
			logger.Warn("archive unavailable", "path", settings.Archive.Path, "error", err)
			fmt.Fprintf(os.Stderr, "Warning: archive unavailable: %v\n", err)
		} else {
			defer a.Close()
			deps.Archive = a
		}
	}

	ctx := context.Background()

	// Terminals that cannot host the TUI get line mode.
	if cmd == cli.CmdTUI && (args.BoolFlag("plain") || !cli.CanRunTUI()) {
		if args.Positional(0) == "" {
			fmt.Fprintln(os.Stderr, "Error: line mode needs an image: vizchat chat IMAGE")
			return 2
		}
		cmd = cli.CmdChat
		args = cli.NewArgParser(append([]string{"chat"}, argv...))
	}

	if cmd != cli.CmdTUI {
		if err := cli.Run(ctx, cmd, args, deps); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := runTUI(ctx, args.Positional(0), deps); err != nil {
		logger.Error("tui exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running vizchat: %v\n", err)
		return 1
	}
	return 0
}

// runTUI wires the session controller, the panes and the image watcher
// into one Bubble Tea program.
func runTUI(ctx context.Context, imagePath string, deps cli.Deps) error {
	settings := deps.Settings
	logger := deps.Logger
	theme := styles.NewTheme()

	persisted := func() string {
		v, err := deps.Store.Load()
		if err != nil {
			logger.Warn("failed to read model selection", "path", deps.Store.Path(), "error", err)
			return ""
		}
		return v.ModelID
	}
	fetch := func(ctx context.Context) []string {
		return deps.Client.ModelNames(ctx, settings.Ollama.DefaultModel)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	selection := model.NewSelection(fetch(fetchCtx), persisted())
	cancel()
	selector := components.NewModelSelector(theme, selection, fetch, persisted)

	log := transcript.NewLog(theme, settings.UI.MarkdownStyle)
	view := viewer.NewModel(theme, viewer.NewRenderer(theme.ColorProfile), app.ImageChanged)
	if imagePath != "" {
		if err := view.Load(imagePath); err != nil {
			return err
		}
	}

	var recorder session.Recorder
	if deps.Archive != nil {
		recorder = deps.Archive
	}

	ctrl := session.New(session.Options{
		SystemPrompt: settings.Chat.SystemPrompt,
		Model:        selection.Current(),
		Store:        deps.Store,
		Transcript:   log,
		Images:       view,
		Launcher:     worker.New(deps.Client, logger),
		Recorder:     recorder,
		Logger:       logger,
	})

	var watcher *viewer.Watcher
	root := app.New(app.Options{
		Controller: ctrl,
		Transcript: log,
		Viewer:     view,
		Selector:   selector,
		Theme:      theme,
		Logger:     logger,
		ImageRatio: settings.UI.ImageRatio,
		LogPath:    settings.Log.Path,
		OnImage: func(path string) {
			if watcher != nil {
				trackImage(watcher, path, logger)
			}
		},
	})

	p := tea.NewProgram(
		root,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)
	// The sink wraps the program, which wraps the controller.
	ctrl.SetSink(worker.NewTeaSink(p))

	w, err := viewer.NewWatcher(viewer.DefaultDebounce, logger, func(path string) {
		p.Send(viewer.LoadCmd(path, false)())
	})
	if err != nil {
		logger.Warn("image reload disabled", "error", err)
	} else {
		watcher = w
		defer watcher.Close()
		if path := view.ImagePath(); path != "" {
			trackImage(watcher, path, logger)
		}
	}

	_, err = p.Run()

	ctrl.Close()
	waitCtx, cancelWait := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelWait()
	if waitErr := ctrl.Wait(waitCtx); waitErr != nil {
		logger.Warn("worker did not stop in time", "error", waitErr)
	}
	return err
}

func trackImage(w *viewer.Watcher, path string, logger *slog.Logger) {
	if err := w.Track(path); err != nil {
		logger.Warn("cannot watch image", "path", path, "error", err)
	}
}
