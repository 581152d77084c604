// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Subcommand dispatch and shared dependencies.

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/jeranaias/vizchat/internal/archive"
	"github.com/jeranaias/vizchat/internal/config"
	"github.com/jeranaias/vizchat/internal/ollama"
	"github.com/jeranaias/vizchat/internal/session"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the subcommand to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdModels
	CmdHistory
	CmdVersion
	CmdHelp
)

// ParseCommand picks the command from parsed arguments. A bare image path
// (or nothing) starts the TUI.
func ParseCommand(args *ArgParser) Command {
	if args.BoolFlag("help") || args.BoolFlag("h") {
		return CmdHelp
	}
	if args.BoolFlag("version") || args.BoolFlag("v") {
		return CmdVersion
	}
	switch args.Subcommand() {
	case "chat":
		return CmdChat
	case "models":
		return CmdModels
	case "history":
		return CmdHistory
	case "version":
		return CmdVersion
	case "help":
		return CmdHelp
	default:
		return CmdTUI
	}
}

// Deps carries what the subcommands share with the TUI.
type Deps struct {
	Settings *config.Settings
	Client   *ollama.Client
	Store    *config.Store
	// Archive is nil when archiving is disabled
	Archive *archive.Archive
	Logger  *slog.Logger
	Out     io.Writer
}

func (d Deps) out() io.Writer {
	if d.Out == nil {
		return os.Stdout
	}
	return d.Out
}

// recorder avoids handing the controller a typed nil.
func (d Deps) recorder() session.Recorder {
	if d.Archive == nil {
		return nil
	}
	return d.Archive
}

func (d Deps) store() session.SelectionStore {
	if d.Store == nil {
		return nil
	}
	return d.Store
}

// persistedModel reads the remembered model; a broken store is logged and
// treated as empty.
func (d Deps) persistedModel() string {
	if d.Store == nil {
		return ""
	}
	v, err := d.Store.Load()
	if err != nil {
		if d.Logger != nil {
			d.Logger.Warn("failed to read model selection", "path", d.Store.Path(), "error", err)
		}
		return ""
	}
	return v.ModelID
}

// Run executes a non-TUI command.
func Run(ctx context.Context, cmd Command, args *ArgParser, deps Deps) error {
	switch cmd {
	case CmdChat:
		return HandleChat(ctx, args, deps)
	case CmdModels:
		return HandleModels(ctx, args, deps)
	case CmdHistory:
		return HandleHistory(ctx, args, deps)
	case CmdVersion:
		PrintVersion(deps.out())
		return nil
	case CmdHelp:
		PrintUsage(deps.out())
		return nil
	default:
		return fmt.Errorf("command %d has no line-mode handler", cmd)
	}
}

// PrintVersion writes the build information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "vizchat %s (%s, built %s, %s/%s)\n", Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `vizchat - chat with a local vision model about an image

Usage:
  vizchat [IMAGE]                 open the TUI, optionally with an image
  vizchat chat IMAGE [--model M]  line-mode chat for plain terminals
  vizchat models                  list the models Ollama offers
  vizchat history [--limit N]     show archived turns (--full for whole replies)
  vizchat version                 print version information

Flags:
  --plain   use line mode even on a terminal
  --help    show this help

Configuration lives in ~/.vizchat/config.toml; VIZCHAT_* variables override it.
`)
}
