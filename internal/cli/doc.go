// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the vizchat subcommands that run without the TUI.
//
// # Commands
//
//   - chat IMAGE: a line-mode REPL (peterh/liner) driving the same session
//     controller as the TUI, for terminals that cannot host it
//   - models: the model list Ollama offers, with the default as fallback
//   - history: recent turns from the SQLite archive
//
// # Usage
//
//	args := cli.NewArgParser(os.Args[1:])
//	if cmd := cli.ParseCommand(args); cmd != cli.CmdTUI {
//	    return cli.Run(ctx, cmd, args, deps)
//	}
package cli
