// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat about one image.
//
// The REPL drives the same session controller as the TUI. Worker signals
// arrive on a channel sink and are fed back to the controller from the
// REPL goroutine, so the controller is never touched concurrently.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/vizchat/internal/config"
	"github.com/jeranaias/vizchat/internal/model"
	"github.com/jeranaias/vizchat/internal/session"
	"github.com/jeranaias/vizchat/internal/transcript"
	"github.com/jeranaias/vizchat/internal/viewer"
	"github.com/jeranaias/vizchat/internal/worker"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader reads one edited line. *ChatCLI and *liner.State satisfy it.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// ChatCLI wraps liner with a persistent history file.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates the line editor and loads previous input history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)

	historyFile := ""
	if dir, err := config.ConfigDir(); err == nil {
		historyFile = filepath.Join(dir, "chat_history")
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	return &ChatCLI{line: line, historyFile: historyFile}
}

// Prompt reads a line and records non-blank input in the history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists the input history, owner-readable only.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatOptions wires a line-mode chat.
type ChatOptions struct {
	ImagePath    string
	SystemPrompt string
	Models       []string
	// Persisted is the model remembered from a previous run
	Persisted string
	Launcher  session.Launcher
	Store     session.SelectionStore
	Recorder  session.Recorder
	Logger    *slog.Logger
	Out       io.Writer
	Markdown  *transcript.Markdown
	Width     int
}

// Chat is a line-mode conversation about one image.
type Chat struct {
	ctrl      *session.Controller
	events    worker.ChanSink
	selection *model.Selection
	out       io.Writer
	image     string
}

// staticImage is an image source that never changes.
type staticImage string

func (s staticImage) ImagePath() string { return string(s) }

// NewChat creates a chat session.
func NewChat(opts ChatOptions) *Chat {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	selection := model.NewSelection(opts.Models, opts.Persisted)
	events := make(worker.ChanSink, 64)

	ctrl := session.New(session.Options{
		SystemPrompt: opts.SystemPrompt,
		Model:        selection.Current(),
		Store:        opts.Store,
		Transcript:   transcript.NewPrinter(opts.Out, opts.Markdown, opts.Width),
		Images:       staticImage(opts.ImagePath),
		Launcher:     opts.Launcher,
		Sink:         events,
		Recorder:     opts.Recorder,
		Logger:       opts.Logger,
	})

	return &Chat{
		ctrl:      ctrl,
		events:    events,
		selection: selection,
		out:       opts.Out,
		image:     opts.ImagePath,
	}
}

// Controller returns the session controller.
func (c *Chat) Controller() *session.Controller {
	return c.ctrl
}

// Model returns the model used by the next turn.
func (c *Chat) Model() string {
	return c.ctrl.Model()
}

// Send submits text and blocks until the reply has streamed. A value on
// interrupt cancels the reply.
func (c *Chat) Send(text string, interrupt <-chan os.Signal) error {
	if err := c.ctrl.Submit(text); err != nil {
		return err
	}
	c.await(interrupt)
	return nil
}

func (c *Chat) await(interrupt <-chan os.Signal) {
	done := c.ctrl.Done()
	for {
		select {
		case ev := <-c.events:
			c.dispatch(ev)
		case <-done:
			for {
				select {
				case ev := <-c.events:
					c.dispatch(ev)
				default:
					return
				}
			}
		case <-interrupt:
			if turn := c.ctrl.CurrentTurn(); turn != "" {
				c.ctrl.HandleFailed(turn, context.Canceled)
				fmt.Fprintln(c.out, render(WarningStyle, "[Cancelled]"))
			}
		}
	}
}

func (c *Chat) dispatch(ev worker.Event) {
	switch {
	case ev.Fragment != nil:
		c.ctrl.HandleFragment(ev.Fragment.TurnID, ev.Fragment.Text)
	case ev.Finished != nil:
		c.ctrl.HandleFinished(ev.Finished.TurnID, ev.Finished.Full)
	case ev.Failed != nil:
		if c.ctrl.HandleFailed(ev.Failed.TurnID, ev.Failed.Err) {
			c.printError(ev.Failed.Err)
		}
	}
}

func (c *Chat) printError(err error) {
	fmt.Fprintf(c.out, "%s %v\n", render(ErrorStyle, "[Error]"), err)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// ErrUnknownCommand is returned for slash commands the REPL does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Command runs a slash command. It reports whether the REPL should exit.
func (c *Chat) Command(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "/quit", "/exit", "/q":
		return true, nil

	case "/reset", "/clear":
		c.ctrl.Reset()
		return false, nil

	case "/model", "/models":
		if len(fields) == 1 {
			c.printModels()
			return false, nil
		}
		name := fields[1]
		if !c.selection.Select(name) {
			return false, fmt.Errorf("model %q is not available", name)
		}
		c.ctrl.SetModel(name)
		fmt.Fprintf(c.out, "Model: %s\n", render(HighlightStyle, name))
		return false, nil

	case "/status":
		fmt.Fprintln(c.out, c.ctrl.Status().String())
		return false, nil

	case "/help", "/?":
		c.printHelp()
		return false, nil

	default:
		return false, fmt.Errorf("%w: %s (try /help)", ErrUnknownCommand, fields[0])
	}
}

func (c *Chat) printModels() {
	current := c.ctrl.Model()
	for _, name := range c.selection.Names() {
		if name == current {
			fmt.Fprintf(c.out, "* %s\n", render(HighlightStyle, name))
		} else {
			fmt.Fprintf(c.out, "  %s\n", name)
		}
	}
}

func (c *Chat) printHelp() {
	fmt.Fprintln(c.out, "Commands:")
	fmt.Fprintln(c.out, "  /model [NAME]  list models or switch to NAME")
	fmt.Fprintln(c.out, "  /reset        start a new conversation")
	fmt.Fprintln(c.out, "  /status       show model, turns and elapsed time")
	fmt.Fprintln(c.out, "  /quit         leave")
	fmt.Fprintln(c.out, render(DimStyle, "Ctrl+C cancels a reply; at the prompt it exits."))
}

func (c *Chat) printWelcome() {
	fmt.Fprintln(c.out, render(TitleStyle, "vizchat")+" "+render(DimStyle, "line mode"))
	fmt.Fprintf(c.out, "Image: %s\n", c.image)
	fmt.Fprintf(c.out, "Model: %s\n", render(HighlightStyle, c.ctrl.Model()))
	fmt.Fprintln(c.out, render(DimStyle, "Type /help for commands."))
	fmt.Fprintln(c.out)
}

// =============================================================================
// REPL
// =============================================================================

// Run reads lines until EOF, Ctrl+C at the prompt, or /quit.
func (c *Chat) Run(r LineReader, interrupt <-chan os.Signal) error {
	c.printWelcome()
	for {
		input, err := r.Prompt("vizchat> ")
		if err != nil {
			fmt.Fprintln(c.out)
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := c.Command(input)
			if err != nil {
				c.printError(err)
			}
			if quit {
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		if err := c.Send(input, interrupt); err != nil {
			c.printError(err)
		}
	}
}

// Close cancels any reply and waits briefly for its worker.
func (c *Chat) Close() {
	c.ctrl.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c.ctrl.Wait(ctx)
}

// =============================================================================
// COMMAND HANDLER
// =============================================================================

// HandleChat runs `vizchat chat IMAGE [--model NAME]`.
func HandleChat(ctx context.Context, args *ArgParser, deps Deps) error {
	path := args.Positional(1)
	if path == "" {
		return fmt.Errorf("usage: vizchat chat IMAGE [--model NAME]")
	}
	img, err := viewer.LoadImage(path)
	if err != nil {
		return err
	}

	if err := deps.Client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("Ollama is not running. Start it with: ollama serve (%w)", err)
	}

	persisted := deps.persistedModel()
	if name := args.Flag("model"); name != "" {
		persisted = name
	}

	var md *transcript.Markdown
	if ColorsEnabled() {
		md = transcript.NewMarkdown(deps.Settings.UI.MarkdownStyle)
	}

	chat := NewChat(ChatOptions{
		ImagePath:    img.Path,
		SystemPrompt: deps.Settings.Chat.SystemPrompt,
		Models:       deps.Client.ModelNames(ctx, deps.Settings.Ollama.DefaultModel),
		Persisted:    persisted,
		Launcher:     worker.New(deps.Client, deps.Logger),
		Store:        deps.store(),
		Recorder:     deps.recorder(),
		Logger:       deps.Logger,
		Out:          deps.out(),
		Markdown:     md,
		Width:        GetTerminalWidth(),
	})
	defer chat.Close()

	input := NewChatCLI()
	defer input.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	return chat.Run(input, interrupt)
}
