// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates turn-taking between the user and the model.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/vizchat/internal/archive"
	"github.com/jeranaias/vizchat/internal/logging"
	"github.com/jeranaias/vizchat/internal/model"
	"github.com/jeranaias/vizchat/internal/util"
	"github.com/jeranaias/vizchat/internal/worker"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyInput is returned for blank submissions. Nothing changes.
	ErrEmptyInput = errors.New("empty input")

	// ErrBusy is returned while a reply is still streaming. Overlapping
	// sends are rejected, never queued.
	ErrBusy = errors.New("still waiting for the previous reply")

	// ErrNoImage is returned when the first turn is sent without an image.
	ErrNoImage = errors.New("no image loaded: open an image before asking about it")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
)

// =============================================================================
// STATE
// =============================================================================

// State is the controller's turn state.
type State int

const (
	Idle State = iota
	AwaitingResponse
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting response"
	default:
		return "unknown"
	}
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Transcript is the append-only conversation view.
type Transcript interface {
	AppendUser(text string)
	AppendAssistant(paragraph string, labeled bool)
	Clear()
}

// ImageSource reports the currently loaded image, or "" when none is.
type ImageSource interface {
	ImagePath() string
}

// Launcher starts a chat worker. *worker.Worker satisfies it.
type Launcher interface {
	Start(ctx context.Context, req worker.Request, sink worker.Sink) <-chan struct{}
}

// SelectionStore persists the chosen model. *config.Store satisfies it.
type SelectionStore interface {
	Remember(model string) (bool, error)
}

// Recorder archives completed turns. *archive.Archive satisfies it.
type Recorder interface {
	Record(ctx context.Context, t archive.Turn) error
}

// Options wires a Controller. Transcript, Images and Launcher are required.
type Options struct {
	SystemPrompt string
	Model        string
	Store        SelectionStore
	Transcript   Transcript
	Images       ImageSource
	Launcher     Launcher
	Sink         worker.Sink
	Recorder     Recorder
	Logger       *slog.Logger
	// NewID generates turn and session IDs; uuid.NewString when nil
	NewID func() string
}

// =============================================================================
// CONTROLLER
// =============================================================================

// turn is the in-flight request.
type turn struct {
	id      string
	model   string
	prompt  string
	cancel  context.CancelFunc
	done    <-chan struct{}
	labeled bool
}

// Controller owns the conversation history and drives one worker per turn.
//
// It is not safe for concurrent use: every method is called from the
// interactive loop, and worker signals reach it through that loop.
type Controller struct {
	opts       Options
	logger     *slog.Logger
	history    *model.History
	paragraphs Paragraphs
	state      State
	current    *turn
	lastDone   <-chan struct{}
	closed     bool

	model     string
	sessionID string
	// imagePath is the image the session is about, set by its first turn
	imagePath string
	started   time.Time
	turns     int
}

// New creates a controller in the Idle state.
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	c := &Controller{
		opts:    opts,
		logger:  opts.Logger,
		history: model.NewHistory(),
		model:   opts.Model,
	}
	c.newSession()
	return c
}

func (c *Controller) newSession() {
	c.sessionID = c.opts.NewID()
	c.imagePath = ""
	c.started = time.Now()
	c.turns = 0
}

// SetSink replaces the sink handed to future workers. The TUI needs this
// because its sink wraps the program that in turn wraps the controller.
func (c *Controller) SetSink(sink worker.Sink) {
	c.opts.Sink = sink
}

// SetModel changes the model used by the next turn.
func (c *Controller) SetModel(name string) {
	c.model = name
}

// Model returns the model used by the next turn.
func (c *Controller) Model() string {
	return c.model
}

// State returns the current turn state.
func (c *Controller) State() State {
	return c.state
}

// Busy reports whether a reply is streaming.
func (c *Controller) Busy() bool {
	return c.state == AwaitingResponse
}

// History returns a copy of the conversation history.
func (c *Controller) History() []model.Message {
	return c.history.Messages()
}

// CurrentTurn returns the in-flight turn ID, or "".
func (c *Controller) CurrentTurn() string {
	if c.current == nil {
		return ""
	}
	return c.current.id
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// Submit starts a new turn with the user's text.
//
// The first turn of a session carries the system prompt and the loaded
// image; without an image it fails with ErrNoImage before anything changes.
func (c *Controller) Submit(text string) error {
	if c.closed {
		return ErrClosed
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}
	if c.state == AwaitingResponse {
		return ErrBusy
	}

	if c.history.IsEmpty() {
		var imagePath string
		if c.opts.Images != nil {
			imagePath = c.opts.Images.ImagePath()
		}
		if imagePath == "" {
			return ErrNoImage
		}
		c.history.Append(
			model.NewSystemMessage(c.opts.SystemPrompt),
			model.NewImageMessage(text, imagePath),
		)
		c.imagePath = imagePath
	} else {
		c.history.Append(model.NewUserMessage(text))
	}
	c.opts.Transcript.AppendUser(text)

	c.rememberModel()

	c.paragraphs.Reset()
	ctx, cancel := context.WithCancel(context.Background())
	t := &turn{
		id:     c.opts.NewID(),
		model:  c.model,
		prompt: text,
		cancel: cancel,
	}
	c.current = t
	c.state = AwaitingResponse

	c.logger.Info("turn started", "turn_id", t.id, "model", t.model, "history", c.history.Len())
	t.done = c.opts.Launcher.Start(ctx, worker.Request{
		TurnID:   t.id,
		Model:    t.model,
		Messages: c.history.Messages(),
	}, c.opts.Sink)
	c.lastDone = t.done
	return nil
}

// rememberModel writes the selection back when it changed. A failed write
// is logged and never blocks the turn.
func (c *Controller) rememberModel() {
	if c.opts.Store == nil || c.model == "" {
		return
	}
	changed, err := c.opts.Store.Remember(c.model)
	if err != nil {
		c.logger.Warn("failed to persist model selection", "model", c.model, "error", err)
		return
	}
	if changed {
		c.logger.Info("model selection saved", "model", c.model)
	}
}

// accepts reports whether a worker signal belongs to the in-flight turn.
func (c *Controller) accepts(turnID string) bool {
	return c.current != nil && c.current.id == turnID
}

// HandleFragment feeds a streamed fragment into the paragraph buffer and
// renders every paragraph it completes. Stale fragments are dropped.
func (c *Controller) HandleFragment(turnID, fragment string) bool {
	if !c.accepts(turnID) {
		return false
	}
	for _, p := range c.paragraphs.Push(fragment) {
		c.render(p)
	}
	return true
}

// HandleFinished flushes the trailing paragraph, appends the full reply to
// the history and returns to Idle.
func (c *Controller) HandleFinished(turnID, full string) bool {
	if !c.accepts(turnID) {
		return false
	}
	c.render(c.paragraphs.Flush())
	c.history.Append(model.NewAssistantMessage(full))
	c.turns++
	c.record(c.current, full)
	c.logger.Info("turn finished", "turn_id", turnID, "chars", len(full))
	c.endTurn()
	return true
}

// HandleFailed returns to Idle without an assistant entry. It reports
// whether the failure belonged to the in-flight turn and should be shown.
func (c *Controller) HandleFailed(turnID string, err error) bool {
	if !c.accepts(turnID) {
		return false
	}
	c.logger.Warn("turn failed", "turn_id", turnID, "error", err)
	c.endTurn()
	return true
}

// render draws one paragraph. Only the first paragraph of a turn is
// labeled; blank paragraphs are skipped.
func (c *Controller) render(paragraph string) {
	if strings.TrimSpace(paragraph) == "" {
		return
	}
	c.opts.Transcript.AppendAssistant(paragraph, !c.current.labeled)
	c.current.labeled = true
}

func (c *Controller) record(t *turn, response string) {
	if c.opts.Recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := c.opts.Recorder.Record(ctx, archive.Turn{
		ID:        t.id,
		SessionID: c.sessionID,
		Model:     t.model,
		ImagePath: c.imagePath,
		Prompt:    t.prompt,
		Response:  response,
	})
	if err != nil {
		c.logger.Warn("failed to archive turn", "turn_id", t.id, "error", err)
	}
}

// endTurn releases the turn context and returns to Idle.
func (c *Controller) endTurn() {
	if c.current != nil {
		c.current.cancel()
	}
	c.current = nil
	c.paragraphs.Reset()
	c.state = Idle
}

// =============================================================================
// RESET AND TEARDOWN
// =============================================================================

// Reset cancels any in-flight worker and clears the history, the
// transcript and the paragraph buffer. It is valid in every state.
func (c *Controller) Reset() {
	if c.current != nil {
		c.logger.Info("turn cancelled by reset", "turn_id", c.current.id)
	}
	c.endTurn()
	c.history.Reset()
	c.opts.Transcript.Clear()
	c.newSession()
}

// Close cancels any in-flight worker. Later submissions fail with ErrClosed.
func (c *Controller) Close() {
	if c.current != nil {
		c.logger.Info("turn cancelled by shutdown", "turn_id", c.current.id)
	}
	c.endTurn()
	c.closed = true
}

// Done returns a channel closed when the most recently launched worker has
// delivered its last signal, or nil before the first turn.
func (c *Controller) Done() <-chan struct{} {
	return c.lastDone
}

// Wait blocks until the most recently launched worker has returned or ctx
// ends. Cancelled workers return promptly.
func (c *Controller) Wait(ctx context.Context) error {
	if c.lastDone == nil {
		return nil
	}
	select {
	case <-c.lastDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// STATUS
// =============================================================================

// Status summarizes the session for the status bar.
type Status struct {
	SessionID string
	State     State
	Model     string
	Turns     int
	Duration  time.Duration
}

// Status returns a snapshot of the session.
func (c *Controller) Status() Status {
	return Status{
		SessionID: c.sessionID,
		State:     c.state,
		Model:     c.model,
		Turns:     c.turns,
		Duration:  time.Since(c.started),
	}
}

// String renders the status as a short line.
func (s Status) String() string {
	return s.Model + " · " + util.IntToString(s.Turns) + " turns · " + util.FormatDuration(s.Duration)
}
