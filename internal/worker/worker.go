// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package worker runs one streaming chat request off the interactive loop.
//
// A Worker converts the history, opens a single /api/chat stream and reports
// back through a Sink. For every turn the sink sees zero or more Partial
// calls followed by exactly one Finished or exactly one Failed. A cancelled
// context ends the stream and the worker reports nothing further.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jeranaias/vizchat/internal/logging"
	"github.com/jeranaias/vizchat/internal/model"
	"github.com/jeranaias/vizchat/internal/ollama"
)

// =============================================================================
// TYPES
// =============================================================================

// Streamer is the part of the Ollama client the worker needs.
type Streamer interface {
	ChatStream(ctx context.Context, model string, messages []ollama.Message, callback ollama.StreamCallback) error
}

// Request describes one turn.
type Request struct {
	TurnID   string
	Model    string
	Messages []model.Message
}

// Sink receives the outcome of a turn. Calls arrive on the worker's
// goroutine, in stream order.
type Sink interface {
	Partial(turnID, fragment string)
	Finished(turnID, full string)
	Failed(turnID string, err error)
}

// Worker issues streaming chat requests.
type Worker struct {
	client Streamer
	logger *slog.Logger
}

// New creates a worker around client.
func New(client Streamer, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Worker{client: client, logger: logger}
}

// =============================================================================
// EXECUTION
// =============================================================================

// Start runs the request on its own goroutine. The returned channel is
// closed once the worker has delivered its last signal.
func (w *Worker) Start(ctx context.Context, req Request, sink Sink) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, req, sink)
	}()
	return done
}

// Run performs the request and blocks until the stream ends.
func (w *Worker) Run(ctx context.Context, req Request, sink Sink) {
	ctx = logging.WithTurnID(ctx, req.TurnID)
	log := logging.FromContext(ctx, w.logger)
	start := time.Now()

	messages, err := model.ToOllama(req.Messages)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn("request construction failed", "error", err)
		sink.Failed(req.TurnID, fmt.Errorf("failed to prepare request: %w", err))
		return
	}

	log.Debug("stream starting", "model", req.Model, "messages", len(messages))

	var full strings.Builder
	fragments := 0
	streamErr := w.client.ChatStream(ctx, req.Model, messages, func(chunk ollama.StreamChunk) {
		if ctx.Err() != nil || chunk.Content == "" {
			return
		}
		full.WriteString(chunk.Content)
		fragments++
		sink.Partial(req.TurnID, chunk.Content)
	})

	// Cancelled turns stay silent.
	if ctx.Err() != nil {
		log.Debug("stream cancelled", "fragments", fragments)
		return
	}

	if streamErr != nil {
		log.Warn("stream failed", "error", streamErr, "fragments", fragments)
		sink.Failed(req.TurnID, Describe(streamErr))
		return
	}

	log.Info("stream finished", "model", req.Model, "fragments", fragments, "elapsed", time.Since(start))
	sink.Finished(req.TurnID, full.String())
}

// Describe turns a client error into a message fit for an error dialog.
// The original error stays reachable through errors.Is and errors.As.
func Describe(err error) error {
	switch {
	case ollama.IsNotRunning(err):
		return fmt.Errorf("cannot reach Ollama, is `ollama serve` running? (%w)", err)
	case ollama.IsModelNotFound(err):
		return fmt.Errorf("%w (try `ollama pull` or pick another model)", err)
	case ollama.IsTimeout(err):
		return fmt.Errorf("the model took too long to answer: %w", err)
	default:
		return fmt.Errorf("chat request failed: %w", err)
	}
}
