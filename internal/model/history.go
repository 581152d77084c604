// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/jeranaias/vizchat/internal/ollama"
)

// =============================================================================
// HISTORY TYPE
// =============================================================================

// History is the ordered, append-only message log of one session.
// Entries are never edited or reordered; Reset discards all of them.
//
// History is not safe for concurrent use. It is owned by the session
// controller and touched only from the interactive loop.
type History struct {
	messages []Message
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds messages to the end of the history.
func (h *History) Append(msgs ...Message) {
	h.messages = append(h.messages, msgs...)
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.messages)
}

// IsEmpty reports whether no turn has been sent yet.
func (h *History) IsEmpty() bool {
	return len(h.messages) == 0
}

// Messages returns a copy of all entries in order.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Last returns the most recent entry, or false if the history is empty.
func (h *History) Last() (Message, bool) {
	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// Reset discards every entry.
func (h *History) Reset() {
	h.messages = nil
}

// =============================================================================
// OLLAMA CONVERSION
// =============================================================================

// ToOllama converts the history to API messages. Image files are read and
// base64-encoded at call time so the history only ever stores paths.
func (h *History) ToOllama() ([]ollama.Message, error) {
	return ToOllama(h.messages)
}

// ToOllama converts msgs to API messages, encoding any referenced images.
func ToOllama(msgs []Message) ([]ollama.Message, error) {
	out := make([]ollama.Message, 0, len(msgs))
	for _, msg := range msgs {
		apiMsg := ollama.Message{
			Role:    msg.Role.String(),
			Content: msg.Content,
		}
		if msg.HasImage() {
			encoded, err := EncodeImage(msg.ImagePath)
			if err != nil {
				return nil, err
			}
			apiMsg.Images = []string{encoded}
		}
		out = append(out, apiMsg)
	}
	return out, nil
}

// EncodeImage reads an image file and returns its base64 encoding.
func EncodeImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
