// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "strings"

// ParagraphBreak separates paragraphs in a streamed reply.
const ParagraphBreak = "\n\n"

// Paragraphs is the streaming buffer of the in-flight assistant turn.
// It releases text one complete paragraph at a time and keeps the trailing
// partial paragraph until more text or the end of the stream arrives.
type Paragraphs struct {
	pending string
}

// Push appends a fragment and returns every paragraph it completed, in
// order. The delimiter may be split across fragments.
func (p *Paragraphs) Push(fragment string) []string {
	p.pending += fragment
	if !strings.Contains(p.pending, ParagraphBreak) {
		return nil
	}
	parts := strings.Split(p.pending, ParagraphBreak)
	p.pending = parts[len(parts)-1]
	return parts[:len(parts)-1]
}

// Flush returns the trailing partial paragraph and empties the buffer.
func (p *Paragraphs) Flush() string {
	rest := p.pending
	p.pending = ""
	return rest
}

// Pending returns the buffered partial paragraph without consuming it.
func (p *Paragraphs) Pending() string {
	return p.pending
}

// Reset discards any buffered text.
func (p *Paragraphs) Reset() {
	p.pending = ""
}
