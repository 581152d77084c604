// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"fmt"
	"io"
	"sync"

	"github.com/jeranaias/vizchat/internal/model"
)

// Printer writes the transcript to a plain stream. It is used by the
// line-mode client where there is no viewport to scroll.
type Printer struct {
	mu       sync.Mutex
	out      io.Writer
	markdown *Markdown
	width    int
}

// NewPrinter creates a printer. A nil markdown renderer prints paragraphs raw.
func NewPrinter(out io.Writer, markdown *Markdown, width int) *Printer {
	if width <= 0 {
		width = 80
	}
	return &Printer{out: out, markdown: markdown, width: width}
}

// AppendUser prints the user's line with its label.
func (p *Printer) AppendUser(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s: %s\n\n", model.RoleUser.Label(), Sanitize(text))
}

// AppendAssistant prints one assistant paragraph.
func (p *Printer) AppendAssistant(paragraph string, labeled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if labeled {
		fmt.Fprintf(p.out, "%s:\n", model.RoleAssistant.Label())
	}
	text := paragraph
	if p.markdown != nil {
		text = p.markdown.Render(paragraph, p.width)
	}
	fmt.Fprintf(p.out, "%s\n\n", text)
}

// Clear prints a separator; a stream cannot be erased.
func (p *Printer) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, "--- new session ---")
}
