// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// USER TEXT
// =============================================================================

// Sanitize removes escape sequences and control characters from user text
// so it is drawn exactly as typed. Newlines and tabs survive. Combining
// sequences are composed (NFC) so width measurement matches the terminal.
func Sanitize(text string) string {
	text = norm.NFC.String(ansi.Strip(text))
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		default:
			return r
		}
	}, text)
}

// =============================================================================
// MARKDOWN
// =============================================================================

// Markdown renders assistant paragraphs through glamour. The underlying
// renderer is rebuilt only when the wrap width changes.
type Markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a renderer for a glamour style name. "auto" picks dark
// or light from the terminal background.
func NewMarkdown(style string) *Markdown {
	if style == "" {
		style = "auto"
	}
	return &Markdown{style: style}
}

// ResolveStyle replaces "auto" with "dark" or "light" for a background that
// is already known. glamour's auto style queries the terminal on every
// build, which must not happen while a TUI owns the input.
func ResolveStyle(style string, dark bool) string {
	if style != "" && style != "auto" {
		return style
	}
	if dark {
		return "dark"
	}
	return "light"
}

// Render converts one markdown paragraph to styled terminal text wrapped at
// width cells. Rendering failures fall back to the raw text.
func (m *Markdown) Render(paragraph string, width int) string {
	if width < 10 {
		width = 10
	}
	if m.renderer == nil || m.width != width {
		r, err := m.build(width)
		if err != nil {
			return paragraph
		}
		m.renderer, m.width = r, width
	}

	out, err := m.renderer.Render(paragraph)
	if err != nil {
		return paragraph
	}
	return strings.Trim(out, "\n")
}

func (m *Markdown) build(width int) (*glamour.TermRenderer, error) {
	styleOpt := glamour.WithStandardStyle(m.style)
	if m.style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	return glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
}
