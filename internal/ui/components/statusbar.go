// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/vizchat/internal/ui/styles"
	"github.com/jeranaias/vizchat/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Shortcut is a key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts are the global key bindings.
var DefaultShortcuts = []Shortcut{
	{"enter", "send"},
	{"tab", "focus"},
	{"[ ]", "model"},
	{"ctrl+e", "image"},
	{"ctrl+l", "reset"},
	{"esc", "quit"},
}

// StatusBar is the bottom line: session state, turn count and key hints.
type StatusBar struct {
	State     string
	Turns     int
	Duration  time.Duration
	Focus     string
	Width     int
	Shortcuts []Shortcut
	theme     *styles.Theme
}

// NewStatusBar creates a status bar with the default shortcuts.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		State:     "idle",
		Width:     80,
		Shortcuts: DefaultShortcuts,
		theme:     theme,
	}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the bar. Shortcuts are dropped from the right until the line
// fits.
func (s *StatusBar) View() string {
	icon := styles.StatusIndicators.Success
	if s.State != "idle" {
		icon = styles.StatusIndicators.Info
	}
	left := icon + " " + s.State
	if s.Turns > 0 {
		left += " | " + util.IntToString(s.Turns) + " turns"
	}
	if s.Duration > 0 {
		left += " | " + util.FormatDuration(s.Duration)
	}
	if s.Focus != "" {
		left += " | focus: " + s.Focus
	}

	inner := max(s.Width-2, 0)
	hints := s.Shortcuts
	right := s.renderShortcuts(hints)
	for len(hints) > 0 && lipgloss.Width(left)+lipgloss.Width(right)+1 > inner {
		hints = hints[:len(hints)-1]
		right = s.renderShortcuts(hints)
	}

	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	line := util.TruncateWidth(left, inner) + strings.Repeat(" ", gap) + right
	return s.theme.StatusBar.Width(s.Width).MaxWidth(s.Width).Render(line)
}

func (s *StatusBar) renderShortcuts(hints []Shortcut) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, s.theme.ShortcutKey.Render(h.Key)+" "+s.theme.ShortcutDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
