// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/vizchat/internal/ui/styles"
	"github.com/jeranaias/vizchat/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the top bar: brand, model selector, image name and zoom.
type Header struct {
	Title     string
	ImagePath string
	Zoom      float64
	Width     int

	selector *ModelSelector
	theme    *styles.Theme
}

// NewHeader creates a header around the model selector.
func NewHeader(theme *styles.Theme, selector *ModelSelector) *Header {
	return &Header{
		Title:    "vizchat",
		Width:    80,
		selector: selector,
		theme:    theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetImage updates the image shown in the header.
func (h *Header) SetImage(path string, zoom float64) {
	h.ImagePath = path
	h.Zoom = zoom
}

// View renders the header on a single line.
func (h *Header) View() string {
	brand := h.theme.HeaderBrand.Render(h.Title)
	sep := lipgloss.NewStyle().Foreground(styles.TextMuted).Render(" | ")

	left := brand
	if h.selector != nil {
		h.selector.SetWidth(max(h.Width/3, 16))
		left += sep + h.selector.View()
	}

	right := ""
	if h.ImagePath != "" {
		budget := max(h.Width-lipgloss.Width(left)-16, 8)
		right = util.ShortenPath(h.ImagePath, budget) + " " + util.Percent(h.Zoom)
	}

	// Header style adds one cell of padding on each side.
	inner := max(h.Width-2, 0)
	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	line := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return h.theme.Header.Width(h.Width).MaxWidth(h.Width).Render(line)
}
