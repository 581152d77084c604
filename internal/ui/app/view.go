// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/vizchat/internal/ui/components"
	"github.com/jeranaias/vizchat/internal/ui/styles"
)

// =============================================================================
// LAYOUT
// =============================================================================

// rect is a screen region in cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// layout holds the outer pane rectangles, borders included.
type layout struct {
	mode       styles.LayoutMode
	image      rect
	transcript rect
	input      rect
}

const (
	headerRows = 1
	inputRows  = 1
	statusRows = 1
	border     = 1
)

// computeLayout splits the screen. Wide terminals put the image left of the
// transcript; narrow ones stack it on top.
func computeLayout(width, height int, ratio float64, mode styles.LayoutMode) layout {
	bodyH := max(height-headerRows-inputRows-statusRows, 2*(2*border+1))
	l := layout{mode: mode}

	if mode == styles.LayoutSideBySide {
		imgW := max(int(float64(width)*ratio), 2*border+1)
		l.image = rect{x: 0, y: headerRows, w: imgW, h: bodyH}
		l.transcript = rect{x: imgW, y: headerRows, w: max(width-imgW, 2*border+1), h: bodyH}
	} else {
		imgH := max(int(float64(bodyH)*ratio), 2*border+1)
		l.image = rect{x: 0, y: headerRows, w: width, h: imgH}
		l.transcript = rect{x: 0, y: headerRows + imgH, w: width, h: max(bodyH-imgH, 2*border+1)}
	}
	l.input = rect{x: 0, y: headerRows + bodyH, w: width, h: inputRows}
	return l
}

// resize applies a new terminal size to every pane.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)
	m.layout = computeLayout(width, height, m.imageRatio, m.theme.GetLayoutMode())

	img := m.layout.image
	m.viewer.SetSize(img.w-2*border, img.h-2*border)
	m.viewer.SetOrigin(img.x+border, img.y+border)

	tr := m.layout.transcript
	m.transcript.SetSize(tr.w-2*border, tr.h-2*border)

	m.input.Width = max(width-6, 10)
	m.header.SetWidth(width)
	m.status.SetWidth(width)
	m.dialog.SetSize(width, height)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.dialog.IsVisible() {
		return m.dialog.View()
	}

	m.header.SetImage(m.viewer.ImagePath(), m.viewer.State().Zoom())
	imagePane := m.pane(m.layout.image, m.viewer.View(), m.focus == FocusImage)
	transcriptPane := m.pane(m.layout.transcript, m.transcript.View(), m.focus == FocusTranscript)

	var body string
	if m.layout.mode == styles.LayoutSideBySide {
		body = lipgloss.JoinHorizontal(lipgloss.Top, imagePane, transcriptPane)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, imagePane, transcriptPane)
	}

	inputRow := m.spinner.Glyph() + " " + m.input.View()

	return strings.Join([]string{
		m.header.View(),
		body,
		inputRow,
		m.bottomLine(),
	}, "\n")
}

// pane draws content inside a bordered box of the given outer size.
func (m Model) pane(r rect, content string, focused bool) string {
	style := m.theme.Pane
	if focused {
		style = m.theme.PaneFocused
	}
	w, h := max(r.w-2*border, 0), max(r.h-2*border, 0)
	return style.
		Width(w).MaxWidth(r.w).
		Height(h).MaxHeight(r.h).
		Render(content)
}

// bottomLine shows the newest toast, or the status bar when there is none.
func (m Model) bottomLine() string {
	if toasts := m.toasts.Toasts(); len(toasts) > 0 {
		return components.RenderToastStack(toasts[:1], m.width)
	}
	st := m.ctrl.Status()
	m.status.State = st.State.String()
	m.status.Turns = st.Turns
	m.status.Focus = m.focus.String()
	return m.status.View()
}
