// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viewer

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/vizchat/internal/ui/styles"
)

// Action identifies a context menu entry.
type Action int

const (
	ActionNone Action = iota
	ActionCopyPath
	ActionResetZoom
	ActionUpload
	ActionFit
)

// MenuItem is one selectable row of the context menu.
type MenuItem struct {
	Label  string
	Action Action
}

// DefaultMenuItems are the actions offered on a right click over the image.
var DefaultMenuItems = []MenuItem{
	{Label: "Copy Image Path", Action: ActionCopyPath},
	{Label: "Reset Zoom", Action: ActionResetZoom},
	{Label: "Upload Image", Action: ActionUpload},
	{Label: "Fit", Action: ActionFit},
}

// Menu is a small popup list anchored at a cell position inside the pane.
type Menu struct {
	items    []MenuItem
	selected int
	open     bool
	x, y     int
	theme    *styles.Theme
}

// NewMenu creates a closed menu.
func NewMenu(theme *styles.Theme, items []MenuItem) *Menu {
	return &Menu{items: items, theme: theme}
}

// Open shows the menu at (x, y) with the first entry selected.
func (m *Menu) Open(x, y int) {
	m.open = true
	m.selected = 0
	m.x, m.y = x, y
}

// Close hides the menu.
func (m *Menu) Close() { m.open = false }

// IsOpen reports whether the menu is visible.
func (m *Menu) IsOpen() bool { return m.open }

// Position returns the anchor cell.
func (m *Menu) Position() (int, int) { return m.x, m.y }

// Selected returns the highlighted entry.
func (m *Menu) Selected() MenuItem { return m.items[m.selected] }

// Update handles navigation. It returns the chosen action once the user
// confirms, and ActionNone otherwise. Any choice or escape closes the menu.
func (m *Menu) Update(msg tea.Msg) Action {
	if !m.open {
		return ActionNone
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			m.selected = (m.selected - 1 + len(m.items)) % len(m.items)
		case "down", "j":
			m.selected = (m.selected + 1) % len(m.items)
		case "enter":
			m.open = false
			return m.items[m.selected].Action
		case "esc":
			m.open = false
		}

	case tea.MouseMsg:
		if msg.Type != tea.MouseLeft {
			return ActionNone
		}
		// Rows start below the top border.
		row := msg.Y - m.y - 1
		m.open = false
		if row >= 0 && row < len(m.items) {
			return m.items[row].Action
		}
	}
	return ActionNone
}

// View renders the menu box.
func (m *Menu) View() string {
	if !m.open {
		return ""
	}
	rows := make([]string, len(m.items))
	for i, item := range m.items {
		if i == m.selected {
			rows[i] = m.theme.MenuSelected.Render(item.Label)
		} else {
			rows[i] = m.theme.MenuItem.Render(item.Label)
		}
	}
	return m.theme.Menu.Render(strings.Join(rows, "\n"))
}
