// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viewer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/vizchat/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// LoadedMsg carries a decoded image into the update loop.
type LoadedMsg struct {
	Image *Image
	// Upload is set when the user picked the file from the context menu.
	Upload bool
}

// LoadFailedMsg reports an image that could not be opened or decoded.
type LoadFailedMsg struct {
	Path string
	Err  error
}

// NoticeMsg is a short status line for the owner to display.
type NoticeMsg struct {
	Text    string
	IsError bool
}

// ImageSink is told about an image chosen through Upload Image, after the
// viewer has already displayed it.
type ImageSink func(img *Image) tea.Cmd

// LoadCmd decodes path off the update loop.
func LoadCmd(path string, upload bool) tea.Cmd {
	return func() tea.Msg {
		img, err := LoadImage(path)
		if err != nil {
			return LoadFailedMsg{Path: path, Err: err}
		}
		return LoadedMsg{Image: img, Upload: upload}
	}
}

// =============================================================================
// MODEL
// =============================================================================

// panStep is the keyboard pan distance: four samples.
const panStep = 4 * SamplePixels

type renderKey struct {
	img        *Image
	zoom       float64
	ox, oy     int
	cols, rows int
}

// Model is the image pane. Mouse coordinates arrive in screen cells and are
// mapped to pane pixels, SamplePixels wide and 2*SamplePixels tall per cell.
type Model struct {
	state    *State
	image    *Image
	renderer *Renderer
	menu     *Menu
	prompt   textinput.Model
	theme    *styles.Theme
	sink     ImageSink
	copy     func(string) error

	prompting bool
	cols      int
	rows      int
	originX   int
	originY   int

	cacheKey renderKey
	cache    string
}

// NewModel creates an empty image pane. sink may be nil.
func NewModel(theme *styles.Theme, renderer *Renderer, sink ImageSink) *Model {
	ti := textinput.New()
	ti.Prompt = "Image path: "
	ti.Placeholder = "/path/to/image.png"
	ti.CharLimit = 4096

	return &Model{
		state:    NewState(0, 0),
		renderer: renderer,
		menu:     NewMenu(theme, DefaultMenuItems),
		prompt:   ti,
		theme:    theme,
		sink:     sink,
		copy:     clipboard.WriteAll,
	}
}

// ImagePath returns the absolute path of the displayed image, or "".
func (m *Model) ImagePath() string {
	if m.image == nil {
		return ""
	}
	return m.image.Path
}

// Image returns the displayed image.
func (m *Model) Image() *Image { return m.image }

// State exposes the zoom and pan geometry.
func (m *Model) State() *State { return m.state }

// SetImage displays img, fit to the pane.
func (m *Model) SetImage(img *Image) {
	m.image = img
	m.state.Load(img.Width(), img.Height())
}

// Load decodes and displays the file at path.
func (m *Model) Load(path string) error {
	img, err := LoadImage(path)
	if err != nil {
		return err
	}
	m.SetImage(img)
	return nil
}

// SetSize sets the pane size in cells.
func (m *Model) SetSize(cols, rows int) {
	m.cols, m.rows = cols, rows
	m.state.Resize(cols*SamplePixels, rows*2*SamplePixels)
}

// SetOrigin records the screen cell of the pane's top-left corner.
func (m *Model) SetOrigin(x, y int) {
	m.originX, m.originY = x, y
}

// Capturing reports whether the pane holds keyboard input for a popup.
func (m *Model) Capturing() bool {
	return m.prompting || m.menu.IsOpen()
}

// OpenUploadPrompt shows the path prompt.
func (m *Model) OpenUploadPrompt() tea.Cmd {
	m.menu.Close()
	m.prompting = true
	m.prompt.SetValue("")
	return m.prompt.Focus()
}

// Contains reports whether the screen cell lies inside the pane.
func (m *Model) Contains(x, y int) bool {
	return x >= m.originX && x < m.originX+m.cols && y >= m.originY && y < m.originY+m.rows
}

// Update handles mouse, popup keys and load results.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.SetImage(msg.Image)
		if msg.Upload && m.sink != nil {
			return m, m.sink(msg.Image)
		}
		return m, nil

	case LoadFailedMsg:
		return m, notice(fmt.Sprintf("Cannot open %s: %v", filepath.Base(msg.Path), msg.Err), true)
	}

	if m.prompting {
		return m.updatePrompt(msg)
	}
	if m.menu.IsOpen() {
		if mouse, ok := msg.(tea.MouseMsg); ok {
			mouse.X -= m.originX
			mouse.Y -= m.originY
			msg = mouse
		}
		return m, m.perform(m.menu.Update(msg))
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		cx, cy := m.cols*SamplePixels/2, m.rows*SamplePixels
		switch msg.String() {
		case "+", "=":
			m.state.ZoomAt(1, cx, cy)
		case "-":
			m.state.ZoomAt(-1, cx, cy)
		case "0":
			m.state.ResetZoom()
		case "f":
			m.state.Fit()
		case "m":
			m.menu.Open(1, 1)
		case "left", "h":
			m.state.Pan(panStep, 0)
		case "right", "l":
			m.state.Pan(-panStep, 0)
		case "up", "k":
			m.state.Pan(0, panStep)
		case "down", "j":
			m.state.Pan(0, -panStep)
		}
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	col := msg.X - m.originX
	row := msg.Y - m.originY
	px, py := col*SamplePixels, row*2*SamplePixels

	switch msg.Type {
	case tea.MouseWheelUp, tea.MouseWheelDown:
		if !msg.Ctrl || !m.Contains(msg.X, msg.Y) {
			return nil
		}
		notches := 1
		if msg.Type == tea.MouseWheelDown {
			notches = -1
		}
		m.state.ZoomAt(notches, px, py)

	case tea.MouseLeft:
		if m.Contains(msg.X, msg.Y) {
			m.state.BeginDrag(px, py)
		}

	case tea.MouseMotion:
		m.state.DragTo(px, py)

	case tea.MouseRelease:
		m.state.EndDrag()

	case tea.MouseRight:
		if m.Contains(msg.X, msg.Y) {
			m.menu.Open(col, row)
		}
	}
	return nil
}

func (m *Model) updatePrompt(msg tea.Msg) (*Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.prompting = false
			m.prompt.Blur()
			return m, nil
		case "enter":
			path := expandHome(strings.TrimSpace(m.prompt.Value()))
			m.prompting = false
			m.prompt.Blur()
			if path == "" {
				return m, nil
			}
			if !IsSupportedPath(path) {
				return m, notice("Unsupported image type: "+filepath.Ext(path), true)
			}
			return m, LoadCmd(path, true)
		}
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// perform runs a context menu action.
func (m *Model) perform(action Action) tea.Cmd {
	switch action {
	case ActionCopyPath:
		if err := m.copy(m.ImagePath()); err != nil {
			return notice("Clipboard unavailable: "+err.Error(), true)
		}
		return notice("Copied image path", false)
	case ActionResetZoom:
		m.state.ResetZoom()
	case ActionUpload:
		return m.OpenUploadPrompt()
	case ActionFit:
		m.state.Fit()
	}
	return nil
}

// View renders the image with any open popup drawn over it.
func (m *Model) View() string {
	if m.cols <= 0 || m.rows <= 0 {
		return ""
	}
	base := m.renderImage()
	lines := strings.Split(base, "\n")

	if m.menu.IsOpen() {
		x, y := m.menu.Position()
		lines = overlay(lines, strings.Split(m.menu.View(), "\n"), x, y)
	}
	if m.prompting {
		box := m.theme.PromptBox.Width(max(m.cols-4, 10)).Render(m.prompt.View())
		boxLines := strings.Split(box, "\n")
		lines = overlay(lines, boxLines, 0, max(m.rows-len(boxLines), 0))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderImage() string {
	if m.image == nil {
		hint := m.theme.PaneTitle.Render("No image. Right click or press m for Upload Image.")
		lines := make([]string, m.rows)
		lines[0] = ansi.Truncate(hint, m.cols, "")
		return strings.Join(lines, "\n")
	}

	ox, oy := m.state.Offset()
	key := renderKey{img: m.image, zoom: m.state.Zoom(), ox: ox, oy: oy, cols: m.cols, rows: m.rows}
	if key != m.cacheKey || m.cache == "" {
		m.cache = m.renderer.Render(m.image, m.state, m.cols, m.rows)
		m.cacheKey = key
	}
	return m.cache
}

// overlay draws top over base starting at cell (x, y). Cells right of the
// popup on covered lines are dropped.
func overlay(base, top []string, x, y int) []string {
	out := append([]string(nil), base...)
	for i, line := range top {
		row := y + i
		if row < 0 || row >= len(out) {
			continue
		}
		left := ansi.Truncate(out[row], x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		out[row] = left + "\x1b[0m" + line
	}
	return out
}

func notice(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text, IsError: isError} }
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
