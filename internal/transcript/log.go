// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/vizchat/internal/model"
	"github.com/jeranaias/vizchat/internal/ui/styles"
)

// =============================================================================
// BLOCKS
// =============================================================================

// Block is one rendered entry of the transcript.
type Block struct {
	Role    model.Role
	Text    string
	Labeled bool
}

// =============================================================================
// LOG
// =============================================================================

// Log is the transcript pane. Blocks can only be appended; Clear exists for
// session reset. Every append scrolls to the newest content.
type Log struct {
	blocks   []Block
	rendered []string

	viewport viewport.Model
	markdown *Markdown
	theme    *styles.Theme
	width    int
	height   int
	ready    bool

	// Scroll position tracking
	scrollY    int
	maxScrollY int
}

// NewLog creates an empty transcript using the given glamour style. "auto"
// is resolved against the theme's background.
func NewLog(theme *styles.Theme, markdownStyle string) *Log {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()
	return &Log{
		viewport: vp,
		markdown: NewMarkdown(ResolveStyle(markdownStyle, theme.IsDark)),
		theme:    theme,
		width:    80,
		height:   20,
	}
}

// SetSize updates the pane dimensions and re-renders every block.
func (l *Log) SetSize(width, height int) {
	if width == l.width && height == l.height && l.ready {
		return
	}
	l.width = width
	l.height = height
	l.viewport.Width = width
	l.viewport.Height = height
	l.ready = true

	l.rendered = l.rendered[:0]
	for _, b := range l.blocks {
		l.rendered = append(l.rendered, l.renderBlock(b))
	}
	l.refresh()
}

// AppendUser adds a user block. The text is shown verbatim, never as markdown.
func (l *Log) AppendUser(text string) {
	l.append(Block{Role: model.RoleUser, Text: Sanitize(text), Labeled: true})
}

// AppendAssistant adds one assistant paragraph rendered as markdown. The
// ASSISTANT label is drawn only when labeled is true.
func (l *Log) AppendAssistant(paragraph string, labeled bool) {
	l.append(Block{Role: model.RoleAssistant, Text: paragraph, Labeled: labeled})
}

// Clear removes every block.
func (l *Log) Clear() {
	l.blocks = nil
	l.rendered = nil
	l.refresh()
}

// Blocks returns a copy of the transcript entries.
func (l *Log) Blocks() []Block {
	return append([]Block(nil), l.blocks...)
}

// Len returns the number of blocks.
func (l *Log) Len() int {
	return len(l.blocks)
}

func (l *Log) append(b Block) {
	l.blocks = append(l.blocks, b)
	l.rendered = append(l.rendered, l.renderBlock(b))
	l.refresh()
}

// renderBlock draws a block at the current width.
func (l *Log) renderBlock(b Block) string {
	var sb strings.Builder
	switch b.Role {
	case model.RoleUser:
		sb.WriteString(l.theme.UserLabel.Render(b.Role.Label()))
		sb.WriteString("\n")
		sb.WriteString(l.theme.UserText.Width(l.width).Render(b.Text))
	default:
		if b.Labeled {
			sb.WriteString(l.theme.AssistantLabel.Render(b.Role.Label()))
			sb.WriteString("\n")
		}
		sb.WriteString(l.markdown.Render(b.Text, l.width))
	}
	return sb.String()
}

// refresh rebuilds the viewport content and pins it to the bottom.
func (l *Log) refresh() {
	content := strings.Join(l.rendered, "\n\n")
	l.viewport.SetContent(content)

	lines := l.viewport.TotalLineCount()
	l.maxScrollY = max(0, lines-l.height)
	l.viewport.GotoBottom()
	l.scrollY = l.viewport.YOffset
}

// =============================================================================
// SCROLLING
// =============================================================================

// ScrollUp scrolls up by the specified number of lines.
func (l *Log) ScrollUp(lines int) {
	l.scrollY = max(0, l.scrollY-lines)
	l.viewport.SetYOffset(l.scrollY)
}

// ScrollDown scrolls down by the specified number of lines.
func (l *Log) ScrollDown(lines int) {
	l.scrollY = min(l.maxScrollY, l.scrollY+lines)
	l.viewport.SetYOffset(l.scrollY)
}

// AtBottom reports whether the newest content is visible.
func (l *Log) AtBottom() bool {
	return l.viewport.AtBottom()
}

// Update handles scrolling keys and the mouse wheel.
func (l *Log) Update(msg tea.Msg) (*Log, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up":
			l.ScrollUp(1)
			return l, nil
		case "down":
			l.ScrollDown(1)
			return l, nil
		case "pgup":
			l.ScrollUp(l.height)
			return l, nil
		case "pgdown":
			l.ScrollDown(l.height)
			return l, nil
		case "home":
			l.viewport.GotoTop()
			l.scrollY = 0
			return l, nil
		case "end":
			l.viewport.GotoBottom()
			l.scrollY = l.viewport.YOffset
			return l, nil
		}

	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp:
			l.ScrollUp(3)
			return l, nil
		case tea.MouseWheelDown:
			l.ScrollDown(3)
			return l, nil
		}
	}
	return l, nil
}

// View renders the viewport with a position hint when scrolled up.
func (l *Log) View() string {
	if !l.ready {
		return ""
	}
	view := l.viewport.View()
	if l.AtBottom() || l.maxScrollY == 0 {
		return view
	}
	// The hint replaces the last visible line so the pane height is stable.
	hint := l.theme.ScrollHint.Render(fmt.Sprintf("v [%d/%d] more below", l.scrollY+1, l.maxScrollY+1))
	lines := strings.Split(view, "\n")
	lines[len(lines)-1] = hint
	return strings.Join(lines, "\n")
}
