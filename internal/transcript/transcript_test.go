// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/vizchat/internal/model"
	"github.com/jeranaias/vizchat/internal/ui/styles"
)

func newTestLog() *Log {
	l := NewLog(styles.NewThemeForProfile(termenv.Ascii, true), "notty")
	l.SetSize(60, 10)
	return l
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "hello", "hello"},
		{"keeps newlines and tabs", "a\n\tb", "a\n\tb"},
		{"strips escapes", "\x1b[31mred\x1b[0m", "red"},
		{"drops bell", "ding\x07", "ding"},
		{"composes accents", "cafe\u0301", "caf\u00e9"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Sanitize(tc.in))
		})
	}
}

func TestMarkdown_RenderKeepsText(t *testing.T) {
	md := NewMarkdown("notty")
	out := md.Render("Some **bold** words", 40)
	require.Contains(t, out, "bold")
	require.Contains(t, out, "Some")

	// Width changes rebuild the renderer.
	out = md.Render("short", 20)
	require.Contains(t, out, "short")
	require.Equal(t, 20, md.width)
}

func TestResolveStyle(t *testing.T) {
	tests := []struct {
		name  string
		style string
		dark  bool
		want  string
	}{
		{"auto on dark", "auto", true, "dark"},
		{"auto on light", "auto", false, "light"},
		{"empty is auto", "", true, "dark"},
		{"explicit kept", "notty", true, "notty"},
		{"explicit light on dark", "light", true, "light"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveStyle(tc.style, tc.dark))
		})
	}
}

func TestNewLog_NeverUsesAutoStyle(t *testing.T) {
	dark := NewLog(styles.NewThemeForProfile(termenv.Ascii, true), "auto")
	require.Equal(t, "dark", dark.markdown.style)

	light := NewLog(styles.NewThemeForProfile(termenv.Ascii, false), "")
	require.Equal(t, "light", light.markdown.style)

	// Line mode keeps auto; it renders outside any TUI.
	require.Equal(t, "auto", NewMarkdown("").style)
}

func TestLog_AppendOrderAndLabels(t *testing.T) {
	l := newTestLog()

	l.AppendUser("describe it")
	l.AppendAssistant("Hello", true)
	l.AppendAssistant("world", false)

	blocks := l.Blocks()
	require.Len(t, blocks, 3)
	require.Equal(t, model.RoleUser, blocks[0].Role)
	require.True(t, blocks[1].Labeled)
	require.False(t, blocks[2].Labeled)

	view := ansi.Strip(l.View())
	require.Equal(t, 1, strings.Count(view, "ASSISTANT"))
	require.Equal(t, 1, strings.Count(view, "USER"))
	require.Less(t, strings.Index(view, "Hello"), strings.Index(view, "world"))
}

func TestLog_UserTextIsVerbatim(t *testing.T) {
	l := newTestLog()
	l.AppendUser("**not bold**")

	view := ansi.Strip(l.View())
	require.Contains(t, view, "**not bold**")
}

func TestLog_Clear(t *testing.T) {
	l := newTestLog()
	l.AppendUser("one")
	l.AppendAssistant("two", true)

	l.Clear()
	require.Zero(t, l.Len())
	require.NotContains(t, ansi.Strip(l.View()), "one")
}

func TestLog_AutoScrollsToNewest(t *testing.T) {
	l := newTestLog()
	for i := 0; i < 20; i++ {
		l.AppendAssistant("paragraph", i == 0)
	}
	l.AppendAssistant("newest", false)

	require.True(t, l.AtBottom())
	require.Contains(t, ansi.Strip(l.View()), "newest")
}

func TestLog_ScrollKeys(t *testing.T) {
	l := newTestLog()
	for i := 0; i < 20; i++ {
		l.AppendAssistant("paragraph", false)
	}

	l.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	require.False(t, l.AtBottom())
	require.Contains(t, ansi.Strip(l.View()), "more below")

	l.Update(tea.KeyMsg{Type: tea.KeyEnd})
	require.True(t, l.AtBottom())

	l.Update(tea.MouseMsg{Type: tea.MouseWheelUp})
	require.False(t, l.AtBottom())
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, nil, 0)

	p.AppendUser("what is this?")
	p.AppendAssistant("A cat.", true)
	p.AppendAssistant("It sleeps.", false)

	out := buf.String()
	require.Contains(t, out, "USER: what is this?")
	require.Equal(t, 1, strings.Count(out, "ASSISTANT:"))
	require.Less(t, strings.Index(out, "A cat."), strings.Index(out, "It sleeps."))
}
