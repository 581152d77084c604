// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"image"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/vizchat/internal/model"
	"github.com/jeranaias/vizchat/internal/ollama"
	"github.com/jeranaias/vizchat/internal/session"
	"github.com/jeranaias/vizchat/internal/transcript"
	"github.com/jeranaias/vizchat/internal/ui/components"
	"github.com/jeranaias/vizchat/internal/ui/styles"
	"github.com/jeranaias/vizchat/internal/viewer"
	"github.com/jeranaias/vizchat/internal/worker"
)

// fakeLauncher records requests and never streams on its own.
type fakeLauncher struct {
	reqs []worker.Request
	ctxs []context.Context
}

func (f *fakeLauncher) Start(ctx context.Context, req worker.Request, sink worker.Sink) <-chan struct{} {
	f.reqs = append(f.reqs, req)
	f.ctxs = append(f.ctxs, ctx)
	done := make(chan struct{})
	close(done)
	return done
}

type harness struct {
	model    Model
	ctrl     *session.Controller
	log      *transcript.Log
	viewer   *viewer.Model
	launcher *fakeLauncher
	images   []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	theme := styles.NewThemeForProfile(termenv.Ascii, true)
	log := transcript.NewLog(theme, "notty")
	v := viewer.NewModel(theme, viewer.NewRenderer(termenv.Ascii), ImageChanged)
	launcher := &fakeLauncher{}

	ctrl := session.New(session.Options{
		SystemPrompt: "describe",
		Model:        ollama.DefaultModel,
		Transcript:   log,
		Images:       v,
		Launcher:     launcher,
		Sink:         worker.ChanSink(make(chan worker.Event, 1)),
	})
	sel := components.NewModelSelector(theme, model.NewSelection([]string{"a", "b"}, "a"), nil, nil)

	h := &harness{ctrl: ctrl, log: log, viewer: v, launcher: launcher}
	h.model = New(Options{
		Controller: ctrl,
		Transcript: log,
		Viewer:     v,
		Selector:   sel,
		Theme:      theme,
		OnImage:    func(p string) { h.images = append(h.images, p) },
	})
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) loadImage() {
	h.viewer.SetImage(&viewer.Image{Path: "/tmp/shot.png", Bitmap: image.NewRGBA(image.Rect(0, 0, 8, 8))})
}

func TestSubmitWithoutImageShowsDialog(t *testing.T) {
	h := newHarness(t)
	h.typeText("what is this?")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})

	require.True(t, h.model.Dialog().IsVisible())
	require.Equal(t, "No Image", h.model.Dialog().Title())
	require.Empty(t, h.launcher.reqs)
	require.Empty(t, h.ctrl.History())
	require.Equal(t, "what is this?", h.model.Input(), "input is kept")

	// The dialog blocks typing until dismissed.
	h.typeText("x")
	require.Equal(t, "what is this?", h.model.Input())
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, h.model.Dialog().IsVisible())
}

func TestSubmitStreamsIntoTranscript(t *testing.T) {
	h := newHarness(t)
	h.loadImage()

	h.typeText("describe it")
	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd, "spinner starts")
	require.Len(t, h.launcher.reqs, 1)
	require.Empty(t, h.model.Input())
	require.True(t, h.ctrl.Busy())

	turnID := h.launcher.reqs[0].TurnID
	h.send(worker.FragmentMsg{TurnID: turnID, Text: "Hello "})
	h.send(worker.FragmentMsg{TurnID: turnID, Text: "world\n\n"})
	h.send(worker.FragmentMsg{TurnID: "stale", Text: "ignored"})
	h.send(worker.FinishedMsg{TurnID: turnID, Full: "Hello world\n\nGoodbye"})

	require.False(t, h.ctrl.Busy())
	blocks := h.log.Blocks()
	require.Len(t, blocks, 2)
	require.Equal(t, model.RoleUser, blocks[0].Role)
	require.Equal(t, "Hello world", blocks[1].Text)
	require.True(t, blocks[1].Labeled)

	history := h.ctrl.History()
	require.Equal(t, "Hello world\n\nGoodbye", history[len(history)-1].Content)
}

func TestBusySubmitIsRejected(t *testing.T) {
	h := newHarness(t)
	h.loadImage()
	h.typeText("first")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})

	h.typeText("second")
	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd, "toast ticker starts")
	require.Len(t, h.launcher.reqs, 1)
	require.Equal(t, "second", h.model.Input())
}

func TestFailureShowsRequestDialog(t *testing.T) {
	h := newHarness(t)
	h.loadImage()
	h.typeText("hi")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})

	turnID := h.launcher.reqs[0].TurnID
	h.send(worker.FailedMsg{TurnID: turnID, Err: worker.Describe(ollama.ErrNotRunning)})

	require.False(t, h.ctrl.Busy())
	require.True(t, h.model.Dialog().IsVisible())
	require.Equal(t, components.CategoryNetwork, h.model.Dialog().Category())
	require.Len(t, h.log.Blocks(), 1, "no assistant entry on failure")
}

func TestDialogIsTheModelsOwn(t *testing.T) {
	h := newHarness(t)
	h.typeText("hi")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})

	d := h.model.Dialog()
	require.True(t, d.IsVisible())
	d.Hide()
	require.False(t, h.model.Dialog().IsVisible())

	h.typeText("x")
	require.Equal(t, "hix", h.model.Input(), "hidden dialog no longer blocks typing")
}

func TestResetCancelsAndClears(t *testing.T) {
	h := newHarness(t)
	h.loadImage()
	h.typeText("hi")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	ctx := h.launcher.ctxs[0]

	h.send(tea.KeyMsg{Type: tea.KeyCtrlL})

	require.Error(t, ctx.Err())
	require.Empty(t, h.ctrl.History())
	require.Zero(t, h.log.Len())
	require.False(t, h.ctrl.Busy())
}

func TestQuitClosesController(t *testing.T) {
	h := newHarness(t)
	h.loadImage()
	h.typeText("hi")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	ctx := h.launcher.ctxs[0]

	cmd := h.send(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
	require.True(t, h.model.Quitting())
	require.Error(t, ctx.Err())
	require.ErrorIs(t, h.ctrl.Submit("again"), session.ErrClosed)
}

func TestFocusCyclesAndModelKeys(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, FocusInput, h.model.Focus())

	// In the input, brackets are text.
	h.typeText("]")
	require.Equal(t, "]", h.model.Input())

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, FocusTranscript, h.model.Focus())

	cmd := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	require.NotNil(t, cmd)
	changed := cmd()
	require.Equal(t, components.ModelChangedMsg{Name: "b"}, changed)
	h.send(changed)
	require.Equal(t, "b", h.ctrl.Model())

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, FocusInput, h.model.Focus())
}

func TestUploadNotifiesOwner(t *testing.T) {
	h := newHarness(t)
	img := &viewer.Image{Path: "/tmp/new.png", Bitmap: image.NewRGBA(image.Rect(0, 0, 4, 4))}

	cmd := h.send(viewer.LoadedMsg{Image: img, Upload: true})
	require.NotNil(t, cmd)
	h.send(cmd())

	require.Equal(t, []string{"/tmp/new.png"}, h.images)
	require.Equal(t, "/tmp/new.png", h.viewer.ImagePath())
}

func TestViewLayout(t *testing.T) {
	h := newHarness(t)
	h.loadImage()
	view := ansi.Strip(h.model.View())

	require.Contains(t, view, "vizchat")
	require.Contains(t, view, "Ask about the image")
	require.LessOrEqual(t, len(splitLines(view)), 30)

	h.send(tea.WindowSizeMsg{Width: 60, Height: 30})
	require.Equal(t, styles.LayoutStacked, h.model.layout.mode)
}

func TestComputeLayout(t *testing.T) {
	l := computeLayout(100, 30, 0.5, styles.LayoutSideBySide)
	require.Equal(t, rect{x: 0, y: 1, w: 50, h: 27}, l.image)
	require.Equal(t, rect{x: 50, y: 1, w: 50, h: 27}, l.transcript)
	require.Equal(t, 28, l.input.y)

	l = computeLayout(60, 30, 0.5, styles.LayoutStacked)
	require.Equal(t, 13, l.image.h)
	require.Equal(t, 14, l.transcript.y)
	require.True(t, l.transcript.contains(5, 20))
	require.False(t, l.image.contains(5, 20))
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}
