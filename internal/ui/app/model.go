// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the full-screen terminal front-end: image pane, transcript,
// input row and model selector around one session controller.
package app

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/vizchat/internal/logging"
	"github.com/jeranaias/vizchat/internal/session"
	"github.com/jeranaias/vizchat/internal/transcript"
	"github.com/jeranaias/vizchat/internal/ui/components"
	"github.com/jeranaias/vizchat/internal/ui/styles"
	"github.com/jeranaias/vizchat/internal/viewer"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ImageChangedMsg reports an image picked through the viewer's Upload Image.
type ImageChangedMsg struct {
	Path string
}

// ImageChanged is the viewer.ImageSink used by the app.
func ImageChanged(img *viewer.Image) tea.Cmd {
	return func() tea.Msg { return ImageChangedMsg{Path: img.Path} }
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options wires the model. Controller, Transcript, Viewer and Selector are
// required and must be the same instances the controller was built with.
type Options struct {
	Controller *session.Controller
	Transcript *transcript.Log
	Viewer     *viewer.Model
	Selector   *components.ModelSelector
	Theme      *styles.Theme
	Logger     *slog.Logger

	// ImageRatio is the share of the body given to the image pane.
	ImageRatio float64
	// LogPath is shown in error dialogs.
	LogPath string
	// OnImage is called whenever a different image is displayed.
	OnImage func(path string)
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	ctrl       *session.Controller
	transcript *transcript.Log
	viewer     *viewer.Model
	selector   *components.ModelSelector
	header     *components.Header
	status     *components.StatusBar
	toasts     *components.ToastManager
	theme      *styles.Theme
	logger     *slog.Logger

	input   textinput.Model
	spinner components.Spinner
	dialog  components.ErrorDialog
	keys    KeyMap
	focus   Focus

	imageRatio float64
	logPath    string
	onImage    func(path string)

	width    int
	height   int
	layout   layout
	quitting bool
}

// New creates the root model.
func New(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.ImageRatio <= 0 || opts.ImageRatio >= 1 {
		opts.ImageRatio = 0.5
	}
	if opts.OnImage == nil {
		opts.OnImage = func(string) {}
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = opts.Theme.InputPrompt
	ti.Placeholder = "Ask about the image..."
	ti.PlaceholderStyle = opts.Theme.InputPlaceholder
	ti.CharLimit = 8192
	ti.Focus()

	return Model{
		ctrl:       opts.Controller,
		transcript: opts.Transcript,
		viewer:     opts.Viewer,
		selector:   opts.Selector,
		header:     components.NewHeader(opts.Theme, opts.Selector),
		status:     components.NewStatusBar(opts.Theme),
		toasts:     components.NewToastManager(),
		theme:      opts.Theme,
		logger:     opts.Logger,
		input:      ti,
		spinner:    components.NewSpinner(),
		keys:       DefaultKeyMap(),
		imageRatio: opts.ImageRatio,
		logPath:    opts.LogPath,
		onImage:    opts.OnImage,
		width:      80,
		height:     24,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Focus returns the focused pane.
func (m Model) Focus() Focus { return m.focus }

// Input returns the current input text.
func (m Model) Input() string { return m.input.Value() }

// Dialog returns the error dialog.
func (m *Model) Dialog() *components.ErrorDialog { return &m.dialog }

// Quitting reports whether the program is shutting down.
func (m Model) Quitting() bool { return m.quitting }
