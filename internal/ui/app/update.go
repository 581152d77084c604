// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/vizchat/internal/session"
	"github.com/jeranaias/vizchat/internal/ui/components"
	"github.com/jeranaias/vizchat/internal/viewer"
	"github.com/jeranaias/vizchat/internal/worker"
)

// Update handles every message for the program.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	// Worker signals
	case worker.FragmentMsg:
		m.ctrl.HandleFragment(msg.TurnID, msg.Text)
		return m, nil

	case worker.FinishedMsg:
		if m.ctrl.HandleFinished(msg.TurnID, msg.Full) {
			m.spinner.Stop()
		}
		return m, nil

	case worker.FailedMsg:
		if m.ctrl.HandleFailed(msg.TurnID, msg.Err) {
			m.spinner.Stop()
			m.showDialog(components.RequestError(m.ctrl.Model(), msg.Err))
		}
		return m, nil

	// Model selector
	case components.ModelChangedMsg:
		m.ctrl.SetModel(msg.Name)
		m.logger.Info("model selected", "model", msg.Name)
		return m, nil

	case components.ModelsRefreshedMsg:
		cmd := m.selector.Update(msg)
		return m, tea.Batch(cmd, m.toast("Model list refreshed", components.ToastKindSuccess))

	case components.RefreshThrottledMsg:
		return m, m.toast("Model list was just refreshed", components.ToastKindWarning)

	// Image pane
	case viewer.LoadedMsg:
		before := m.viewer.ImagePath()
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		if after := m.viewer.ImagePath(); !msg.Upload && after != before {
			m.onImage(after)
		}
		return m, cmd

	case viewer.LoadFailedMsg:
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		return m, cmd

	case viewer.NoticeMsg:
		kind := components.ToastKindStatus
		if msg.IsError {
			kind = components.ToastKindError
		}
		return m, m.toast(msg.Text, kind)

	case ImageChangedMsg:
		m.onImage(msg.Path)
		m.logger.Info("image loaded", "path", msg.Path)
		return m, m.toast("Loaded "+filepath.Base(msg.Path), components.ToastKindSuccess)

	// Animation
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case components.ToastTickMsg:
		if m.toasts.Tick(msg.Time) {
			return m, components.ToastTickCmd()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	// Cursor blink and other input internals.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}

	// A visible dialog blocks everything until dismissed.
	if m.dialog.IsVisible() {
		m.dialog, _ = m.dialog.Update(msg)
		return m, nil
	}

	// Popups in the image pane own the keyboard while open.
	if m.viewer.Capturing() {
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Reset):
		m.ctrl.Reset()
		m.spinner.Stop()
		m.input.Reset()
		return m, m.toast("New session", components.ToastKindStatus)

	case key.Matches(msg, m.keys.OpenImage):
		m.setFocus(FocusImage)
		return m, m.viewer.OpenUploadPrompt()

	case key.Matches(msg, m.keys.Focus):
		m.setFocus(m.focus.next())
		return m, nil

	case key.Matches(msg, m.keys.NextModel):
		return m, m.selector.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})

	case key.Matches(msg, m.keys.PrevModel):
		return m, m.selector.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})

	case key.Matches(msg, m.keys.Refresh):
		return m, m.selector.Refresh()
	}

	switch m.focus {
	case FocusInput:
		if key.Matches(msg, m.keys.Submit) {
			return m.submit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case FocusTranscript:
		if cmd := m.selector.Update(msg); cmd != nil {
			return m, cmd
		}
		m.transcript.Update(msg)
		return m, nil

	case FocusImage:
		if cmd := m.selector.Update(msg); cmd != nil {
			return m, cmd
		}
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		return m, cmd
	}
	return m, nil
}

// submit sends the input line to the controller.
func (m Model) submit() (tea.Model, tea.Cmd) {
	err := m.ctrl.Submit(m.input.Value())
	switch {
	case err == nil:
		m.input.Reset()
		return m, m.spinner.Start()

	case errors.Is(err, session.ErrEmptyInput), errors.Is(err, session.ErrClosed):
		return m, nil

	case errors.Is(err, session.ErrBusy):
		return m, m.toast("Still waiting for the previous reply", components.ToastKindWarning)

	case errors.Is(err, session.ErrNoImage):
		m.showDialog(components.NoImageError())
		return m, nil

	default:
		m.showDialog(components.NewErrorDialog(components.CategoryUnknown, "Send Failed", err.Error()))
		return m, nil
	}
}

// quit tears down the controller, which cancels any streaming reply.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.ctrl.Close()
	m.spinner.Stop()
	return m, tea.Quit
}

// =============================================================================
// MOUSE
// =============================================================================

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.dialog.IsVisible() {
		return m, nil
	}

	inImage := m.viewer.Contains(msg.X, msg.Y)
	inTranscript := m.layout.transcript.contains(msg.X, msg.Y)

	switch msg.Type {
	case tea.MouseWheelUp, tea.MouseWheelDown:
		if inTranscript {
			m.transcript.Update(msg)
			return m, nil
		}
	case tea.MouseLeft, tea.MouseRight:
		switch {
		case inImage:
			m.setFocus(FocusImage)
		case inTranscript:
			m.setFocus(FocusTranscript)
		case m.layout.input.contains(msg.X, msg.Y):
			m.setFocus(FocusInput)
		}
	}

	// Drags keep going even when the pointer leaves the pane.
	var cmd tea.Cmd
	m.viewer, cmd = m.viewer.Update(msg)
	return m, cmd
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) setFocus(f Focus) {
	m.focus = f
	if f == FocusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) showDialog(d components.ErrorDialog) {
	d.SetLogsPath(m.logPath)
	d.SetSize(m.width, m.height)
	d.Show()
	m.dialog = d
}

// toast shows a notice and starts the expiry ticker if it was idle.
func (m *Model) toast(text string, kind components.ToastKind) tea.Cmd {
	idle := !m.toasts.HasToasts()
	m.toasts.Add(text, kind)
	if idle {
		return components.ToastTickCmd()
	}
	return nil
}
