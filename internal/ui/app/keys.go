// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the global key bindings. Keys not listed here go to the
// focused pane.
type KeyMap struct {
	Quit      key.Binding
	Submit    key.Binding
	Reset     key.Binding
	OpenImage key.Binding
	Focus     key.Binding
	NextModel key.Binding
	PrevModel key.Binding
	Refresh   key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+q"),
			key.WithHelp("esc", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "new session"),
		),
		OpenImage: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "open image"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pane"),
		),
		NextModel: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n / ]", "next model"),
		),
		PrevModel: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p / [", "previous model"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh models"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// =============================================================================
// FOCUS
// =============================================================================

// Focus names the pane receiving unbound keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusTranscript
	FocusImage
)

func (f Focus) String() string {
	switch f {
	case FocusInput:
		return "input"
	case FocusTranscript:
		return "transcript"
	case FocusImage:
		return "image"
	default:
		return "unknown"
	}
}

// next cycles input, transcript, image.
func (f Focus) next() Focus {
	return (f + 1) % 3
}
