// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import "slices"

// =============================================================================
// MODEL SELECTION
// =============================================================================

// Selection tracks the model list offered by the server and the entry the
// user has chosen. The list is never empty once Update has been called.
type Selection struct {
	names   []string
	current string
}

// NewSelection builds a selection from a fresh model list. The persisted
// model wins if the server still offers it, otherwise the first entry.
func NewSelection(names []string, persisted string) *Selection {
	s := &Selection{}
	s.Update(names, persisted)
	return s
}

// Update replaces the model list. The current choice is kept when still
// listed, then the persisted one, then the first entry.
func (s *Selection) Update(names []string, persisted string) {
	s.names = append([]string(nil), names...)
	switch {
	case s.current != "" && slices.Contains(s.names, s.current):
	case persisted != "" && slices.Contains(s.names, persisted):
		s.current = persisted
	case len(s.names) > 0:
		s.current = s.names[0]
	default:
		s.current = ""
	}
}

// Names returns a copy of the model list.
func (s *Selection) Names() []string {
	return append([]string(nil), s.names...)
}

// Current returns the chosen model name.
func (s *Selection) Current() string {
	return s.current
}

// Index returns the position of the current model, or -1.
func (s *Selection) Index() int {
	return slices.Index(s.names, s.current)
}

// Select picks a model by name. Unknown names are ignored.
func (s *Selection) Select(name string) bool {
	if !slices.Contains(s.names, name) {
		return false
	}
	s.current = name
	return true
}

// Cycle moves the choice by delta entries, wrapping at both ends.
func (s *Selection) Cycle(delta int) string {
	n := len(s.names)
	if n == 0 {
		return s.current
	}
	i := s.Index()
	if i < 0 {
		i = 0
	}
	i = ((i+delta)%n + n) % n
	s.current = s.names[i]
	return s.current
}
