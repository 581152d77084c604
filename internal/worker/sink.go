// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import tea "github.com/charmbracelet/bubbletea"

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// FragmentMsg delivers one streamed text fragment.
type FragmentMsg struct {
	TurnID string
	Text   string
}

// FinishedMsg signals that the stream completed.
type FinishedMsg struct {
	TurnID string
	Full   string
}

// FailedMsg signals that the turn failed.
type FailedMsg struct {
	TurnID string
	Err    error
}

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// TeaSink forwards worker signals into a running Bubble Tea program, so the
// interactive loop processes them in arrival order.
type TeaSink struct {
	sender Sender
}

// NewTeaSink creates a sink that posts to sender.
func NewTeaSink(sender Sender) *TeaSink {
	return &TeaSink{sender: sender}
}

func (s *TeaSink) Partial(turnID, fragment string) {
	s.sender.Send(FragmentMsg{TurnID: turnID, Text: fragment})
}

func (s *TeaSink) Finished(turnID, full string) {
	s.sender.Send(FinishedMsg{TurnID: turnID, Full: full})
}

func (s *TeaSink) Failed(turnID string, err error) {
	s.sender.Send(FailedMsg{TurnID: turnID, Err: err})
}

// =============================================================================
// CHANNEL SINK
// =============================================================================

// Event is a worker signal as a plain value. Exactly one of the message
// types is set.
type Event struct {
	Fragment *FragmentMsg
	Finished *FinishedMsg
	Failed   *FailedMsg
}

// ChanSink forwards worker signals onto a channel for loops that are not
// driven by Bubble Tea, such as the line-mode REPL.
type ChanSink chan Event

func (c ChanSink) Partial(turnID, fragment string) {
	c <- Event{Fragment: &FragmentMsg{TurnID: turnID, Text: fragment}}
}

func (c ChanSink) Finished(turnID, full string) {
	c <- Event{Finished: &FinishedMsg{TurnID: turnID, Full: full}}
}

func (c ChanSink) Failed(turnID string, err error) {
	c <- Event{Failed: &FailedMsg{TurnID: turnID, Err: err}}
}
