// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import "time"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Label returns the upper-case tag drawn in front of a transcript block.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleAssistant:
		return "ASSISTANT"
	case RoleSystem:
		return "SYSTEM"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single entry in the conversation history.
// Only the first user message of a session carries an ImagePath.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	ImagePath string    `json:"image,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a new message stamped with the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewImageMessage creates the opening user message that carries the image.
func NewImageMessage(content, imagePath string) Message {
	msg := NewMessage(RoleUser, content)
	msg.ImagePath = imagePath
	return msg
}

// NewAssistantMessage creates a completed assistant message.
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// HasImage reports whether the message references an image.
func (m Message) HasImage() bool {
	return m.ImagePath != ""
}
