// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Message: one history entry with role, content and an optional image path
//   - History: the append-only message log owned by the session controller
//   - Selection: the model list from the server plus the chosen entry
//   - Role: message role enumeration (user, assistant, system)
//
// # Usage
//
//	h := model.NewHistory()
//	h.Append(model.NewSystemMessage(prompt), model.NewImageMessage("what is this?", "cat.png"))
//	msgs, err := h.ToOllama() // image bytes are read and encoded here
package model
