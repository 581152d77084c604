// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// Only the two endpoints the chat client needs are covered: the model list
// (/api/tags) and streaming chat (/api/chat). Images travel base64-encoded in
// Message.Images.
//
// # Usage
//
//	client := ollama.NewClient()
//	names := client.ModelNames(ctx, ollama.DefaultModel)
//	err := client.ChatStream(ctx, names[0], messages, func(chunk ollama.StreamChunk) {
//	    fmt.Print(chunk.Content)
//	})
//
// ModelNames never fails: any error collapses to the fallback model so the
// model selector always has exactly one usable entry.
package ollama
