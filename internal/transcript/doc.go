// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript renders the conversation as an append-only list of
// role-tagged blocks.
//
// Two renderers share the same append contract: Log draws into a scrollable
// bubbles viewport for the TUI, Printer writes plain lines for the CLI.
// User text is always shown verbatim; assistant paragraphs go through glamour.
package transcript
