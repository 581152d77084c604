// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the vizchat packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth, StringWidth: cell-width aware layout helpers (go-runewidth)
//   - ShortenPath: keeps the file name visible in narrow headers
//
// Formatting:
//   - Percent, FormatDuration, IntToString
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
