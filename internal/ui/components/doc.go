// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the widgets around the image and transcript
// panes: header, model selector, busy spinner, status bar, toasts and the
// blocking error dialog.
package components
