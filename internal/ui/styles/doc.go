// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for vizchat.
//
// Colors are lipgloss.AdaptiveColor values so one palette serves light and
// dark terminals. Theme bundles the styles for each screen region and picks
// the layout mode from the terminal width.
//
// # Usage
//
//	theme := styles.NewTheme()
//	theme.SetSize(msg.Width, msg.Height)
//	label := theme.AssistantLabel.Render("ASSISTANT")
package styles
