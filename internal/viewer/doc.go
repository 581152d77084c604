// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package viewer shows an image in the terminal with zoom and pan.
//
// State holds the geometry in virtual pane pixels. A cell shows two
// half-block samples stacked vertically, each SamplePixels square, so the
// fit zoom of an ordinary photo stays inside the zoom bounds. Renderer
// draws the scaled image with half-block glyphs. Model is the bubbletea
// component that maps mouse events to State and hosts the context menu:
//
//   - ctrl+wheel zooms toward the cursor, clamped to [MinZoom, MaxZoom]
//   - left drag pans
//   - right click opens Copy Image Path, Reset Zoom, Upload Image and Fit
//
// Watcher reloads the image when its file is rewritten on disk.
package viewer
