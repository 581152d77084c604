// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viewer

import "image"

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// MinZoom and MaxZoom bound every zoom change.
	MinZoom = 0.1
	MaxZoom = 5.0

	zoomInStep  = 1.1
	zoomOutStep = 0.9

	// SamplePixels is the side of one half-block sample in viewer pixels.
	// A cell is one sample wide and two tall, so a pane of c x r cells is
	// c*SamplePixels x r*2*SamplePixels pixels.
	SamplePixels = 8
)

// =============================================================================
// STATE
// =============================================================================

// State is the zoom and pan geometry of the image pane, in viewer pixels.
// It has no terminal dependency; Model converts cells to pixels.
type State struct {
	imgW, imgH int
	viewW      int
	viewH      int

	zoom    float64
	offsetX int
	offsetY int

	dragging bool
	dragX    int
	dragY    int
}

// NewState creates an empty state for a viewport of the given size.
func NewState(viewW, viewH int) *State {
	return &State{viewW: viewW, viewH: viewH, zoom: 1.0}
}

// HasImage reports whether an image has been loaded.
func (s *State) HasImage() bool {
	return s.imgW > 0 && s.imgH > 0
}

// Zoom returns the current zoom factor.
func (s *State) Zoom() float64 { return s.zoom }

// Offset returns the pan offset.
func (s *State) Offset() (int, int) { return s.offsetX, s.offsetY }

// ViewSize returns the viewport size in pixels.
func (s *State) ViewSize() (int, int) { return s.viewW, s.viewH }

// Dragging reports whether a pan is in progress.
func (s *State) Dragging() bool { return s.dragging }

// Load switches to a new image: the pan is cleared and the image is fit to
// the viewport.
func (s *State) Load(imgW, imgH int) {
	s.imgW, s.imgH = imgW, imgH
	s.offsetX, s.offsetY = 0, 0
	s.dragging = false
	s.Fit()
}

// Fit sets the zoom that shows the whole image, within the zoom bounds.
func (s *State) Fit() {
	s.zoom = s.fitZoom()
}

func (s *State) fitZoom() float64 {
	if !s.HasImage() || s.viewW <= 0 || s.viewH <= 0 {
		return 1.0
	}
	return clampZoom(min(float64(s.viewW)/float64(s.imgW), float64(s.viewH)/float64(s.imgH)))
}

// Resize records a new viewport size. Outside a drag the image is refit and
// the pan cleared; during a drag only the size changes.
func (s *State) Resize(viewW, viewH int) {
	s.viewW, s.viewH = viewW, viewH
	if s.dragging || !s.HasImage() {
		return
	}
	s.offsetX, s.offsetY = 0, 0
	s.Fit()
}

// ZoomAt applies wheel notches at the cursor position (cx, cy). Positive
// notches zoom in. The image point under the cursor stays under it.
func (s *State) ZoomAt(notches, cx, cy int) {
	if notches == 0 {
		return
	}
	old := s.zoom
	next := old
	for i := 0; i < notches; i++ {
		next *= zoomInStep
	}
	for i := 0; i > notches; i-- {
		next *= zoomOutStep
	}
	s.zoom = clampZoom(next)

	if !s.HasImage() {
		return
	}
	halfW, halfH := float64(s.viewW)/2, float64(s.viewH)/2
	relX := (float64(cx) - halfW - float64(s.offsetX)) / old
	relY := (float64(cy) - halfH - float64(s.offsetY)) / old
	s.offsetX = int(float64(cx) - (relX*s.zoom + halfW))
	s.offsetY = int(float64(cy) - (relY*s.zoom + halfH))
}

// ResetZoom sets the zoom back to 1.0 without touching the pan.
func (s *State) ResetZoom() {
	s.zoom = 1.0
}

// BeginDrag starts a pan at (x, y).
func (s *State) BeginDrag(x, y int) {
	s.dragging = true
	s.dragX, s.dragY = x, y
}

// DragTo moves the pan by the distance since the last drag position.
func (s *State) DragTo(x, y int) {
	if !s.dragging {
		return
	}
	s.offsetX += x - s.dragX
	s.offsetY += y - s.dragY
	s.dragX, s.dragY = x, y
}

// Pan shifts the image by (dx, dy) pixels.
func (s *State) Pan(dx, dy int) {
	s.offsetX += dx
	s.offsetY += dy
}

// EndDrag finishes a pan.
func (s *State) EndDrag() {
	s.dragging = false
}

// Placement returns the scaled image rectangle in viewport coordinates. It
// may extend past the viewport on any side.
func (s *State) Placement() image.Rectangle {
	if !s.HasImage() {
		return image.Rectangle{}
	}
	sw := int(float64(s.imgW) * s.zoom)
	sh := int(float64(s.imgH) * s.zoom)
	x := (s.viewW-sw)/2 + s.offsetX
	y := (s.viewH-sh)/2 + s.offsetY
	return image.Rect(x, y, x+sw, y+sh)
}

func clampZoom(z float64) float64 {
	return max(MinZoom, min(z, MaxZoom))
}
