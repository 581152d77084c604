// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viewer

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestState_LoadFits(t *testing.T) {
	s := NewState(100, 50)
	s.Load(200, 200)

	require.InDelta(t, 0.25, s.Zoom(), 1e-9)
	x, y := s.Offset()
	require.Zero(t, x)
	require.Zero(t, y)
	require.Equal(t, image.Rect(25, 0, 75, 50), s.Placement())
}

func TestState_ZoomIsBounded(t *testing.T) {
	s := NewState(100, 100)
	s.Load(100, 100)

	for i := 0; i < 100; i++ {
		s.ZoomAt(1, 50, 50)
		require.LessOrEqual(t, s.Zoom(), MaxZoom)
	}
	require.InDelta(t, MaxZoom, s.Zoom(), 1e-9)

	for i := 0; i < 100; i++ {
		s.ZoomAt(-1, 50, 50)
		require.GreaterOrEqual(t, s.Zoom(), MinZoom)
	}
	require.InDelta(t, MinZoom, s.Zoom(), 1e-9)
}

func TestState_FitStaysInBoundsInTerminalPane(t *testing.T) {
	// A 78x22 cell pane, as Model sizes it.
	viewW, viewH := 78*SamplePixels, 22*2*SamplePixels

	tests := []struct {
		name       string
		imgW, imgH int
	}{
		{"full hd photo", 1920, 1080},
		{"large scan", 6000, 4000},
		{"tall screenshot", 1080, 20000},
		{"icon", 16, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(viewW, viewH)
			s.Load(tt.imgW, tt.imgH)
			fit := s.Zoom()
			require.GreaterOrEqual(t, fit, MinZoom)
			require.LessOrEqual(t, fit, MaxZoom)

			s.ZoomAt(-1, viewW/2, viewH/2)
			require.LessOrEqual(t, s.Zoom(), fit, "zooming out must not enlarge the image")
			require.GreaterOrEqual(t, s.Zoom(), MinZoom)

			s.Fit()
			s.ZoomAt(1, viewW/2, viewH/2)
			require.GreaterOrEqual(t, s.Zoom(), fit, "zooming in must not shrink the image")
		})
	}
}

func TestState_FullHDFitShowsWholeImage(t *testing.T) {
	s := NewState(78*SamplePixels, 22*2*SamplePixels)
	s.Load(1920, 1080)

	require.InDelta(t, 624.0/1920.0, s.Zoom(), 1e-9)
	r := s.Placement()
	require.LessOrEqual(t, r.Dx(), 78*SamplePixels)
	require.LessOrEqual(t, r.Dy(), 22*2*SamplePixels)

	s.ZoomAt(-1, 39*SamplePixels, 22*SamplePixels)
	require.InDelta(t, 624.0/1920.0*0.9, s.Zoom(), 1e-9)
}

func TestState_ZoomSteps(t *testing.T) {
	s := NewState(100, 100)
	s.Load(100, 100)

	s.ZoomAt(1, 50, 50)
	require.InDelta(t, 1.1, s.Zoom(), 1e-9)

	s.ZoomAt(-1, 50, 50)
	require.InDelta(t, 0.99, s.Zoom(), 1e-9)
}

func TestState_ZoomKeepsCursorPoint(t *testing.T) {
	s := NewState(100, 100)
	s.Load(100, 100)

	// Centered cursor keeps the center fixed, so no pan is introduced.
	s.ZoomAt(1, 50, 50)
	x, y := s.Offset()
	require.Zero(t, x)
	require.Zero(t, y)

	// Off-center cursor shifts the image away from the cursor when zooming in.
	s = NewState(100, 100)
	s.Load(100, 100)
	s.ZoomAt(1, 90, 90)
	x, y = s.Offset()
	require.Equal(t, -4, x)
	require.Equal(t, -4, y)
}

func TestState_ResizeRefitsAndClearsPan(t *testing.T) {
	s := NewState(100, 100)
	s.Load(100, 100)
	s.BeginDrag(0, 0)
	s.DragTo(10, 5)
	s.EndDrag()
	s.ZoomAt(3, 50, 50)

	s.Resize(50, 50)

	require.InDelta(t, 0.5, s.Zoom(), 1e-9)
	x, y := s.Offset()
	require.Zero(t, x)
	require.Zero(t, y)
}

func TestState_ResizeDuringDragKeepsGeometry(t *testing.T) {
	s := NewState(100, 100)
	s.Load(100, 100)
	s.BeginDrag(0, 0)
	s.DragTo(10, 5)

	s.Resize(50, 50)

	require.InDelta(t, 1.0, s.Zoom(), 1e-9)
	x, y := s.Offset()
	require.Equal(t, 10, x)
	require.Equal(t, 5, y)
	w, h := s.ViewSize()
	require.Equal(t, 50, w)
	require.Equal(t, 50, h)
}

func TestState_Drag(t *testing.T) {
	s := NewState(100, 100)
	s.Load(100, 100)

	s.DragTo(5, 5)
	x, _ := s.Offset()
	require.Zero(t, x, "motion without a press must not pan")

	s.BeginDrag(10, 10)
	s.DragTo(15, 12)
	s.DragTo(20, 20)
	s.EndDrag()
	s.DragTo(40, 40)

	x, y := s.Offset()
	require.Equal(t, 10, x)
	require.Equal(t, 10, y)
	require.False(t, s.Dragging())
}

func TestState_ResetZoomAndFit(t *testing.T) {
	s := NewState(100, 100)
	s.Load(400, 200)
	require.InDelta(t, 0.25, s.Zoom(), 1e-9)

	s.ResetZoom()
	require.InDelta(t, 1.0, s.Zoom(), 1e-9)

	s.Fit()
	require.InDelta(t, 0.25, s.Zoom(), 1e-9)
}

func TestState_NoImage(t *testing.T) {
	s := NewState(100, 100)
	require.False(t, s.HasImage())
	require.Equal(t, image.Rectangle{}, s.Placement())

	s.Resize(10, 10)
	s.ZoomAt(1, 0, 0)
	require.InDelta(t, 1.1, s.Zoom(), 1e-9)
}
