// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viewer

import (
	"image"
	"image/color"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/image/draw"
)

const (
	upperHalf = "▀"
	lowerHalf = "▄"
)

// Renderer draws the viewport with half-block cells: each terminal cell shows
// two vertically stacked samples, the upper one as foreground.
type Renderer struct {
	profile termenv.Profile
	scaler  draw.Scaler
}

// NewRenderer creates a renderer for a color profile.
func NewRenderer(profile termenv.Profile) *Renderer {
	return &Renderer{profile: profile, scaler: draw.ApproxBiLinear}
}

// Rasterize scales and positions the image into a canvas with one pixel per
// half-block sample of the viewport. Samples not covered by the image are
// transparent.
func Rasterize(img image.Image, s *State, scaler draw.Scaler) *image.RGBA {
	w, h := s.ViewSize()
	canvas := image.NewRGBA(image.Rect(0, 0, max(w, 0)/SamplePixels, max(h, 0)/SamplePixels))
	if img == nil || !s.HasImage() || canvas.Bounds().Empty() {
		return canvas
	}
	p := s.Placement()
	dst := image.Rect(toSample(p.Min.X), toSample(p.Min.Y), toSample(p.Max.X), toSample(p.Max.Y))
	if dst.Empty() || !dst.Overlaps(canvas.Bounds()) {
		return canvas
	}
	scaler.Scale(canvas, dst, img, img.Bounds(), draw.Over, nil)
	return canvas
}

// toSample converts a viewer pixel coordinate to a sample index, rounding
// toward negative infinity.
func toSample(v int) int {
	if v < 0 {
		return -((-v + SamplePixels - 1) / SamplePixels)
	}
	return v / SamplePixels
}

// Render draws the image into cols x rows cells. The state must have been
// sized to cols*SamplePixels x rows*2*SamplePixels pixels.
func (r *Renderer) Render(img *Image, s *State, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	var bitmap image.Image
	if img != nil {
		bitmap = img.Bitmap
	}
	canvas := Rasterize(bitmap, s, r.scaler)

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < cols; col++ {
			top := pixel(canvas, col, row*2)
			bottom := pixel(canvas, col, row*2+1)
			sb.WriteString(r.cell(top, bottom))
		}
	}
	return sb.String()
}

// cell renders one half-block pair. Transparent halves show the terminal
// background.
func (r *Renderer) cell(top, bottom color.RGBA) string {
	switch {
	case top.A == 0 && bottom.A == 0:
		return " "
	case top.A == 0:
		return r.profile.String(lowerHalf).Foreground(r.profile.FromColor(bottom)).String()
	case bottom.A == 0:
		return r.profile.String(upperHalf).Foreground(r.profile.FromColor(top)).String()
	default:
		return r.profile.String(upperHalf).
			Foreground(r.profile.FromColor(top)).
			Background(r.profile.FromColor(bottom)).
			String()
	}
}

func pixel(canvas *image.RGBA, x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}).In(canvas.Bounds()) {
		return color.RGBA{}
	}
	return canvas.RGBAAt(x, y)
}
