// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viewer

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for files no registered decoder accepts.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// SupportedExtensions lists the file types offered by the upload prompt.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// Image is a decoded bitmap and the file it came from.
type Image struct {
	Path   string
	Format string
	Bitmap image.Image
}

// Width returns the bitmap width in pixels.
func (i *Image) Width() int { return i.Bitmap.Bounds().Dx() }

// Height returns the bitmap height in pixels.
func (i *Image) Height() int { return i.Bitmap.Bounds().Dy() }

// LoadImage decodes the file at path.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	bitmap, format, err := image.Decode(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("decode image %s: %w", filepath.Base(path), err)
	}
	if bitmap.Bounds().Empty() {
		return nil, fmt.Errorf("decode image %s: empty bitmap", filepath.Base(path))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Image{Path: abs, Format: format, Bitmap: bitmap}, nil
}

// IsSupportedPath reports whether the extension belongs to a known format.
func IsSupportedPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
