// Package images - RGB raster definition for augmentation utilities.
package images

import (
	"image"
	"image/color"
)

// Channels is the number of interleaved channels stored per pixel.
const Channels = 3

// RGB is an 8-bit, 3-channel raster stored in height-width-channel order.
type RGB struct {
	// Width of the image in pixels.
	Width int
	// Height of the image in pixels.
	Height int
	// Pix holds the pixel data. The channel c of pixel (x, y) lives at
	// Pix[(y*Width+x)*3+c].
	Pix []uint8
}

// NewRGB allocates a zeroed raster of the given size.
func NewRGB(width, height int) *RGB {
	return &RGB{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}
}

// Bounds returns the full image rectangle.
func (m *RGB) Bounds() Rect {
	return Rect{X1: 0, Y1: 0, X2: m.Width, Y2: m.Height}
}

// Clone returns a deep copy of the raster.
func (m *RGB) Clone() *RGB {
	dst := &RGB{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(dst.Pix, m.Pix)
	return dst
}

// PixOffset returns the index of the first channel of pixel (x, y) in Pix.
func (m *RGB) PixOffset(x, y int) int {
	return (y*m.Width + x) * Channels
}

// At returns the three channel values of pixel (x, y).
func (m *RGB) At(x, y int) (uint8, uint8, uint8) {
	i := m.PixOffset(x, y)
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// Set writes the three channel values of pixel (x, y).
func (m *RGB) Set(x, y int, r, g, b uint8) {
	i := m.PixOffset(x, y)
	m.Pix[i] = r
	m.Pix[i+1] = g
	m.Pix[i+2] = b
}

// Fill sets every channel of every pixel inside r to v. The rectangle is clamped
// to the image bounds first, so out-of-range rectangles are safe.
//
// Arguments:
//   - r: The rectangle to fill (half-open).
//   - v: The value written to all three channels.
//
// Returns:
//   - None (modifies the raster in-place).
//
// Example:
//
// ```go
//
//	img := NewRGB(640, 480)
//	img.Fill(Rect{X1: 10, Y1: 10, X2: 20, Y2: 20}, 0)
//
// ```
func (m *RGB) Fill(r Rect, v uint8) {
	r = r.Clamp(m.Width, m.Height)
	if r.Empty() {
		return
	}
	for y := r.Y1; y < r.Y2; y++ {
		row := m.Pix[m.PixOffset(r.X1, y):m.PixOffset(r.X2, y)]
		for i := range row {
			row[i] = v
		}
	}
}

// FlipHorizontal returns a mirrored copy of the raster.
func (m *RGB) FlipHorizontal() *RGB {
	dst := NewRGB(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			src := m.PixOffset(x, y)
			d := dst.PixOffset(m.Width-1-x, y)
			copy(dst.Pix[d:d+Channels], m.Pix[src:src+Channels])
		}
	}
	return dst
}

// FromImage converts any image.Image into an RGB raster, dropping alpha.
//
// Arguments:
//   - img: The source image.
//
// Returns:
//   - The converted raster, with the origin moved to (0, 0).
func FromImage(img image.Image) *RGB {
	b := img.Bounds()
	dst := NewRGB(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			dst.Set(x, y, uint8(r>>8), uint8(g>>8), uint8(bl>>8))
		}
	}
	return dst
}

// ToImage converts the raster to an opaque *image.RGBA.
func (m *RGB) ToImage() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, b := m.At(x, y)
			dst.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return dst
}
