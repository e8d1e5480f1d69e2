// Package images - Image processing utilities
package images

import "fmt"

// Rect is a lightweight axis-aligned rectangle in pixel coordinates.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// String formats the rectangle as (x1,y1)-(x2,y2).
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
}

// Dx returns the width of the rectangle.
func (r Rect) Dx() int {
	return r.X2 - r.X1
}

// Dy returns the height of the rectangle.
func (r Rect) Dy() int {
	return r.Y2 - r.Y1
}

// Area returns the number of pixels covered by the rectangle, or 0 if it is empty.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Dx() * r.Dy()
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.X1 >= r.X2 || r.Y1 >= r.Y2
}

// Offset translates the rectangle by (dx, dy).
//
// Arguments:
//   - dx: Horizontal translation in pixels.
//   - dy: Vertical translation in pixels.
//
// Returns:
//   - The translated rectangle.
//
// Example:
//
// ```go
//
//	local := Rect{X1: 2, Y1: 2, X2: 6, Y2: 6}
//	global := local.Offset(100, 50) // (102,52)-(106,56)
//
// ```
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{X1: r.X1 + dx, Y1: r.Y1 + dy, X2: r.X2 + dx, Y2: r.Y2 + dy}
}

// Clamp restricts the rectangle to an image of the given size.
//
// The result always satisfies 0 <= X1 <= X2 <= width and 0 <= Y1 <= Y2 <= height,
// so a rectangle that lies completely outside the image collapses to a zero-area
// rectangle on the nearest edge.
//
// Arguments:
//   - width: The image width in pixels.
//   - height: The image height in pixels.
//
// Returns:
//   - The clamped rectangle.
//
// Example:
//
// ```go
//
//	r := Rect{X1: -5, Y1: 10, X2: 700, Y2: 20}
//	clamped := r.Clamp(640, 480) // (0,10)-(640,20)
//
// ```
func (r Rect) Clamp(width, height int) Rect {
	x1 := clampInt(r.X1, 0, width)
	y1 := clampInt(r.Y1, 0, height)
	x2 := clampInt(r.X2, x1, width)
	y2 := clampInt(r.Y2, y1, height)
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
