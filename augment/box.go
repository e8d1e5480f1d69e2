package augment

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Box is a ground-truth bounding box in absolute XYXY pixel coordinates.
type Box struct {
	X1, Y1, X2, Y2 float32
}

func (b Box) String() string {
	return fmt.Sprintf("(%.1f, %.1f), (%.1f, %.1f)", b.X1, b.Y1, b.X2, b.Y2)
}

// Width of the box. Negative for inverted boxes.
func (b Box) Width() float32 {
	return b.X2 - b.X1
}

// Height of the box. Negative for inverted boxes.
func (b Box) Height() float32 {
	return b.Y2 - b.Y1
}

// Area is the signed product of width and height, computed in float64 so that
// threshold comparisons do not pick up float32 rounding.
func (b Box) Area() float64 {
	return float64(b.Width()) * float64(b.Height())
}

// Removed returns the zero-area box anchored at b's top-left corner, which marks
// an object as fully occluded.
func (b Box) Removed() Box {
	return Box{X1: b.X1, Y1: b.Y1, X2: b.X1, Y2: b.Y1}
}

// Empty reports whether either side of the box is no longer than eps.
func (b Box) Empty(eps float32) bool {
	return b.Width() <= eps || b.Height() <= eps
}

// ClampTo limits every coordinate to [0, width] or [0, height].
func (b Box) ClampTo(width, height float32) Box {
	return Box{
		X1: math32.Max(0, math32.Min(b.X1, width)),
		Y1: math32.Max(0, math32.Min(b.Y1, height)),
		X2: math32.Max(0, math32.Min(b.X2, width)),
		Y2: math32.Max(0, math32.Min(b.Y2, height)),
	}
}

func cloneBoxes(boxes []Box) []Box {
	if boxes == nil {
		return nil
	}
	out := make([]Box, len(boxes))
	copy(out, boxes)
	return out
}
