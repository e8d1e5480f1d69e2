package augment

import (
	"sort"

	flatbush "github.com/bmharper/flatbush-go"

	"github.com/nvr-ai/go-detaug/images"
)

// ClipBoxes computes the visible part of every box after the rectangles have
// been blacked out.
//
// For each box the rectangles are visited in order and the first one that
// matches one of these cases decides the result; later rectangles are ignored
// for that box:
//
//   - the rectangle spans the box horizontally and
//     covers it vertically: the box is removed,
//     covers its top edge: the lower remainder (bx1, ry2, bx2, by2) is kept,
//     covers its bottom edge: the upper remainder (bx1, by1, bx2, ry1) is kept;
//   - otherwise, the rectangle spans the box vertically and
//     covers its left edge: the right remainder (rx2, by1, bx2, by2) is kept,
//     covers its right edge: the left remainder (bx1, by1, rx1, by2) is kept.
//
// A rectangle that only touches an edge still matches. Afterwards, if less than
// 1-removalThreshold of the original area is left, the box is replaced by the
// zero-area box at its top-left corner.
//
// Arguments:
//   - boxes: Ground-truth boxes in XYXY pixel coordinates.
//   - rects: The occlusion set, in the order it was sampled.
//   - removalThreshold: Fraction in [0, 1]; DefaultRemovalThreshold is 0.9.
//
// Returns:
//   - One box per input box, in the same order.
//
// Example:
//
// ```go
//
//	boxes := []Box{{X1: 10, Y1: 10, X2: 20, Y2: 20}}
//	rects := []images.Rect{{X1: 5, Y1: 5, X2: 25, Y2: 15}}
//	clipped := ClipBoxes(boxes, rects, DefaultRemovalThreshold) // (10, 15), (20, 20)
//
// ```
func ClipBoxes(boxes []Box, rects []images.Rect, removalThreshold float64) []Box {
	out := make([]Box, len(boxes))
	if len(rects) == 0 {
		copy(out, boxes)
		return out
	}

	// The index only narrows the candidates; the exact case analysis below
	// decides whether a rectangle applies.
	fb := flatbush.NewFlatbush[float64]()
	fb.Reserve(len(rects))
	for _, r := range rects {
		fb.Add(float64(r.X1), float64(r.Y1), float64(r.X2), float64(r.Y2))
	}
	fb.Finish()

	keep := 1 - removalThreshold
	candidates := []int{}
	for i, b := range boxes {
		candidates = fb.SearchFast(
			float64(min(b.X1, b.X2))-1, float64(min(b.Y1, b.Y2))-1,
			float64(max(b.X1, b.X2))+1, float64(max(b.Y1, b.Y2))+1,
			candidates[:0])
		// First-match semantics depend on the sampling order.
		sort.Ints(candidates)

		r := b
		for _, j := range candidates {
			if clipped, ok := clipBox(b, rects[j]); ok {
				r = clipped
				break
			}
		}
		if keep*b.Area() > r.Area() {
			r = b.Removed()
		}
		out[i] = r
	}
	return out
}

// clipBox applies a single rectangle to b. ok is false when the rectangle does
// not match any of the cases handled by ClipBoxes.
func clipBox(b Box, rect images.Rect) (clipped Box, ok bool) {
	rx1, ry1 := float32(rect.X1), float32(rect.Y1)
	rx2, ry2 := float32(rect.X2), float32(rect.Y2)

	if rx1 <= b.X1 && b.X2 <= rx2 {
		switch {
		case ry1 <= b.Y1 && b.Y2 <= ry2:
			return b.Removed(), true
		case ry1 <= b.Y1 && b.Y1 <= ry2:
			return Box{X1: b.X1, Y1: ry2, X2: b.X2, Y2: b.Y2}, true
		case ry1 <= b.Y2 && b.Y2 <= ry2:
			return Box{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: ry1}, true
		}
		return b, false
	}

	if ry1 <= b.Y1 && b.Y2 <= ry2 {
		switch {
		case rx1 <= b.X1 && b.X1 <= rx2:
			return Box{X1: rx2, Y1: b.Y1, X2: b.X2, Y2: b.Y2}, true
		case rx1 <= b.X2 && b.X2 <= rx2:
			return Box{X1: b.X1, Y1: b.Y1, X2: rx1, Y2: b.Y2}, true
		}
	}
	return b, false
}
