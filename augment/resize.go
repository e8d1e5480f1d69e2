package augment

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"

	"github.com/nvr-ai/go-detaug/images"
)

// ResizeShortestEdge scales the image so that its shorter side matches a length
// drawn from ShortEdge, while keeping the longer side at most MaxSize.
type ResizeShortestEdge struct {
	shortEdge Range[int]
	maxSize   int
}

// NewResizeShortestEdge validates the parameters and returns the augmentation.
//
// Arguments:
//   - shortEdge: Inclusive range of target short-side lengths, all positive.
//   - maxSize: Cap on the long side after scaling; 0 disables the cap.
//
// Returns:
//   - The augmentation.
//   - error wrapping a *ConfigError if the parameters are invalid.
func NewResizeShortestEdge(shortEdge Range[int], maxSize int) (*ResizeShortestEdge, error) {
	if shortEdge.Lo <= 0 {
		return nil, configError("resize.short_edge.lo", shortEdge.Lo, "must be positive")
	}
	if shortEdge.Lo > shortEdge.Hi {
		return nil, configError("resize.short_edge", shortEdge, "lower bound exceeds upper bound")
	}
	if maxSize < 0 {
		return nil, configError("resize.max_size", maxSize, "must not be negative")
	}
	return &ResizeShortestEdge{shortEdge: shortEdge, maxSize: maxSize}, nil
}

// GetTransform picks the target size for in.Image.
func (r *ResizeShortestEdge) GetTransform(rng *rand.Rand, in *Input) Transform {
	w, h := in.Image.Width, in.Image.Height
	if w <= 0 || h <= 0 {
		return NoOp{}
	}
	size := r.shortEdge.Lo + rng.Intn(r.shortEdge.Hi-r.shortEdge.Lo+1)
	newW, newH := shortestEdgeSize(w, h, size, r.maxSize)
	if newW == w && newH == h {
		return NoOp{}
	}
	return ResizeTransform{FromWidth: w, FromHeight: h, ToWidth: newW, ToHeight: newH}
}

// shortestEdgeSize returns the output size for scaling (w, h) so that the short
// side equals size and the long side does not exceed maxSize.
func shortestEdgeSize(w, h, size, maxSize int) (int, int) {
	fw, fh := float32(w), float32(h)
	scale := float32(size) / math32.Min(fw, fh)
	newW, newH := fw*scale, fh*scale
	if long := math32.Max(newW, newH); maxSize > 0 && long > float32(maxSize) {
		s := float32(maxSize) / long
		newW, newH = newW*s, newH*s
	}
	return int(math32.Round(newW)), int(math32.Round(newH))
}

// ResizeTransform rescales the image and boxes from one size to another.
type ResizeTransform struct {
	FromWidth, FromHeight int
	ToWidth, ToHeight     int
}

func (t ResizeTransform) ApplyImage(img *images.RGB) *images.RGB {
	if img.Width == t.ToWidth && img.Height == t.ToHeight {
		return img.Clone()
	}
	resized := resize.Resize(uint(t.ToWidth), uint(t.ToHeight), img.ToImage(), resize.Bilinear)
	return images.FromImage(resized)
}

func (t ResizeTransform) ApplyBoxes(boxes []Box) []Box {
	sx := float32(t.ToWidth) / float32(t.FromWidth)
	sy := float32(t.ToHeight) / float32(t.FromHeight)
	out := make([]Box, len(boxes))
	for i, b := range boxes {
		out[i] = Box{X1: b.X1 * sx, Y1: b.Y1 * sy, X2: b.X2 * sx, Y2: b.Y2 * sy}
	}
	return out
}

func (ResizeTransform) isTransform() {}
