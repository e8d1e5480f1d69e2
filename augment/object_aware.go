package augment

import (
	"math/rand"

	"github.com/nvr-ai/go-detaug/images"
)

// ObjectAwareCutout occludes rectangles sampled around each ground-truth object
// instead of uniformly over the image.
type ObjectAwareCutout struct {
	cfg CutoutConfig
}

// NewObjectAwareCutout validates cfg and returns the augmentation. SizePct is
// interpreted relative to each box area rather than the image area.
//
// Arguments:
//   - cfg: The sampling configuration applied to every box.
//
// Returns:
//   - The augmentation.
//   - error wrapping a *ConfigError if cfg is invalid.
func NewObjectAwareCutout(cfg CutoutConfig) (*ObjectAwareCutout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ObjectAwareCutout{cfg: cfg}, nil
}

// Config returns the configuration the augmentation was built with.
func (c *ObjectAwareCutout) Config() CutoutConfig {
	return c.cfg
}

// Rects samples the occlusion set for an image of the given size.
//
// Every box is treated as its own sampling region: SampleRects runs on the
// box's integer height and width with an independent probability draw, and the
// rectangles are moved from the box's top-left corner into image coordinates
// and clamped to the image. The per-box lists are concatenated in box order
// without merging or deduplication.
//
// Arguments:
//   - rng: The random source.
//   - height: Image height in pixels.
//   - width: Image width in pixels.
//   - boxes: Ground-truth boxes in XYXY pixel coordinates.
//
// Returns:
//   - The occlusion set.
//   - noop: true when the set is empty.
func (c *ObjectAwareCutout) Rects(rng *rand.Rand, height, width int, boxes []Box) (rects []images.Rect, noop bool) {
	for _, b := range boxes {
		xoff, yoff := int(b.X1), int(b.Y1)
		for _, r := range SampleRects(rng, int(b.Height()), int(b.Width()), c.cfg) {
			rects = append(rects, r.Offset(xoff, yoff).Clamp(width, height))
		}
	}
	return rects, len(rects) == 0
}

// GetTransform samples the occlusion set for in. When it is empty the result is
// NoOp, so no pixels are filled and no boxes are clipped.
func (c *ObjectAwareCutout) GetTransform(rng *rand.Rand, in *Input) Transform {
	rects, noop := c.Rects(rng, in.Image.Height, in.Image.Width, in.Boxes)
	if noop {
		return NoOp{}
	}
	return CutoutTransform{Rects: rects, RemovalThreshold: c.cfg.RemovalThreshold}
}
