package augment

import (
	"math/rand"

	"github.com/nvr-ai/go-detaug/images"
)

// FillValue is written to every channel of an occluded pixel.
const FillValue uint8 = 0

// ApplyCutout returns a copy of img with every rectangle blacked out.
//
// Rectangles are clamped to the image, so partially or fully out-of-range
// rectangles are safe. Overlapping rectangles are filled more than once with
// the same value, so the result does not depend on their order and applying the
// same set twice gives the same image as applying it once.
//
// Arguments:
//   - img: The source image. It is not modified.
//   - rects: The occlusion rectangles in image coordinates.
//
// Returns:
//   - A new image with the rectangles filled.
func ApplyCutout(img *images.RGB, rects []images.Rect) *images.RGB {
	dst := img.Clone()
	for _, r := range rects {
		dst.Fill(r, FillValue)
	}
	return dst
}

// CutoutTransform blacks out Rects in the image and shrinks or removes the boxes
// they occlude.
type CutoutTransform struct {
	Rects            []images.Rect
	RemovalThreshold float64
}

func (t CutoutTransform) ApplyImage(img *images.RGB) *images.RGB {
	return ApplyCutout(img, t.Rects)
}

func (t CutoutTransform) ApplyBoxes(boxes []Box) []Box {
	return ClipBoxes(boxes, t.Rects, t.RemovalThreshold)
}

func (CutoutTransform) isTransform() {}

// Cutout occludes random rectangles sampled over the whole image.
type Cutout struct {
	cfg CutoutConfig
}

// NewCutout validates cfg and returns the augmentation.
//
// Arguments:
//   - cfg: The sampling configuration.
//
// Returns:
//   - The augmentation.
//   - error wrapping a *ConfigError if cfg is invalid.
func NewCutout(cfg CutoutConfig) (*Cutout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Cutout{cfg: cfg}, nil
}

// Config returns the configuration the augmentation was built with.
func (c *Cutout) Config() CutoutConfig {
	return c.cfg
}

// GetTransform samples rectangles for the input image. A draw that produces no
// rectangles yields NoOp.
func (c *Cutout) GetTransform(rng *rand.Rand, in *Input) Transform {
	rects := SampleRects(rng, in.Image.Height, in.Image.Width, c.cfg)
	if len(rects) == 0 {
		return NoOp{}
	}
	return CutoutTransform{Rects: rects, RemovalThreshold: c.cfg.RemovalThreshold}
}
