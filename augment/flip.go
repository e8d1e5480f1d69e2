package augment

import (
	"math/rand"

	"github.com/nvr-ai/go-detaug/images"
)

// RandomFlip mirrors the image horizontally with probability Prob.
type RandomFlip struct {
	prob float64
}

// NewRandomFlip validates prob and returns the augmentation.
func NewRandomFlip(prob float64) (*RandomFlip, error) {
	if err := checkUnit("flip.prob", prob); err != nil {
		return nil, err
	}
	return &RandomFlip{prob: prob}, nil
}

func (f *RandomFlip) GetTransform(rng *rand.Rand, in *Input) Transform {
	if rng.Float64() >= f.prob {
		return NoOp{}
	}
	return HFlipTransform{Width: in.Image.Width}
}

// HFlipTransform mirrors an image of the given width around its vertical axis.
type HFlipTransform struct {
	Width int
}

func (t HFlipTransform) ApplyImage(img *images.RGB) *images.RGB {
	return img.FlipHorizontal()
}

func (t HFlipTransform) ApplyBoxes(boxes []Box) []Box {
	w := float32(t.Width)
	out := make([]Box, len(boxes))
	for i, b := range boxes {
		out[i] = Box{X1: w - b.X2, Y1: b.Y1, X2: w - b.X1, Y2: b.Y2}
	}
	return out
}

func (HFlipTransform) isTransform() {}
