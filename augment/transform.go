package augment

import (
	"math/rand"

	"github.com/nvr-ai/go-detaug/images"
)

// Transform is a deterministic image/box transform produced by an Augmentation.
//
// The set of implementations is closed: NoOp, CutoutTransform, ResizeTransform,
// HFlipTransform and Sequence.
type Transform interface {
	// ApplyImage returns the transformed image. The input is never modified.
	ApplyImage(img *images.RGB) *images.RGB
	// ApplyBoxes returns the transformed boxes, one per input box, in order.
	ApplyBoxes(boxes []Box) []Box

	isTransform()
}

// Augmentation samples a Transform for a single input.
type Augmentation interface {
	GetTransform(rng *rand.Rand, in *Input) Transform
}

// NoOp leaves images and boxes untouched.
type NoOp struct{}

func (NoOp) ApplyImage(img *images.RGB) *images.RGB { return img }
func (NoOp) ApplyBoxes(boxes []Box) []Box           { return cloneBoxes(boxes) }
func (NoOp) isTransform()                           {}

// Sequence applies its transforms in order.
type Sequence []Transform

func (s Sequence) ApplyImage(img *images.RGB) *images.RGB {
	for _, t := range s {
		img = t.ApplyImage(img)
	}
	return img
}

func (s Sequence) ApplyBoxes(boxes []Box) []Box {
	boxes = cloneBoxes(boxes)
	for _, t := range s {
		boxes = t.ApplyBoxes(boxes)
	}
	return boxes
}

func (Sequence) isTransform() {}

// Input is the image and box list an augmentation chain operates on.
type Input struct {
	Image *images.RGB
	Boxes []Box
}

// Apply runs augs in order. Each augmentation samples its transform from the
// output of the previous one, and the transform is applied to both the image
// and the boxes before moving on. NoOp transforms are skipped entirely.
//
// Arguments:
//   - rng: The random source used by every augmentation.
//   - augs: The augmentations to run.
//
// Returns:
//   - The sequence of transforms that were actually applied.
//
// Example:
//
// ```go
//
//	in := &Input{Image: img, Boxes: boxes}
//	applied := in.Apply(rng, cutout, flip)
//	img, boxes = in.Image, in.Boxes
//
// ```
func (in *Input) Apply(rng *rand.Rand, augs ...Augmentation) Sequence {
	applied := Sequence{}
	for _, aug := range augs {
		t := aug.GetTransform(rng, in)
		if _, ok := t.(NoOp); ok {
			continue
		}
		in.Image = t.ApplyImage(in.Image)
		in.Boxes = t.ApplyBoxes(in.Boxes)
		applied = append(applied, t)
	}
	return applied
}
