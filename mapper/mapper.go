// Package mapper turns COCO dataset records into augmented training examples.
package mapper

import (
	"math/rand"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detaug/augment"
	"github.com/nvr-ai/go-detaug/coco"
	"github.com/nvr-ai/go-detaug/images"
)

// minBoxSide is the smallest width or height a box may have after
// augmentation and still be kept as a training instance.
const minBoxSide = 1e-5

// ImageReader loads an image file as RGB.
type ImageReader interface {
	ReadImage(path string) (*images.RGB, error)
}

// Record is one image of a dataset together with its annotations.
type Record struct {
	FileName    string
	ImageID     int
	Height      int
	Width       int
	Annotations []coco.Annotation
}

// NewRecords builds a record for every image of an indexed dataset. File names
// are resolved with resolve, which may be nil to keep them unchanged.
func NewRecords(idx *coco.Index, resolve func(string) string) []Record {
	ds := idx.Dataset()
	recs := make([]Record, 0, len(ds.Images))
	for _, img := range ds.Images {
		name := img.FileName
		if resolve != nil {
			name = resolve(name)
		}
		recs = append(recs, Record{
			FileName:    name,
			ImageID:     img.ID,
			Height:      img.Height,
			Width:       img.Width,
			Annotations: idx.AnnotationsForImage(img.ID),
		})
	}
	return recs
}

// Instance is a box that survived augmentation.
type Instance struct {
	Box        augment.Box
	CategoryID int
}

// Example is a mapped record.
type Example struct {
	FileName string
	ImageID  int
	Height   int
	Width    int
	// Image is the augmented image as a uint8 tensor of shape [3, H, W].
	Image *tensor.Dense
	// Instances is empty unless the mapper runs in training mode.
	Instances []Instance
	// Transforms are the transforms that were applied, in order.
	Transforms augment.Sequence
}

// Mapper reads, augments and converts dataset records.
type Mapper struct {
	Augmentations []augment.Augmentation
	IsTrain       bool
	Reader        ImageReader
	Logger        *zap.Logger
}

// Map turns one record into an example.
//
// Arguments:
//   - rng: Source of randomness for the augmentations.
//   - rec: The record to map.
//
// Returns:
//   - The example.
//   - error if the image cannot be read or does not match the record size.
func (m *Mapper) Map(rng *rand.Rand, rec Record) (*Example, error) {
	if m.Reader == nil {
		return nil, errors.New("mapper has no image reader")
	}
	log := m.Logger
	if log == nil {
		log = zap.NewNop()
	}

	img, err := m.Reader.ReadImage(rec.FileName)
	if err != nil {
		return nil, errors.Wrapf(err, "reading image %d", rec.ImageID)
	}
	if rec.Width != 0 && rec.Height != 0 && (img.Width != rec.Width || img.Height != rec.Height) {
		return nil, errors.Errorf("image %s is %dx%d, annotations expect %dx%d",
			rec.FileName, img.Width, img.Height, rec.Width, rec.Height)
	}

	boxes := make([]augment.Box, len(rec.Annotations))
	for i, ann := range rec.Annotations {
		x1, y1, x2, y2 := ann.XYXY()
		boxes[i] = augment.Box{X1: float32(x1), Y1: float32(y1), X2: float32(x2), Y2: float32(y2)}
	}

	in := &augment.Input{Image: img, Boxes: boxes}
	seq := in.Apply(rng, m.Augmentations...)
	log.Debug("mapped record",
		zap.String("file", rec.FileName), zap.Int("transforms", len(seq)), zap.Int("boxes", len(in.Boxes)))

	ex := &Example{
		FileName:   rec.FileName,
		ImageID:    rec.ImageID,
		Height:     in.Image.Height,
		Width:      in.Image.Width,
		Image:      ToTensor(in.Image),
		Transforms: seq,
	}
	if !m.IsTrain {
		return ex, nil
	}

	w, h := float32(in.Image.Width), float32(in.Image.Height)
	for i, ann := range rec.Annotations {
		if ann.IsCrowd != 0 {
			continue
		}
		b := in.Boxes[i].ClampTo(w, h)
		if b.Empty(minBoxSide) {
			continue
		}
		ex.Instances = append(ex.Instances, Instance{Box: b, CategoryID: ann.CategoryID})
	}
	return ex, nil
}

// ToTensor converts an HWC image to a planar CHW uint8 tensor.
func ToTensor(img *images.RGB) *tensor.Dense {
	plane := img.Width * img.Height
	data := make([]uint8, plane*images.Channels)
	for i := range plane {
		for c := range images.Channels {
			data[c*plane+i] = img.Pix[i*images.Channels+c]
		}
	}
	return tensor.New(
		tensor.WithShape(images.Channels, img.Height, img.Width),
		tensor.Of(tensor.Uint8),
		tensor.WithBacking(data),
	)
}

// FromTensor converts a [3, H, W] uint8 tensor back to an HWC image.
func FromTensor(d *tensor.Dense) (*images.RGB, error) {
	shape := d.Shape()
	if d.Dtype() != tensor.Uint8 || len(shape) != 3 || shape[0] != images.Channels {
		return nil, errors.Errorf("expected a uint8 tensor of shape [3, H, W], got %v %v", d.Dtype(), shape)
	}
	data, ok := d.Data().([]uint8)
	if !ok {
		return nil, errors.Errorf("unexpected tensor backing %T", d.Data())
	}
	img := images.NewRGB(shape[2], shape[1])
	plane := img.Width * img.Height
	for i := range plane {
		for c := range images.Channels {
			img.Pix[i*images.Channels+c] = data[c*plane+i]
		}
	}
	return img, nil
}
