package coco

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Index provides lookups over a Dataset by image and category id.
type Index struct {
	dataset     *Dataset
	images      map[int]Image
	categories  map[int]Category
	annsByImage map[int][]int
}

// NewIndex builds lookup tables for ds. Annotations keep their file order
// within each image.
func NewIndex(ds *Dataset) *Index {
	idx := &Index{
		dataset:     ds,
		images:      make(map[int]Image, len(ds.Images)),
		categories:  make(map[int]Category, len(ds.Categories)),
		annsByImage: make(map[int][]int, len(ds.Images)),
	}
	for _, img := range ds.Images {
		idx.images[img.ID] = img
	}
	for _, cat := range ds.Categories {
		idx.categories[cat.ID] = cat
	}
	for i, ann := range ds.Annotations {
		idx.annsByImage[ann.ImageID] = append(idx.annsByImage[ann.ImageID], i)
	}
	return idx
}

// Dataset returns the indexed dataset.
func (x *Index) Dataset() *Dataset {
	return x.dataset
}

// Image returns the image with the given id.
func (x *Index) Image(id int) (Image, bool) {
	img, ok := x.images[id]
	return img, ok
}

// Category returns the category with the given id.
func (x *Index) Category(id int) (Category, bool) {
	cat, ok := x.categories[id]
	return cat, ok
}

// AnnotationsForImage returns the annotations of one image, in file order.
func (x *Index) AnnotationsForImage(id int) []Annotation {
	ids := x.annsByImage[id]
	anns := make([]Annotation, len(ids))
	for i, j := range ids {
		anns[i] = x.dataset.Annotations[j]
	}
	return anns
}

// Detection is an annotation flattened together with the names of its image
// and category, as used by result-format files.
type Detection struct {
	Annotation
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ToResultFormat lists every annotation grouped by image in dataset order.
//
// Returns:
//   - The detections.
//   - error if an annotation refers to an unknown category.
func (x *Index) ToResultFormat() ([]Detection, error) {
	dets := make([]Detection, 0, len(x.dataset.Annotations))
	for _, img := range x.dataset.Images {
		for _, ann := range x.AnnotationsForImage(img.ID) {
			cat, ok := x.categories[ann.CategoryID]
			if !ok {
				return nil, errors.Errorf("annotation %d: unknown category %d", ann.ID, ann.CategoryID)
			}
			dets = append(dets, Detection{Annotation: ann, Name: img.FileName, Category: cat.Name})
		}
	}
	return dets, nil
}

// LoadDetections reads a JSON array of raw detections. Numbers are kept as
// json.Number so that ids and scores survive a round trip unchanged.
func LoadDetections(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading detections %s", path)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var dets []map[string]any
	if err := dec.Decode(&dets); err != nil {
		return nil, errors.Wrapf(err, "decoding detections %s", path)
	}
	return dets, nil
}

// AppendMetadata attaches the full image record under "name" and the full
// category record under "category" to every detection, in place.
//
// Arguments:
//   - dets: Raw detections, each with "image_id" and "category_id".
//
// Returns:
//   - error naming the first detection whose ids are missing or unknown.
func (x *Index) AppendMetadata(dets []map[string]any) error {
	for i, det := range dets {
		imageID, err := intField(det, "image_id")
		if err != nil {
			return errors.Wrapf(err, "detection %d", i)
		}
		categoryID, err := intField(det, "category_id")
		if err != nil {
			return errors.Wrapf(err, "detection %d", i)
		}
		img, ok := x.images[imageID]
		if !ok {
			return errors.Errorf("detection %d: unknown image %d", i, imageID)
		}
		cat, ok := x.categories[categoryID]
		if !ok {
			return errors.Errorf("detection %d: unknown category %d", i, categoryID)
		}
		det["name"] = img
		det["category"] = cat
	}
	return nil
}

func intField(det map[string]any, key string) (int, error) {
	switch v := det[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, errors.Wrapf(err, "field %s", key)
		}
		return int(n), nil
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case nil:
		return 0, errors.Errorf("missing field %s", key)
	default:
		return 0, errors.Errorf("field %s has unexpected type %T", key, v)
	}
}
