// Package coco - COCO detection annotation schema and helpers.
package coco

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// InstancesType is the value of Dataset.Type for detection datasets.
const InstancesType = "instances"

// Dataset is a COCO detection annotation file.
type Dataset struct {
	Categories  []Category   `json:"categories"`
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Type        string       `json:"type,omitempty"`
}

// Category is a COCO object category.
type Category struct {
	Supercategory string `json:"supercategory"`
	ID            int    `json:"id"`
	Name          string `json:"name"`
}

// Image describes one annotated image.
type Image struct {
	FileName string `json:"file_name"`
	Height   int    `json:"height"`
	Width    int    `json:"width"`
	ID       int    `json:"id"`
}

// Annotation is a single object instance.
type Annotation struct {
	IsCrowd      int         `json:"iscrowd"`
	ImageID      int         `json:"image_id"`
	BBox         [4]float64  `json:"bbox"` // [x, y, width, height] in absolute pixels
	Area         float64     `json:"area"`
	CategoryID   int         `json:"category_id"`
	Segmentation [][]float64 `json:"segmentation,omitempty"` // flattened [x1, y1, x2, y2, ...] polygons
	Ignore       int         `json:"ignore"`
	ID           int         `json:"id"`
}

// XYXY returns the annotation box as (x1, y1, x2, y2).
func (a Annotation) XYXY() (x1, y1, x2, y2 float64) {
	return a.BBox[0], a.BBox[1], a.BBox[0] + a.BBox[2], a.BBox[1] + a.BBox[3]
}

// Load reads a COCO annotation file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading annotation file %s", path)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, errors.Wrapf(err, "decoding annotation file %s", path)
	}
	return &ds, nil
}

// Save writes the dataset as a single-line JSON document.
func (d *Dataset) Save(path string) error {
	return WriteJSON(path, d)
}

// WriteJSON encodes v to path, replacing any existing file.
func WriteJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
