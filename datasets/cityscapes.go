package datasets

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detaug/coco"
)

// CityscapesCategories are the Cityscapes classes that have instances and are
// evaluated, in label-id order. Category ids are their positions in this list.
var CityscapesCategories = []string{
	"person",
	"rider",
	"car",
	"truck",
	"bus",
	"train",
	"motorcycle",
	"bicycle",
}

// cityscapesIgnored are labels that are valid in Cityscapes but never converted.
var cityscapesIgnored = map[string]bool{
	"unlabeled": true, "ego vehicle": true, "rectification border": true, "out of roi": true,
	"static": true, "dynamic": true, "ground": true, "road": true, "sidewalk": true,
	"parking": true, "rail track": true, "building": true, "wall": true, "fence": true,
	"guard rail": true, "bridge": true, "tunnel": true, "pole": true,
	"traffic light": true, "traffic sign": true, "vegetation": true, "terrain": true,
	"sky": true, "caravan": true, "trailer": true, "license plate": true,
}

const (
	polygonsSuffix = "gtFine_polygons.json"
	groupSuffix    = "group"
	// Cityscapes polygon vertices are pixel indices; shifting by half a pixel
	// puts them on pixel centres.
	polygonShift = 0.5
)

type cityscapesFile struct {
	ImgHeight int                `json:"imgHeight"`
	ImgWidth  int                `json:"imgWidth"`
	Objects   []cityscapesObject `json:"objects"`
}

type cityscapesObject struct {
	Label   string       `json:"label"`
	Polygon [][2]float64 `json:"polygon"`
	Deleted int          `json:"deleted"`
}

// ConvertCityscapes converts Cityscapes fine polygon annotations to a COCO
// dataset. Images are found as imageDir/<city>/*_leftImg8bit.png and their
// polygons as gtDir/<city>/*_gtFine_polygons.json.
//
// Labels ending in "group" are converted as crowd annotations of the base
// class. Boxes are the extent of each full polygon: overlapping instances are
// not subtracted from one another, so occluded objects get larger boxes than
// the detectron2 Cityscapes loader produces. Image and annotation ids both
// start at 1.
func ConvertCityscapes(imageDir, gtDir string, logger *zap.Logger) (*coco.Dataset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catIDs := make(map[string]int, len(CityscapesCategories))
	ds := &coco.Dataset{Type: coco.InstancesType}
	for i, name := range CityscapesCategories {
		catIDs[name] = i
		ds.Categories = append(ds.Categories, coco.Category{Supercategory: "none", ID: i, Name: name})
	}

	cities, err := sortedEntries(imageDir)
	if err != nil {
		return nil, err
	}

	annID := 0
	for _, city := range cities {
		if !city.IsDir() {
			continue
		}
		entries, err := sortedEntries(filepath.Join(imageDir, city.Name()))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), leftImageSuffix) {
				continue
			}
			base := strings.TrimSuffix(e.Name(), leftImageSuffix)
			gtPath := filepath.Join(gtDir, city.Name(), base+polygonsSuffix)

			var gt cityscapesFile
			if err := readJSON(gtPath, &gt); err != nil {
				return nil, err
			}

			imageID := len(ds.Images) + 1
			ds.Images = append(ds.Images, coco.Image{
				FileName: filepath.Join(imageDir, city.Name(), e.Name()),
				Height:   gt.ImgHeight,
				Width:    gt.ImgWidth,
				ID:       imageID,
			})

			for _, obj := range gt.Objects {
				if obj.Deleted != 0 {
					continue
				}
				name, crowd := obj.Label, false
				if _, known := catIDs[name]; !known && strings.HasSuffix(name, groupSuffix) {
					name, crowd = strings.TrimSuffix(name, groupSuffix), true
				}
				catID, ok := catIDs[name]
				if !ok {
					if cityscapesIgnored[name] {
						continue
					}
					return nil, errors.Errorf("%s: unknown label %q", gtPath, obj.Label)
				}
				if len(obj.Polygon) < 3 {
					continue
				}

				annID++
				ds.Annotations = append(ds.Annotations, polygonAnnotation(obj.Polygon, imageID, catID, crowd, annID))
			}
		}
	}

	logger.Info("converted cityscapes",
		zap.Int("images", len(ds.Images)), zap.Int("annotations", len(ds.Annotations)))
	return ds, nil
}

func polygonAnnotation(polygon [][2]float64, imageID, catID int, crowd bool, id int) coco.Annotation {
	x1, y1 := math.Inf(1), math.Inf(1)
	x2, y2 := math.Inf(-1), math.Inf(-1)
	flat := make([]float64, 0, len(polygon)*2)
	for _, p := range polygon {
		x, y := p[0]+polygonShift, p[1]+polygonShift
		x1, y1 = math.Min(x1, x), math.Min(y1, y)
		x2, y2 = math.Max(x2, x), math.Max(y2, y)
		flat = append(flat, x, y)
	}
	w, h := x2-x1, y2-y1

	ann := coco.Annotation{
		ImageID:      imageID,
		BBox:         [4]float64{x1, y1, w, h},
		Area:         w * h,
		CategoryID:   catID,
		Segmentation: [][]float64{flat},
		ID:           id,
	}
	if crowd {
		ann.IsCrowd = 1
	}
	return ann
}
