// Package datasets - converters from pedestrian datasets to COCO, and a registry
// of named COCO datasets.
package datasets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detaug/coco"
)

// CityPersonsCategory is a CityPersons class with its display color.
type CityPersonsCategory struct {
	Color   [3]uint8
	IsThing bool
	ID      int
	Name    string
}

// CityPersonsCategories lists the classes kept when converting CityPersons.
var CityPersonsCategories = []CityPersonsCategory{
	{Color: [3]uint8{220, 20, 60}, IsThing: true, ID: 1, Name: "pedestrian"},
	{Color: [3]uint8{0, 0, 142}, IsThing: true, ID: 2, Name: "rider"},
	{Color: [3]uint8{107, 142, 35}, IsThing: true, ID: 3, Name: "sitting person"},
	{Color: [3]uint8{190, 153, 153}, IsThing: true, ID: 4, Name: "person (other)"},
}

const (
	cityPersonsSuffix = "gtBboxCityPersons.json"
	leftImageSuffix   = "leftImg8bit.png"
	progressEvery     = 500
)

// CityPersonsOptions controls ConvertCityPersons.
type CityPersonsOptions struct {
	// UseFullBox selects the full-extent "bbox" instead of the visible "bboxVis".
	UseFullBox bool
	// Logger receives progress messages. Nil disables logging.
	Logger *zap.Logger
}

type cityPersonsFile struct {
	ImgHeight int                 `json:"imgHeight"`
	ImgWidth  int                 `json:"imgWidth"`
	Objects   []cityPersonsObject `json:"objects"`
}

type cityPersonsObject struct {
	Label   string     `json:"label"`
	BBox    [4]float64 `json:"bbox"`
	BBoxVis [4]float64 `json:"bboxVis"`
}

// ConvertCityPersons converts the per-image CityPersons box files under gtRoot
// (gtRoot/<city>/*gtBboxCityPersons.json) to a COCO dataset.
//
// Image ids count every annotation file, while images without a single kept
// object are left out, so ids can have gaps. Annotation ids start at 0. Each
// annotation gets the box corners as a single segmentation polygon.
//
// Arguments:
//   - imageRoot: Root of the leftImg8bit images. Only used for logging, since
//     file names are stored relative to it.
//   - gtRoot: Root of the CityPersons annotation files.
//   - opts: Conversion options.
//
// Returns:
//   - The converted dataset.
//   - error if a directory cannot be listed or a file cannot be decoded.
func ConvertCityPersons(imageRoot, gtRoot string, opts CityPersonsOptions) (*coco.Dataset, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	type cityFile struct {
		city string
		path string
	}
	var files []cityFile
	cities, err := sortedEntries(gtRoot)
	if err != nil {
		return nil, err
	}
	for _, city := range cities {
		if !city.IsDir() {
			continue
		}
		entries, err := sortedEntries(filepath.Join(gtRoot, city.Name()))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			files = append(files, cityFile{city: city.Name(), path: filepath.Join(gtRoot, city.Name(), e.Name())})
		}
	}
	log.Info("converting citypersons", zap.Int("files", len(files)),
		zap.String("images", imageRoot), zap.String("gt", gtRoot))

	valid := make(map[string]int, len(CityPersonsCategories))
	for _, c := range CityPersonsCategories {
		valid[c.Name] = c.ID
	}

	ds := &coco.Dataset{Type: coco.InstancesType}
	for _, c := range CityPersonsCategories {
		ds.Categories = append(ds.Categories, coco.Category{Supercategory: "none", ID: c.ID, Name: c.Name})
	}

	annID := 0
	for i, f := range files {
		imageID := i + 1
		name := filepath.Base(f.path)
		if !strings.Contains(name, cityPersonsSuffix) {
			return nil, errors.Errorf("unexpected annotation file %s", f.path)
		}

		var gt cityPersonsFile
		if err := readJSON(f.path, &gt); err != nil {
			return nil, err
		}

		img := coco.Image{
			FileName: f.city + "/" + strings.Replace(name, cityPersonsSuffix, leftImageSuffix, 1),
			Height:   gt.ImgHeight,
			Width:    gt.ImgWidth,
			ID:       imageID,
		}

		empty := true
		for _, obj := range gt.Objects {
			catID, ok := valid[obj.Label]
			if !ok {
				continue
			}
			empty = false
			box := obj.BBoxVis
			if opts.UseFullBox {
				box = obj.BBox
			}
			x, y, w, h := box[0], box[1], box[2], box[3]
			ds.Annotations = append(ds.Annotations, coco.Annotation{
				ImageID:      imageID,
				BBox:         box,
				Area:         w * h,
				CategoryID:   catID,
				Segmentation: [][]float64{{x, y, x, y + h, x + w, y + h, x + w, y}},
				ID:           annID,
			})
			annID++
		}
		if !empty {
			ds.Images = append(ds.Images, img)
		}

		if (i+1)%progressEvery == 0 {
			log.Debug("citypersons progress", zap.Int("done", i+1), zap.Int("total", len(files)))
		}
	}

	log.Info("converted citypersons",
		zap.Int("images", len(ds.Images)), zap.Int("annotations", len(ds.Annotations)))
	return ds, nil
}

func sortedEntries(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	return nil
}
