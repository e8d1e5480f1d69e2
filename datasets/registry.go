package datasets

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detaug/coco"
)

// Entry locates a COCO-format dataset on disk.
type Entry struct {
	// JSONFile is the COCO annotation file.
	JSONFile string `json:"json_file" yaml:"json_file" mapstructure:"json_file"`
	// ImageRoot is the directory image file names are relative to.
	ImageRoot string `json:"image_root" yaml:"image_root" mapstructure:"image_root"`
}

// ImagePath resolves an image file name against the entry's image root.
// Absolute file names are returned unchanged.
func (e Entry) ImagePath(fileName string) string {
	if filepath.IsAbs(fileName) {
		return fileName
	}
	return filepath.Join(e.ImageRoot, fileName)
}

// Registry maps dataset names to their files. It is populated explicitly at
// startup and never as a side effect of importing a package.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

// Register adds a dataset. Registering the same name twice is an error.
func (r *Registry) Register(name string, e Entry) error {
	if name == "" {
		return errors.New("dataset name is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return errors.Errorf("dataset %q is already registered", name)
	}
	r.entries[name] = e
	return nil
}

// Get returns the entry registered under name.
func (r *Registry) Get(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, errors.Errorf("dataset %q is not registered", name)
	}
	return e, nil
}

// Names lists the registered datasets in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads the annotation file of a registered dataset.
func (r *Registry) Load(name string) (*coco.Dataset, Entry, error) {
	e, err := r.Get(name)
	if err != nil {
		return nil, Entry{}, err
	}
	ds, err := coco.Load(e.JSONFile)
	if err != nil {
		return nil, Entry{}, errors.Wrapf(err, "loading dataset %q", name)
	}
	return ds, e, nil
}

// Splits are the dataset splits registered by RegisterDefaults.
var Splits = []string{"train", "val"}

// RegisterDefaults registers the BDD100K and CityPersons splits found under
// dataRoot:
//
//	bdd_<split>:         bdd/bdd100k_labels_images_det_coco_<split>.json,
//	                     images in bdd/bdd100k/images/100k/<split>
//	citypersons_<split>: cocoformats/citypersons_det_coco_<split>.json,
//	                     images in cityscapes/leftImg8bit/<split>
func RegisterDefaults(reg *Registry, dataRoot string) error {
	for _, split := range Splits {
		if err := reg.Register("bdd_"+split, Entry{
			JSONFile:  filepath.Join(dataRoot, "bdd", "bdd100k_labels_images_det_coco_"+split+".json"),
			ImageRoot: filepath.Join(dataRoot, "bdd", "bdd100k", "images", "100k", split),
		}); err != nil {
			return err
		}
	}
	for _, split := range Splits {
		if err := reg.Register("citypersons_"+split, Entry{
			JSONFile:  filepath.Join(dataRoot, "cocoformats", "citypersons_det_coco_"+split+".json"),
			ImageRoot: filepath.Join(dataRoot, "cityscapes", "leftImg8bit", split),
		}); err != nil {
			return err
		}
	}
	return nil
}
