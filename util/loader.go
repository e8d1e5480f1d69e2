package util

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detaug/images"
)

// ImageFile is an image found in a directory.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Format is the format implied by the file extension.
	Format images.ImageFormat
}

// ListImageFiles lists the image files directly inside dir, sorted by name.
// Files whose extension is not a supported image format are skipped.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The images, in name order.
// - error: Error if the directory cannot be read.
func ListImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}

	var files []ImageFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		format, err := images.FormatFromPath(e.Name())
		if err != nil {
			continue
		}
		files = append(files, ImageFile{
			Path:   filepath.Join(dir, e.Name()),
			Format: format,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}
