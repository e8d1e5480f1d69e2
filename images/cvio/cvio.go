// Package cvio reads and writes RGB rasters through OpenCV.
package cvio

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-detaug/images"
)

// Reader decodes image files with gocv. It satisfies mapper.ImageReader.
type Reader struct{}

// ReadImage decodes the file at path into an RGB raster.
//
// OpenCV decodes into BGR order, so the channels are swapped before the pixels
// are copied out of the Mat.
//
// Arguments:
//   - path: The image file to decode.
//
// Returns:
//   - The decoded raster.
//   - error if the file cannot be decoded.
func (Reader) ReadImage(path string) (*images.RGB, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.Errorf("unable to decode image %s", path)
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(mat, &rgb, gocv.ColorBGRToRGB)

	data, err := rgb.DataPtrUint8()
	if err != nil {
		return nil, errors.Wrapf(err, "reading pixels of %s", path)
	}

	img := images.NewRGB(rgb.Cols(), rgb.Rows())
	if len(data) != len(img.Pix) {
		return nil, errors.Errorf("unexpected pixel buffer size %d for %dx%d image %s",
			len(data), img.Width, img.Height, path)
	}
	copy(img.Pix, data)
	return img, nil
}

// WriteImage encodes img to path. The encoder is chosen by the file extension.
//
// Arguments:
//   - path: Destination file (.png, .jpg, .jpeg or .webp).
//   - img: The raster to encode.
//
// Returns:
//   - error if the format is unsupported or encoding fails.
func WriteImage(path string, img *images.RGB) error {
	return WriteAnnotated(path, img, nil)
}

// BoxColor is the color WriteAnnotated outlines boxes with.
var BoxColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

// WriteAnnotated encodes img to path with every box outlined in BoxColor.
// The raster itself is not modified.
func WriteAnnotated(path string, img *images.RGB, boxes []images.Rect) error {
	if _, err := images.FormatFromPath(path); err != nil {
		return err
	}

	rgb, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, img.Pix)
	if err != nil {
		return errors.Wrap(err, "wrapping raster in a Mat")
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)

	// The Mat is BGR, so the color channels are swapped too.
	bgrColor := color.RGBA{R: BoxColor.B, G: BoxColor.G, B: BoxColor.R, A: BoxColor.A}
	for _, b := range boxes {
		gocv.Rectangle(&bgr, image.Rect(b.X1, b.Y1, b.X2, b.Y2), bgrColor, 2)
	}

	if !gocv.IMWrite(path, bgr) {
		return errors.Errorf("unable to write image %s", path)
	}
	return nil
}
