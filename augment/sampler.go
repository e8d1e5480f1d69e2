package augment

import (
	"math"
	"math/rand"

	"github.com/nvr-ai/go-detaug/images"
)

// SampleRects draws occlusion rectangles for a region of the given size.
//
// With probability 1-Prob nothing is drawn. Otherwise Num rectangles are drawn,
// each with an area of SizePct of the region and an Aspect (height/width) ratio
// sampled uniformly. The top-left corner is placed uniformly inside the region
// and the far corner is clamped to the region, so rectangles near the edges
// shrink instead of being resampled.
//
// Arguments:
//   - rng: The random source.
//   - height: Region height in pixels.
//   - width: Region width in pixels.
//   - cfg: A validated sampling configuration.
//
// Returns:
//   - Rectangles in region-local coordinates, or nil when the draw is a no-op or
//     the region is empty.
//
// Example:
//
// ```go
//
//	rng := rand.New(rand.NewSource(1))
//	rects := SampleRects(rng, 480, 640, DefaultCutoutConfig())
//
// ```
func SampleRects(rng *rand.Rand, height, width int, cfg CutoutConfig) []images.Rect {
	if height <= 0 || width <= 0 {
		return nil
	}
	if rng.Float64() >= cfg.Prob {
		return nil
	}

	num := cfg.Num.Lo + rng.Intn(cfg.Num.Hi-cfg.Num.Lo+1)
	rects := make([]images.Rect, 0, num)
	for range num {
		rh, rw := sampleSize(rng, height, width, cfg)
		x0 := rng.Intn(width)
		y0 := rng.Intn(height)
		rects = append(rects, images.Rect{
			X1: x0,
			Y1: y0,
			X2: min(x0+rw, width),
			Y2: min(y0+rh, height),
		})
	}
	return rects
}

// sampleSize returns the height and width of one rectangle for a region.
func sampleSize(rng *rand.Rand, height, width int, cfg CutoutConfig) (int, int) {
	pct := uniform(rng, cfg.SizePct)
	area := pct * float64(height*width)
	aspect := uniform(rng, cfg.Aspect)
	rh := int(math.Round(math.Sqrt(area * aspect)))
	rw := int(math.Round(math.Sqrt(area / aspect)))
	return rh, rw
}

func uniform(rng *rand.Rand, r Range[float64]) float64 {
	return rng.Float64()*(r.Hi-r.Lo) + r.Lo
}
