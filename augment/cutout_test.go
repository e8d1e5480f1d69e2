package augment

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detaug/images"
)

// newTestImage returns a raster filled with a non-zero gradient so that
// blacked-out pixels are easy to tell apart.
func newTestImage(width, height int) *images.RGB {
	img := images.NewRGB(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, uint8(1+x%250), uint8(1+y%250), 200)
		}
	}
	return img
}

func alwaysConfig() CutoutConfig {
	cfg := DefaultCutoutConfig()
	cfg.Prob = 1
	return cfg
}

// TestSampleRects_ProbZero validates that a zero probability never samples.
func TestSampleRects_ProbZero(t *testing.T) {
	cfg := DefaultCutoutConfig()
	cfg.Prob = 0
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		assert.Empty(t, SampleRects(rng, 480, 640, cfg))
	}
}

// TestSampleRects_ProbOne validates the rectangle count and bounds when the
// augmentation always fires.
func TestSampleRects_ProbOne(t *testing.T) {
	tests := []struct {
		name          string
		height, width int
		num           Range[int]
		sizePct       Range[float64]
	}{
		{"Default sizes", 480, 640, Range[int]{Lo: 5, Hi: 10}, Range[float64]{Lo: 0.02, Hi: 0.05}},
		{"Fixed count", 100, 100, Fixed(3), Range[float64]{Lo: 0.1, Hi: 0.2}},
		{"Huge rectangles", 50, 80, Range[int]{Lo: 1, Hi: 4}, Range[float64]{Lo: 0.9, Hi: 1}},
		{"Zero count", 50, 50, Fixed(0), Range[float64]{Lo: 0.1, Hi: 0.2}},
		{"Tiny region", 1, 1, Range[int]{Lo: 2, Hi: 2}, Range[float64]{Lo: 0.5, Hi: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := alwaysConfig()
			cfg.Num = tt.num
			cfg.SizePct = tt.sizePct
			require.NoError(t, cfg.Validate())

			rng := rand.New(rand.NewSource(42))
			for i := 0; i < 100; i++ {
				rects := SampleRects(rng, tt.height, tt.width, cfg)
				assert.GreaterOrEqual(t, len(rects), tt.num.Lo)
				assert.LessOrEqual(t, len(rects), tt.num.Hi)
				for _, r := range rects {
					assert.True(t, 0 <= r.X1 && r.X1 <= r.X2 && r.X2 <= tt.width, "x out of bounds: %v", r)
					assert.True(t, 0 <= r.Y1 && r.Y1 <= r.Y2 && r.Y2 <= tt.height, "y out of bounds: %v", r)
				}
			}
		})
	}
}

// TestSampleRects_Size checks the rectangle dimensions for a fixed size and
// aspect when the rectangle is anchored far enough from the edges.
func TestSampleRects_Size(t *testing.T) {
	cfg := alwaysConfig()
	cfg.Num = Fixed(1)
	cfg.SizePct = Fixed(0.01)
	cfg.Aspect = Fixed(4.0)

	// area = 0.01 * 1000 * 1000 = 10000, h = sqrt(40000) = 200, w = sqrt(2500) = 50
	rng := rand.New(rand.NewSource(3))
	seen := 0
	for i := 0; i < 50; i++ {
		rects := SampleRects(rng, 1000, 1000, cfg)
		require.Len(t, rects, 1)
		r := rects[0]
		if r.X1+50 <= 1000 && r.Y1+200 <= 1000 {
			assert.Equal(t, 50, r.Dx())
			assert.Equal(t, 200, r.Dy())
			seen++
		}
	}
	assert.Greater(t, seen, 0)
}

// TestSampleRects_EmptyRegion ensures empty regions never sample.
func TestSampleRects_EmptyRegion(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Empty(t, SampleRects(rng, 0, 100, alwaysConfig()))
	assert.Empty(t, SampleRects(rng, 100, 0, alwaysConfig()))
}

// TestSampleRects_Deterministic validates reproducibility with a seeded source.
func TestSampleRects_Deterministic(t *testing.T) {
	a := SampleRects(rand.New(rand.NewSource(99)), 480, 640, alwaysConfig())
	b := SampleRects(rand.New(rand.NewSource(99)), 480, 640, alwaysConfig())
	assert.Equal(t, a, b)
}

// TestApplyCutout validates pixel filling, copy-on-apply and idempotence.
func TestApplyCutout(t *testing.T) {
	img := newTestImage(64, 48)
	original := img.Clone()

	t.Run("Empty set is identity", func(t *testing.T) {
		out := ApplyCutout(img, nil)
		assert.Equal(t, img.Pix, out.Pix)
		assert.NotSame(t, img, out)
	})

	rects := []images.Rect{
		{X1: 10, Y1: 10, X2: 20, Y2: 15},
		{X1: 15, Y1: 12, X2: 30, Y2: 20},
		{X1: 60, Y1: 40, X2: 100, Y2: 100},
	}

	t.Run("Pixels inside rectangles are zeroed", func(t *testing.T) {
		out := ApplyCutout(img, rects)
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				inside := false
				for _, r := range rects {
					if x >= r.X1 && x < r.X2 && y >= r.Y1 && y < r.Y2 {
						inside = true
					}
				}
				r, g, b := out.At(x, y)
				if inside {
					assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b}, "pixel (%d,%d)", x, y)
				} else {
					or, og, ob := img.At(x, y)
					assert.Equal(t, [3]uint8{or, og, ob}, [3]uint8{r, g, b}, "pixel (%d,%d)", x, y)
				}
			}
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		once := ApplyCutout(img, rects)
		twice := ApplyCutout(once, rects)
		assert.Equal(t, once.Pix, twice.Pix)
	})

	t.Run("Order independent", func(t *testing.T) {
		reversed := []images.Rect{rects[2], rects[1], rects[0]}
		assert.Equal(t, ApplyCutout(img, rects).Pix, ApplyCutout(img, reversed).Pix)
	})

	assert.Equal(t, original.Pix, img.Pix, "source image must not be modified")
}

// TestCutout_GetTransform validates the global cutout augmentation.
func TestCutout_GetTransform(t *testing.T) {
	img := newTestImage(64, 48)

	never := DefaultCutoutConfig()
	never.Prob = 0
	c, err := NewCutout(never)
	require.NoError(t, err)
	assert.Equal(t, NoOp{}, c.GetTransform(rand.New(rand.NewSource(1)), &Input{Image: img}))

	c, err = NewCutout(alwaysConfig())
	require.NoError(t, err)
	tr := c.GetTransform(rand.New(rand.NewSource(1)), &Input{Image: img})
	cut, ok := tr.(CutoutTransform)
	require.True(t, ok, "expected CutoutTransform, got %T", tr)
	assert.GreaterOrEqual(t, len(cut.Rects), 5)
	assert.LessOrEqual(t, len(cut.Rects), 10)
	assert.Equal(t, DefaultRemovalThreshold, cut.RemovalThreshold)
}

// TestCutoutConfig_Validate validates construction-time rejection of bad
// parameters.
func TestCutoutConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *CutoutConfig)
		field  string
	}{
		{"Negative prob", func(c *CutoutConfig) { c.Prob = -0.1 }, "prob"},
		{"Prob above one", func(c *CutoutConfig) { c.Prob = 1.1 }, "prob"},
		{"NaN prob", func(c *CutoutConfig) { c.Prob = math.NaN() }, "prob"},
		{"Negative size lower bound", func(c *CutoutConfig) { c.SizePct.Lo = -0.1 }, "size_pct.lo"},
		{"Size upper bound above one", func(c *CutoutConfig) { c.SizePct.Hi = 1.5 }, "size_pct.hi"},
		{"Inverted size range", func(c *CutoutConfig) { c.SizePct = Range[float64]{Lo: 0.2, Hi: 0.1} }, "size_pct"},
		{"Zero aspect", func(c *CutoutConfig) { c.Aspect.Lo = 0 }, "aspect.lo"},
		{"NaN aspect lower bound", func(c *CutoutConfig) { c.Aspect.Lo = math.NaN() }, "aspect.lo"},
		{"Infinite aspect upper bound", func(c *CutoutConfig) { c.Aspect.Hi = math.Inf(1) }, "aspect.hi"},
		{"Infinite aspect lower bound", func(c *CutoutConfig) { c.Aspect.Lo = math.Inf(-1) }, "aspect.lo"},
		{"Inverted aspect range", func(c *CutoutConfig) { c.Aspect = Range[float64]{Lo: 3, Hi: 1} }, "aspect"},
		{"Negative count", func(c *CutoutConfig) { c.Num.Lo = -1 }, "num.lo"},
		{"Inverted count range", func(c *CutoutConfig) { c.Num = Range[int]{Lo: 5, Hi: 2} }, "num"},
		{"Removal threshold above one", func(c *CutoutConfig) { c.RemovalThreshold = 1.2 }, "removal_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCutoutConfig()
			tt.mutate(&cfg)

			_, err := NewCutout(cfg)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)

			_, err = NewObjectAwareCutout(cfg)
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	require.NoError(t, DefaultCutoutConfig().Validate())
}
