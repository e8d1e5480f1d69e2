package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detaug/augment"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "seed: 7\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Mode)
	assert.Equal(t, "datasets", cfg.DataRoot)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.True(t, cfg.Mapper.IsTrain)
	assert.Equal(t, augment.DefaultCutoutConfig(), cfg.Augment.Cutout.CutoutConfig)
	assert.Equal(t, augment.DefaultCutoutConfig(), cfg.Augment.ObjectAwareCutout.CutoutConfig)
	assert.Equal(t, augment.Range[int]{Lo: 800, Hi: 800}, cfg.Augment.Resize.ShortEdge)
	assert.Equal(t, 1333, cfg.Augment.Resize.MaxSize)

	augs, err := cfg.Augmentations()
	require.NoError(t, err)
	assert.Empty(t, augs)
}

// TestLoad_Ranges validates the scalar, list and mapping forms of a range.
func TestLoad_Ranges(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
log:
  mode: release
data_root: /data
datasets:
  - name: custom_val
    json_file: /data/custom.json
    image_root: /data/custom
augment:
  resize:
    enabled: true
    short_edge: [640, 800]
    max_size: 1000
  flip:
    enabled: true
    prob: 0.25
  cutout:
    enabled: true
    prob: 1
    size_pct: 0.1
    aspect: {lo: 0.5, hi: 2}
    num: [1, 3]
  object_aware_cutout:
    enabled: true
    removal_threshold: 0.8
mapper:
  is_train: false
`))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Log.Mode)
	assert.False(t, cfg.Mapper.IsTrain)
	assert.Equal(t, augment.Range[int]{Lo: 640, Hi: 800}, cfg.Augment.Resize.ShortEdge)

	cut := cfg.Augment.Cutout.CutoutConfig
	assert.Equal(t, 1.0, cut.Prob)
	assert.Equal(t, augment.Fixed(0.1), cut.SizePct)
	assert.Equal(t, augment.Range[float64]{Lo: 0.5, Hi: 2}, cut.Aspect)
	assert.Equal(t, augment.Range[int]{Lo: 1, Hi: 3}, cut.Num)
	assert.Equal(t, augment.DefaultRemovalThreshold, cut.RemovalThreshold)
	assert.Equal(t, 0.8, cfg.Augment.ObjectAwareCutout.RemovalThreshold)

	augs, err := cfg.Augmentations()
	require.NoError(t, err)
	require.Len(t, augs, 4)
	assert.IsType(t, &augment.ResizeShortestEdge{}, augs[0])
	assert.IsType(t, &augment.RandomFlip{}, augs[1])
	assert.IsType(t, &augment.Cutout{}, augs[2])
	assert.IsType(t, &augment.ObjectAwareCutout{}, augs[3])

	reg, err := cfg.Registry()
	require.NoError(t, err)
	assert.Contains(t, reg.Names(), "custom_val")
	assert.Contains(t, reg.Names(), "citypersons_train")
	e, err := reg.Get("custom_val")
	require.NoError(t, err)
	assert.Equal(t, "/data/custom.json", e.JSONFile)
	assert.Equal(t, "/data/custom", e.ImageRoot)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Load(writeConfig(t, "augment:\n  cutout:\n    num: [1, 2, 3]\n"))
	assert.ErrorContains(t, err, "range needs exactly 2 values")
}

func TestConfig_AugmentationsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"Cutout prob", "augment:\n  cutout:\n    enabled: true\n    prob: 2\n", "prob"},
		{"Object-aware aspect", "augment:\n  object_aware_cutout:\n    enabled: true\n    aspect: [3, 1]\n", "aspect"},
		{"Flip prob", "augment:\n  flip:\n    enabled: true\n    prob: -1\n", "flip.prob"},
		{"Resize max size", "augment:\n  resize:\n    enabled: true\n    max_size: -1\n", "resize.max_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			require.NoError(t, err)

			_, err = cfg.Augmentations()
			var cerr *augment.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestConfig_RegistryDuplicate(t *testing.T) {
	cfg, err := Load(writeConfig(t, "datasets:\n  - name: bdd_val\n    json_file: x.json\n"))
	require.NoError(t, err)
	_, err = cfg.Registry()
	assert.ErrorContains(t, err, "already registered")
}
