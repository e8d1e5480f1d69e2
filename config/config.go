// Package config loads the YAML configuration of the dataset tools.
package config

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/nvr-ai/go-detaug/augment"
	"github.com/nvr-ai/go-detaug/datasets"
)

type Config struct {
	Log      LogConfig       `mapstructure:"log"`
	DataRoot string          `mapstructure:"data_root"`
	Datasets []DatasetConfig `mapstructure:"datasets"`
	Augment  AugmentConfig   `mapstructure:"augment"`
	Mapper   MapperConfig    `mapstructure:"mapper"`
	Seed     int64           `mapstructure:"seed"`
}

type LogConfig struct {
	// Mode is "release" for JSON production logs, anything else for
	// human-readable development logs.
	Mode string `mapstructure:"mode"`
}

// DatasetConfig registers an extra dataset next to the defaults under DataRoot.
type DatasetConfig struct {
	Name           string `mapstructure:"name"`
	datasets.Entry `mapstructure:",squash"`
}

type AugmentConfig struct {
	Resize            ResizeConfig `mapstructure:"resize"`
	Flip              FlipConfig   `mapstructure:"flip"`
	Cutout            CutoutConfig `mapstructure:"cutout"`
	ObjectAwareCutout CutoutConfig `mapstructure:"object_aware_cutout"`
}

type CutoutConfig struct {
	Enabled              bool `mapstructure:"enabled"`
	augment.CutoutConfig `mapstructure:",squash"`
}

type ResizeConfig struct {
	Enabled   bool               `mapstructure:"enabled"`
	ShortEdge augment.Range[int] `mapstructure:"short_edge"`
	MaxSize   int                `mapstructure:"max_size"`
}

type FlipConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Prob    float64 `mapstructure:"prob"`
}

type MapperConfig struct {
	IsTrain bool `mapstructure:"is_train"`
}

// Load reads the configuration from a YAML file. Keys missing from the file
// keep their defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		rangeHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.mode", "debug")
	v.SetDefault("data_root", "datasets")
	v.SetDefault("seed", 42)
	v.SetDefault("mapper.is_train", true)

	v.SetDefault("augment.resize.enabled", false)
	v.SetDefault("augment.resize.short_edge", []int{800, 800})
	v.SetDefault("augment.resize.max_size", 1333)

	v.SetDefault("augment.flip.enabled", false)
	v.SetDefault("augment.flip.prob", 0.5)

	def := augment.DefaultCutoutConfig()
	for _, section := range []string{"augment.cutout", "augment.object_aware_cutout"} {
		v.SetDefault(section+".enabled", false)
		v.SetDefault(section+".prob", def.Prob)
		v.SetDefault(section+".size_pct", []float64{def.SizePct.Lo, def.SizePct.Hi})
		v.SetDefault(section+".aspect", []float64{def.Aspect.Lo, def.Aspect.Hi})
		v.SetDefault(section+".num", []int{def.Num.Lo, def.Num.Hi})
		v.SetDefault(section+".removal_threshold", def.RemovalThreshold)
	}
}

var rangeTypes = map[reflect.Type]bool{
	reflect.TypeOf(augment.Range[int]{}):     true,
	reflect.TypeOf(augment.Range[float64]{}): true,
}

// rangeHook lets a range be written as a scalar (both bounds equal) or as a
// [lo, hi] list, besides the {lo, hi} mapping.
func rangeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if !rangeTypes[to] || data == nil {
		return data, nil
	}
	val := reflect.ValueOf(data)
	switch val.Kind() {
	case reflect.Map, reflect.Struct:
		return data, nil
	case reflect.Slice, reflect.Array:
		if val.Len() != 2 {
			return nil, errors.Errorf("range needs exactly 2 values, got %d", val.Len())
		}
		return map[string]any{"lo": val.Index(0).Interface(), "hi": val.Index(1).Interface()}, nil
	default:
		return map[string]any{"lo": data, "hi": data}, nil
	}
}

// Augmentations builds the enabled augmentations in the order resize, flip,
// cutout, object-aware cutout.
//
// Returns:
//   - The augmentations, possibly empty.
//   - error wrapping an *augment.ConfigError if a section is invalid.
func (c *Config) Augmentations() ([]augment.Augmentation, error) {
	var augs []augment.Augmentation
	a := c.Augment
	if a.Resize.Enabled {
		r, err := augment.NewResizeShortestEdge(a.Resize.ShortEdge, a.Resize.MaxSize)
		if err != nil {
			return nil, errors.Wrap(err, "augment.resize")
		}
		augs = append(augs, r)
	}
	if a.Flip.Enabled {
		f, err := augment.NewRandomFlip(a.Flip.Prob)
		if err != nil {
			return nil, errors.Wrap(err, "augment.flip")
		}
		augs = append(augs, f)
	}
	if a.Cutout.Enabled {
		cut, err := augment.NewCutout(a.Cutout.CutoutConfig)
		if err != nil {
			return nil, errors.Wrap(err, "augment.cutout")
		}
		augs = append(augs, cut)
	}
	if a.ObjectAwareCutout.Enabled {
		cut, err := augment.NewObjectAwareCutout(a.ObjectAwareCutout.CutoutConfig)
		if err != nil {
			return nil, errors.Wrap(err, "augment.object_aware_cutout")
		}
		augs = append(augs, cut)
	}
	return augs, nil
}

// Registry registers the default datasets under DataRoot followed by the
// datasets listed in the file.
func (c *Config) Registry() (*datasets.Registry, error) {
	reg := datasets.NewRegistry()
	if err := datasets.RegisterDefaults(reg, c.DataRoot); err != nil {
		return nil, err
	}
	for _, d := range c.Datasets {
		if err := reg.Register(d.Name, d.Entry); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
