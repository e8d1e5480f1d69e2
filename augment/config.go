// Package augment - region cutout augmentations and the transforms they produce.
package augment

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// DefaultRemovalThreshold is the occluded fraction of a box above which the box
// is dropped from supervision.
const DefaultRemovalThreshold = 0.9

// Range is an inclusive [Lo, Hi] pair. Floating point ranges are sampled as
// half-open [Lo, Hi); integer ranges include Hi.
type Range[T int | float64] struct {
	Lo T `json:"lo" yaml:"lo" mapstructure:"lo"`
	Hi T `json:"hi" yaml:"hi" mapstructure:"hi"`
}

// Fixed returns a range whose bounds are both v.
func Fixed[T int | float64](v T) Range[T] {
	return Range[T]{Lo: v, Hi: v}
}

// CutoutConfig holds the sampling parameters shared by Cutout and ObjectAwareCutout.
type CutoutConfig struct {
	// Prob is the probability in [0, 1] that any rectangles are sampled at all.
	Prob float64 `json:"prob" yaml:"prob" mapstructure:"prob"`
	// SizePct is the area of each rectangle as a fraction of the sampled region.
	SizePct Range[float64] `json:"size_pct" yaml:"size_pct" mapstructure:"size_pct"`
	// Aspect is the height/width ratio of each rectangle.
	Aspect Range[float64] `json:"aspect" yaml:"aspect" mapstructure:"aspect"`
	// Num is the number of rectangles drawn when the augmentation fires.
	Num Range[int] `json:"num" yaml:"num" mapstructure:"num"`
	// RemovalThreshold is the occluded fraction above which a box is removed.
	RemovalThreshold float64 `json:"removal_threshold" yaml:"removal_threshold" mapstructure:"removal_threshold"`
}

// DefaultCutoutConfig returns the stock cutout parameters.
func DefaultCutoutConfig() CutoutConfig {
	return CutoutConfig{
		Prob:             0.5,
		SizePct:          Range[float64]{Lo: 0.02, Hi: 0.05},
		Aspect:           Range[float64]{Lo: 0.33, Hi: 3},
		Num:              Range[int]{Lo: 5, Hi: 10},
		RemovalThreshold: DefaultRemovalThreshold,
	}
}

// ConfigError reports an augmentation parameter that was rejected at construction.
type ConfigError struct {
	// Field is the name of the offending parameter.
	Field string
	// Value is the rejected value.
	Value any
	// Reason says which constraint was violated.
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s (given: %v): %s", e.Field, e.Value, e.Reason)
}

func configError(field string, value any, reason string) error {
	return errors.WithStack(&ConfigError{Field: field, Value: value, Reason: reason})
}

// Validate checks the configuration and returns a *ConfigError for the first
// offending field.
//
// Returns:
//   - error wrapping a *ConfigError, or nil if the configuration is usable.
//
// Example:
//
// ```go
//
//	cfg := DefaultCutoutConfig()
//	cfg.Prob = 1.5
//	err := cfg.Validate() // invalid prob (given: 1.5): must be between 0.0 and 1.0
//
// ```
func (c CutoutConfig) Validate() error {
	if err := checkUnit("prob", c.Prob); err != nil {
		return err
	}
	if err := checkUnit("size_pct.lo", c.SizePct.Lo); err != nil {
		return err
	}
	if err := checkUnit("size_pct.hi", c.SizePct.Hi); err != nil {
		return err
	}
	if c.SizePct.Lo > c.SizePct.Hi {
		return configError("size_pct", c.SizePct, "lower bound exceeds upper bound")
	}
	if math.IsNaN(c.Aspect.Lo) || math.IsInf(c.Aspect.Lo, 0) {
		return configError("aspect.lo", c.Aspect.Lo, "must be finite")
	}
	if math.IsNaN(c.Aspect.Hi) || math.IsInf(c.Aspect.Hi, 0) {
		return configError("aspect.hi", c.Aspect.Hi, "must be finite")
	}
	if c.Aspect.Lo <= 0 {
		return configError("aspect.lo", c.Aspect.Lo, "must be positive")
	}
	if c.Aspect.Lo > c.Aspect.Hi {
		return configError("aspect", c.Aspect, "lower bound exceeds upper bound")
	}
	if c.Num.Lo < 0 {
		return configError("num.lo", c.Num.Lo, "must not be negative")
	}
	if c.Num.Lo > c.Num.Hi {
		return configError("num", c.Num, "lower bound exceeds upper bound")
	}
	return checkUnit("removal_threshold", c.RemovalThreshold)
}

func checkUnit(field string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return configError(field, v, "must be between 0.0 and 1.0")
	}
	return nil
}
