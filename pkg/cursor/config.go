package cursor

import (
	"fmt"
	"math"
	"time"
)

// Defaults for [Config].
const (
	DefaultStep             = 0.35
	DefaultBaseSpeed        = 0.1
	DefaultBoostMax         = 0.4
	DefaultMultiplier       = 0.22
	DefaultSilenceThreshold = 0.02
	DefaultLoudnessCeiling  = 0.3
)

// Config holds the speed constants of a cursor. Zero fields are replaced by
// their defaults in [Config.WithDefaults], in config files as well as in code,
// so a field cannot be set to exactly zero. For SilenceThreshold the closest
// setting is math.SmallestNonzeroFloat64, which stalls only on digital
// silence. A zero Step would freeze an audio-less cursor and is never wanted.
type Config struct {
	// Step is the per-tick advance when no loudness reading is available.
	Step float64 `json:"step" toml:"step"`

	// BaseSpeed is the advance at the silence threshold, before Multiplier.
	BaseSpeed float64 `json:"base_speed" toml:"base_speed"`

	// BoostMax is the extra speed added at LoudnessCeiling, before Multiplier.
	BoostMax float64 `json:"boost_max" toml:"boost_max"`

	// Multiplier scales the loudness-driven advance.
	Multiplier float64 `json:"multiplier" toml:"multiplier"`

	// SilenceThreshold is the loudness below which the cursor stalls. Zero
	// means DefaultSilenceThreshold.
	SilenceThreshold float64 `json:"silence_threshold" toml:"silence_threshold"`

	// LoudnessCeiling is the loudness at which the boost saturates.
	LoudnessCeiling float64 `json:"loudness_ceiling" toml:"loudness_ceiling"`
}

// DefaultConfig returns the standard speed constants.
func DefaultConfig() Config {
	return Config{
		Step:             DefaultStep,
		BaseSpeed:        DefaultBaseSpeed,
		BoostMax:         DefaultBoostMax,
		Multiplier:       DefaultMultiplier,
		SilenceThreshold: DefaultSilenceThreshold,
		LoudnessCeiling:  DefaultLoudnessCeiling,
	}
}

// WithDefaults returns a copy of c with zero fields set to their defaults.
// Positive values are kept as given, however small.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Step == 0 {
		c.Step = d.Step
	}
	if c.BaseSpeed == 0 {
		c.BaseSpeed = d.BaseSpeed
	}
	if c.BoostMax == 0 {
		c.BoostMax = d.BoostMax
	}
	if c.Multiplier == 0 {
		c.Multiplier = d.Multiplier
	}
	if c.SilenceThreshold == 0 {
		c.SilenceThreshold = d.SilenceThreshold
	}
	if c.LoudnessCeiling == 0 {
		c.LoudnessCeiling = d.LoudnessCeiling
	}
	return c
}

// Validate rejects negative or non-finite values.
func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"step", c.Step},
		{"base_speed", c.BaseSpeed},
		{"boost_max", c.BoostMax},
		{"multiplier", c.Multiplier},
		{"silence_threshold", c.SilenceThreshold},
		{"loudness_ceiling", c.LoudnessCeiling},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be finite", f.name)
		}
		if f.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %g", f.name, f.v)
		}
	}
	return nil
}

// FitBaseSpeed returns the base speed for an audio-driven run over a path of
// pathLen elements, such that a run at mid loudness roughly spans duration
// at fps ticks per second. headroom < 1 leaves room for the loudness boost
// and silent stretches. Zero is returned if any input is non-positive.
func FitBaseSpeed(pathLen int, duration time.Duration, fps, headroom, multiplier float64) float64 {
	if pathLen < 2 || duration <= 0 || fps <= 0 || headroom <= 0 || multiplier <= 0 {
		return 0
	}
	ticks := duration.Seconds() * fps
	return float64(pathLen-1) / ticks / multiplier * headroom
}
