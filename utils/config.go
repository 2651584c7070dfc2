package utils

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks configuration values that fail validation. Callers
// match it with errors.Is.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the recognized simulation options. A Config is assembled
// once per session from defaults, an optional YAML file, and a flag
// overlay; after that it is treated as immutable.
type Config struct {
	// AliveGlyph and DeadGlyph are the rendering symbols for cells.
	AliveGlyph string `json:"alive_glyph" yaml:"alive_glyph"`
	DeadGlyph  string `json:"dead_glyph" yaml:"dead_glyph"`

	// SourceBlankGlyph is the character treated as "blank" when seeding a
	// grid from text content; anything else becomes a living cell.
	SourceBlankGlyph string `json:"source_blank_glyph" yaml:"source_blank_glyph"`

	// TickIntervalMs is the time between generations in milliseconds.
	TickIntervalMs int `json:"tick_interval_ms" yaml:"tick_interval_ms"`

	// SeedDensity is the probability in [0, 1] that a cell starts alive
	// under random seeding.
	SeedDensity float64 `json:"seed_density" yaml:"seed_density"`

	// Width and Height size the surface when no measurable surface exists
	// (serve mode). The interactive host always measures instead.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// NoiseScale is the sampling frequency for Perlin-noise seeding.
	NoiseScale float64 `json:"noise_scale" yaml:"noise_scale"`

	// LogLevel is "info" or "debug".
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		AliveGlyph:       "█",
		DeadGlyph:        " ",
		SourceBlankGlyph: " ",
		TickIntervalMs:   100,
		SeedDensity:      0.2,
		Width:            80,
		Height:           24,
		NoiseScale:       0.1,
		LogLevel:         "info",
	}
}

// LoadConfig loads configuration from a YAML file, unmarshaled over the
// defaults so absent fields keep their default values and unrecognized
// fields are ignored.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}

// Validate checks that the configuration is usable. Violations wrap
// ErrInvalidConfig.
func (c Config) Validate() error {
	if c.SeedDensity < 0 || c.SeedDensity > 1 {
		return errors.Wrapf(ErrInvalidConfig, "[Validate] seed density %v outside [0,1]", c.SeedDensity)
	}
	if c.TickIntervalMs <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "[Validate] tick interval %dms must be positive", c.TickIntervalMs)
	}
	if c.AliveGlyph == "" || c.DeadGlyph == "" {
		return errors.Wrap(ErrInvalidConfig, "[Validate] cell glyphs must not be empty")
	}
	if c.SourceBlankGlyph == "" {
		return errors.Wrap(ErrInvalidConfig, "[Validate] source blank glyph must not be empty")
	}
	if c.Width < 0 || c.Height < 0 {
		return errors.Wrapf(ErrInvalidConfig, "[Validate] surface %dx%d must not be negative", c.Width, c.Height)
	}
	if c.NoiseScale <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "[Validate] noise scale %v must be positive", c.NoiseScale)
	}
	return nil
}

// Interval returns the tick interval as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// BlankRune returns the first rune of the source blank glyph, the unit the
// seeding adapter compares against. Defaults to a space.
func (c Config) BlankRune() rune {
	for _, r := range c.SourceBlankGlyph {
		return r
	}
	return ' '
}

// Overlay is a partial configuration; nil fields mean "keep the base
// value". Flag intake builds one from the flags the user actually set.
type Overlay struct {
	AliveGlyph       *string
	DeadGlyph        *string
	SourceBlankGlyph *string
	TickIntervalMs   *int
	SeedDensity      *float64
	Width            *int
	Height           *int
	NoiseScale       *float64
	LogLevel         *string
}

// ApplyTo merges the overlay onto a base config and returns the result.
// Pure: neither the overlay nor the base is modified.
func (o Overlay) ApplyTo(base Config) Config {
	if o.AliveGlyph != nil {
		base.AliveGlyph = *o.AliveGlyph
	}
	if o.DeadGlyph != nil {
		base.DeadGlyph = *o.DeadGlyph
	}
	if o.SourceBlankGlyph != nil {
		base.SourceBlankGlyph = *o.SourceBlankGlyph
	}
	if o.TickIntervalMs != nil {
		base.TickIntervalMs = *o.TickIntervalMs
	}
	if o.SeedDensity != nil {
		base.SeedDensity = *o.SeedDensity
	}
	if o.Width != nil {
		base.Width = *o.Width
	}
	if o.Height != nil {
		base.Height = *o.Height
	}
	if o.NoiseScale != nil {
		base.NoiseScale = *o.NoiseScale
	}
	if o.LogLevel != nil {
		base.LogLevel = *o.LogLevel
	}
	return base
}
