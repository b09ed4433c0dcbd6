package ttdviewer

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bodgit/ttdviewer/animation"
	"github.com/bodgit/ttdviewer/palette"
)

// Duration is a time.Duration read from a string such as "30ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// HideConfig selects which palette indices are hidden from palette views.
type HideConfig struct {
	Animation bool `toml:"animation"`
	MagicPink bool `toml:"magic_pink"`
	PureWhite bool `toml:"pure_white"`
	Recolored bool `toml:"recolored"`
}

// Config is the viewer configuration.
type Config struct {
	Climate           string   `toml:"climate"`
	Interval          Duration `toml:"interval"`
	Step              uint16   `toml:"step"`
	TransparentAsBlue bool     `toml:"transparent_as_blue"`
	RecolorFile       string   `toml:"recolor_file"`
	Database          string   `toml:"database"`

	// Animation enables or disables animation rules by name
	Animation map[string]bool `toml:"animation"`

	Hide HideConfig `toml:"hide"`

	// Selection maps choice names to the name of the selected child
	Selection map[string]string `toml:"selection"`
}

// DefaultConfig returns the configuration used when there is no file.
func DefaultConfig() *Config {
	return &Config{
		Climate:   palette.Temperate.String(),
		Interval:  Duration{animation.DefaultInterval},
		Step:      animation.DefaultStep,
		Database:  "ttdviewer.db",
		Animation: make(map[string]bool),
		Hide: HideConfig{
			Animation: true,
			MagicPink: true,
			PureWhite: true,
			Recolored: true,
		},
		Selection: make(map[string]string),
	}
}

// LoadConfig reads the TOML file at path over the defaults. A missing file
// is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the values that cannot be checked while decoding.
func (c *Config) Validate() error {
	if _, err := palette.ParseClimate(c.Climate); err != nil {
		return err
	}
	if c.Interval.Duration <= 0 {
		return fmt.Errorf("interval must be positive, not %s", c.Interval)
	}
	if c.Step == 0 {
		return errors.New("step must not be zero")
	}
	return nil
}

// ClimateValue returns the configured climate, temperate if it is invalid.
func (c *Config) ClimateValue() palette.Climate {
	climate, _ := palette.ParseClimate(c.Climate)
	return climate
}
