// Package config loads editor options from a TOML or YAML file, a .env
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"geodraw/internal/mode"
)

// Controls toggles the drawing tools a host offers.
type Controls struct {
	Point     bool `toml:"point" yaml:"point"`
	Line      bool `toml:"line" yaml:"line"`
	Polygon   bool `toml:"polygon" yaml:"polygon"`
	Rectangle bool `toml:"rectangle" yaml:"rectangle"`
	Trash     bool `toml:"trash" yaml:"trash"`
}

// Allows reports whether the tool entering mode name is enabled. Select
// and direct-select are always available.
func (c Controls) Allows(name string) bool {
	switch name {
	case mode.DrawPoint:
		return c.Point
	case mode.DrawLine:
		return c.Line
	case mode.DrawPolygon:
		return c.Polygon
	case mode.DrawRectangle:
		return c.Rectangle
	}
	return mode.Valid(name)
}

type Options struct {
	DefaultMode string `toml:"default_mode" yaml:"default_mode"`
	// Drawing off leaves a view-and-edit host: every tool control and
	// trash are disabled.
	Drawing bool `toml:"drawing" yaml:"drawing"`
	// Keybindings forwards Escape/Enter and maps Backspace/Delete to trash.
	Keybindings bool `toml:"keybindings" yaml:"keybindings"`
	BoxSelect   bool `toml:"box_select" yaml:"box_select"`
	// ClickBuffer and TouchBuffer are the screen distances a press may
	// travel and still count as a click or a tap.
	ClickBuffer float64 `toml:"click_buffer" yaml:"click_buffer"`
	TouchBuffer float64 `toml:"touch_buffer" yaml:"touch_buffer"`
	// QueryRadius is the hit radius around the pointer, in screen units.
	QueryRadius float64  `toml:"query_radius" yaml:"query_radius"`
	Controls    Controls `toml:"controls" yaml:"controls"`
	LogLevel    string   `toml:"log_level" yaml:"log_level"`
}

const (
	EnvLogLevel    = "GEODRAW_LOG_LEVEL"
	EnvDefaultMode = "GEODRAW_DEFAULT_MODE"
	EnvBoxSelect   = "GEODRAW_BOX_SELECT"
	EnvDrawing     = "GEODRAW_DRAWING"
)

var (
	ErrUnknownFormat   = errors.New("config: unknown file format")
	ErrDrawingDisabled = errors.New("config: drawing is disabled")
)

func Default() Options {
	return Options{
		DefaultMode: mode.Select,
		Drawing:     true,
		Keybindings: true,
		BoxSelect:   true,
		ClickBuffer: 2,
		TouchBuffer: 25,
		QueryRadius: 1,
		Controls:    Controls{Point: true, Line: true, Polygon: true, Rectangle: true, Trash: true},
		LogLevel:    "info",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Options, error) {
	o := Default()
	if path == "" {
		return o, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return o, fmt.Errorf("config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &o); err != nil {
			return o, fmt.Errorf("config: %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &o); err != nil {
			return o, fmt.Errorf("config: %s: %w", path, err)
		}
	default:
		return o, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	return o, nil
}

// ApplyEnv loads the given .env files when present and lets GEODRAW_*
// variables override o.
func (o *Options) ApplyEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: %s: %w", f, err)
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		o.LogLevel = v
	}
	if v := os.Getenv(EnvDefaultMode); v != "" {
		o.DefaultMode = v
	}
	for name, dst := range map[string]*bool{EnvBoxSelect: &o.BoxSelect, EnvDrawing: &o.Drawing} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
		*dst = b
	}
	return nil
}

// Validate clamps out of range distances to their defaults and rejects
// unknown mode names and log levels. With drawing off every control is
// cleared and a drawing default mode is rejected.
func (o Options) Validate() (Options, error) {
	d := Default()
	if o.ClickBuffer < 0 {
		o.ClickBuffer = d.ClickBuffer
	}
	if o.TouchBuffer < 0 {
		o.TouchBuffer = d.TouchBuffer
	}
	if o.QueryRadius < 0 {
		o.QueryRadius = d.QueryRadius
	}
	if o.DefaultMode == "" {
		o.DefaultMode = d.DefaultMode
	}
	if !mode.Valid(o.DefaultMode) {
		return o, fmt.Errorf("config: default_mode: %w: %q", mode.ErrUnknownMode, o.DefaultMode)
	}
	if !o.Drawing {
		o.Controls = Controls{}
		if !o.Controls.Allows(o.DefaultMode) {
			return o, fmt.Errorf("%w: default_mode %q", ErrDrawingDisabled, o.DefaultMode)
		}
	}
	if o.LogLevel == "" {
		o.LogLevel = d.LogLevel
	}
	if _, err := logrus.ParseLevel(o.LogLevel); err != nil {
		return o, fmt.Errorf("config: log_level: %w", err)
	}
	return o, nil
}

// Level returns the parsed log level, info when unparsable.
func (o Options) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(o.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Settings derives the mode machine settings.
func (o Options) Settings() mode.Settings {
	return mode.Settings{BoxSelect: o.BoxSelect}
}
