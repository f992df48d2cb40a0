package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/leandrodaf/gazeuke/internal/surface"
	"gopkg.in/yaml.v3"
)

const DefaultFileName = "gazeuke.yaml"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every user-adjustable setting of a trainer session.
type Config struct {
	Dwell     DwellConfig     `yaml:"dwell"`
	Gaze      GazeConfig      `yaml:"gaze"`
	Surface   SurfaceConfig   `yaml:"surface"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Notes     NotesConfig     `yaml:"notes"`
	Highlight HighlightConfig `yaml:"highlight"`
	Pointer   PointerConfig   `yaml:"pointer"`
	MIDI      MIDIConfig      `yaml:"midi"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	// Source indicates where the configuration originated (defaults or a file path).
	Source string `yaml:"-"`
}

// DwellConfig sets the fixation tolerances.
type DwellConfig struct {
	Duration time.Duration `yaml:"duration"`
	Range    float64       `yaml:"range"`
}

// GazeConfig selects and tunes the gaze input.
type GazeConfig struct {
	Source    string   `yaml:"source"`  // none, mouse or jsonl
	Command   []string `yaml:"command"` // Bridge process for jsonl; stdin when empty.
	Smoothing float64  `yaml:"smoothing"`
	PollHz    int      `yaml:"poll_hz"`
}

// SurfaceConfig describes the interaction surface.
type SurfaceConfig struct {
	Kind      string                  `yaml:"kind"` // grid or fretboard
	Width     float64                 `yaml:"width"`
	Height    float64                 `yaml:"height"`
	TagSize   float64                 `yaml:"tag_size"`
	Grid      GridConfig              `yaml:"grid"`
	Fretboard surface.FretboardLayout `yaml:"fretboard"`
}

// GridConfig chooses between a full-width grid and a centered grid of fixed cells.
type GridConfig struct {
	Centered bool    `yaml:"centered"`
	CellSize float64 `yaml:"cell_size"`
}

type PlaybackConfig struct {
	Tick time.Duration `yaml:"tick"`
}

type NotesConfig struct {
	Volume   int           `yaml:"volume"`
	Duration time.Duration `yaml:"duration"`
	Channel  int           `yaml:"channel"`
}

type HighlightConfig struct {
	Manual   time.Duration `yaml:"manual"`
	Playback time.Duration `yaml:"playback"`
}

type PointerConfig struct {
	MouseControl bool `yaml:"mouse_control"`
	ClickHook    bool `yaml:"click_hook"`
}

type MIDIConfig struct {
	ClientName string `yaml:"client_name"`
	Device     int    `yaml:"device"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // Empty disables the HTTP endpoint.
}

// Default returns the baseline configuration used when no overrides are supplied.
func Default() Config {
	return Config{
		Dwell: DwellConfig{Duration: 750 * time.Millisecond, Range: 75},
		Gaze:  GazeConfig{Source: "none", Smoothing: 0.8, PollHz: 30},
		Surface: SurfaceConfig{
			Kind:      "grid",
			Width:     1920,
			Height:    1080,
			TagSize:   surface.DefaultTagSize,
			Grid:      GridConfig{CellSize: 175},
			Fretboard: surface.DefaultFretboardLayout(),
		},
		Playback:  PlaybackConfig{Tick: 10 * time.Millisecond},
		Notes:     NotesConfig{Volume: 100, Duration: 500 * time.Millisecond},
		Highlight: HighlightConfig{Manual: time.Second, Playback: 5 * time.Second},
		Pointer:   PointerConfig{ClickHook: true},
		MIDI:      MIDIConfig{ClientName: "gazeuke"},
		Logging:   LoggingConfig{Level: "info"},
		Source:    "<defaults>",
	}
}

// Load reads configuration from disk if present, otherwise returning defaults.
// When path is empty, the loader attempts to read ./gazeuke.yaml but tolerates a missing file.
func Load(path string) (Config, error) {
	cfg := Default()

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = DefaultFileName
	}

	file, err := os.Open(candidate)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return cfg, fmt.Errorf("config file %q not found", candidate)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config file %q: %w", candidate, err)
	}
	defer file.Close()

	if err := Decode(file, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %q: %w", candidate, err)
	}
	cfg.Source = candidate
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode overlays YAML from r on cfg. Unknown keys are rejected; an empty document is allowed.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) normalize() {
	c.Gaze.Source = strings.ToLower(strings.TrimSpace(c.Gaze.Source))
	if c.Gaze.Source == "" {
		c.Gaze.Source = "none"
	}
	c.Surface.Kind = strings.ToLower(strings.TrimSpace(c.Surface.Kind))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if len(c.Surface.Fretboard.Strings) == 0 {
		c.Surface.Fretboard.Strings = surface.DefaultFretboardLayout().Strings
	}
}

// Validate ensures essential configuration values are present and sensible.
func (c Config) Validate() error {
	if c.Dwell.Duration <= 0 {
		return fmt.Errorf("%w: dwell.duration must be positive", ErrInvalidConfig)
	}
	if c.Dwell.Range <= 0 {
		return fmt.Errorf("%w: dwell.range must be positive", ErrInvalidConfig)
	}

	switch c.Gaze.Source {
	case "none", "mouse", "jsonl":
	default:
		return fmt.Errorf("%w: gaze.source must be none, mouse or jsonl, got %q", ErrInvalidConfig, c.Gaze.Source)
	}
	if c.Gaze.Smoothing < 0 || c.Gaze.Smoothing > 1 {
		return fmt.Errorf("%w: gaze.smoothing must be within [0,1]", ErrInvalidConfig)
	}
	if c.Gaze.PollHz <= 0 {
		return fmt.Errorf("%w: gaze.poll_hz must be positive", ErrInvalidConfig)
	}

	switch c.Surface.Kind {
	case "grid":
		if c.Surface.Grid.Centered && c.Surface.Grid.CellSize <= 0 {
			return fmt.Errorf("%w: surface.grid.cell_size must be positive", ErrInvalidConfig)
		}
	case "fretboard":
		if c.Surface.Fretboard.Frets <= 0 {
			return fmt.Errorf("%w: surface.fretboard.frets must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: surface.kind must be grid or fretboard, got %q", ErrInvalidConfig, c.Surface.Kind)
	}
	if c.Surface.Width <= 0 || c.Surface.Height <= 0 {
		return fmt.Errorf("%w: surface.width and surface.height must be positive", ErrInvalidConfig)
	}
	if c.Surface.TagSize < 0 {
		return fmt.Errorf("%w: surface.tag_size must not be negative", ErrInvalidConfig)
	}

	if c.Playback.Tick <= 0 {
		return fmt.Errorf("%w: playback.tick must be positive", ErrInvalidConfig)
	}
	if c.Notes.Volume < 0 || c.Notes.Volume > 127 {
		return fmt.Errorf("%w: notes.volume must be within [0,127]", ErrInvalidConfig)
	}
	if c.Notes.Duration <= 0 {
		return fmt.Errorf("%w: notes.duration must be positive", ErrInvalidConfig)
	}
	if c.Notes.Channel < 0 || c.Notes.Channel > 15 {
		return fmt.Errorf("%w: notes.channel must be within [0,15]", ErrInvalidConfig)
	}
	if c.Highlight.Manual <= 0 || c.Highlight.Playback <= 0 {
		return fmt.Errorf("%w: highlight durations must be positive", ErrInvalidConfig)
	}
	if c.MIDI.Device < 0 {
		return fmt.Errorf("%w: midi.device must not be negative", ErrInvalidConfig)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("%w: logging.level %q is not supported", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// GridLayout returns the grid geometry for the configured surface size.
func (c Config) GridLayout() surface.GridLayout {
	if c.Surface.Grid.Centered {
		return surface.CenteredGridLayout(c.Surface.Width, c.Surface.Height, c.Surface.Grid.CellSize)
	}
	return surface.DefaultGridLayout(c.Surface.Width)
}
