package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)
	require.NoError(t, os.Chdir(dir))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "<defaults>", cfg.Source)
	assert.Equal(t, 750*time.Millisecond, cfg.Dwell.Duration)
	assert.Equal(t, 75.0, cfg.Dwell.Range)
	assert.Equal(t, 0.8, cfg.Gaze.Smoothing)
	assert.Equal(t, 10*time.Millisecond, cfg.Playback.Tick)
	assert.Equal(t, 100, cfg.Notes.Volume)
	assert.Equal(t, 500*time.Millisecond, cfg.Notes.Duration)
	assert.Equal(t, 5*time.Second, cfg.Highlight.Playback)
	assert.NoError(t, cfg.Validate())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gazeuke.yaml")
	content := strings.Join([]string{
		"dwell:",
		"  duration: 1.2s",
		"  range: 40",
		"gaze:",
		"  source: JSONL",
		"  command: [python3, bridge.py]",
		"  smoothing: 0.5",
		"surface:",
		"  kind: fretboard",
		"  fretboard:",
		"    frets: 10",
		"notes:",
		"  volume: 90",
		"logging:",
		"  level: DEBUG",
		"metrics:",
		"  addr: 127.0.0.1:9109",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, 1200*time.Millisecond, cfg.Dwell.Duration)
	assert.Equal(t, 40.0, cfg.Dwell.Range)
	assert.Equal(t, "jsonl", cfg.Gaze.Source)
	assert.Equal(t, []string{"python3", "bridge.py"}, cfg.Gaze.Command)
	assert.Equal(t, 0.5, cfg.Gaze.Smoothing)
	assert.Equal(t, "fretboard", cfg.Surface.Kind)
	assert.Equal(t, 10, cfg.Surface.Fretboard.Frets)
	assert.Len(t, cfg.Surface.Fretboard.Strings, 4, "strings kept from defaults")
	assert.Equal(t, 90, cfg.Notes.Volume)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:9109", cfg.Metrics.Addr)
	assert.Equal(t, 30, cfg.Gaze.PollHz, "untouched keys keep defaults")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gazeuke.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dwell:\n  radius: 10\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gazeuke.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "grid", cfg.Surface.Kind)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"dwell duration": func(c *Config) { c.Dwell.Duration = 0 },
		"dwell range":    func(c *Config) { c.Dwell.Range = -1 },
		"gaze source":    func(c *Config) { c.Gaze.Source = "camera" },
		"smoothing":      func(c *Config) { c.Gaze.Smoothing = 1.5 },
		"poll":           func(c *Config) { c.Gaze.PollHz = 0 },
		"surface kind":   func(c *Config) { c.Surface.Kind = "piano" },
		"surface size":   func(c *Config) { c.Surface.Width = 0 },
		"frets":          func(c *Config) { c.Surface.Kind = "fretboard"; c.Surface.Fretboard.Frets = 0 },
		"centered cell":  func(c *Config) { c.Surface.Grid.Centered = true; c.Surface.Grid.CellSize = 0 },
		"tick":           func(c *Config) { c.Playback.Tick = 0 },
		"volume":         func(c *Config) { c.Notes.Volume = 128 },
		"note duration":  func(c *Config) { c.Notes.Duration = 0 },
		"channel":        func(c *Config) { c.Notes.Channel = 16 },
		"highlight":      func(c *Config) { c.Highlight.Manual = 0 },
		"device":         func(c *Config) { c.MIDI.Device = -1 },
		"logging level":  func(c *Config) { c.Logging.Level = "verbose" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, name)
	}
}

func TestGridLayout(t *testing.T) {
	cfg := Default()
	l := cfg.GridLayout()
	assert.Equal(t, 240.0, l.CellSize)
	assert.Equal(t, 20.0, l.OffsetY)

	cfg.Surface.Grid.Centered = true
	l = cfg.GridLayout()
	assert.Equal(t, 175.0, l.CellSize)
	assert.Equal(t, 260.0, l.OffsetX)
}
