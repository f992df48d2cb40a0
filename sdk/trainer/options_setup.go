package trainer

import (
	"time"

	"github.com/leandrodaf/gazeuke/internal/dwell"
	"github.com/leandrodaf/gazeuke/internal/gaze"
	"github.com/leandrodaf/gazeuke/internal/logger"
	"github.com/leandrodaf/gazeuke/internal/surface"
	"github.com/leandrodaf/gazeuke/sdk/contracts"
)

// Defaults applied when an option is left unset.
const (
	DefaultPlaybackTick      = 10 * time.Millisecond
	DefaultNoteDuration      = 500 * time.Millisecond
	DefaultManualHighlight   = time.Second
	DefaultPlaybackHighlight = 5 * time.Second
	DefaultClientName        = "gazeuke"
)

// DefaultVolume is the initial channel volume and note-on velocity.
const DefaultVolume uint8 = 100

// applyDefaultOptions sets default values for SessionOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify SessionOptions.
//
// Returns:
//   - contracts.SessionOptions: A structure containing the finalized session options with defaults applied.
//   - error: An error if there was an issue applying the options.
func applyDefaultOptions(opts ...contracts.Option) (contracts.SessionOptions, error) {
	options := &contracts.SessionOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Set defaults if options are not provided
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger() // Default to a standard logger
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel // Default log level to InfoLevel
	}
	if options.Surface == nil {
		return *options, ErrNoSurface
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.Highlighter == nil {
		options.Highlighter = &surface.Highlights{}
	}
	if options.Metrics == nil {
		options.Metrics = nopMetrics{}
	}

	if options.Dwell.Duration <= 0 {
		options.Dwell.Duration = dwell.DefaultDuration
	}
	if options.Dwell.Range <= 0 {
		options.Dwell.Range = dwell.DefaultRange
	}
	if options.Smoothing == nil {
		s := gaze.DefaultSmoothing
		options.Smoothing = &s
	}
	if options.PlaybackTick <= 0 {
		options.PlaybackTick = DefaultPlaybackTick
	}

	if options.Notes.Duration <= 0 {
		options.Notes.Duration = DefaultNoteDuration
	}
	if options.Volume == nil {
		v := DefaultVolume
		options.Volume = &v
	}
	if *options.Volume > 127 {
		v := uint8(127)
		options.Volume = &v
	}
	if options.Highlight.Manual <= 0 {
		options.Highlight.Manual = DefaultManualHighlight
	}
	if options.Highlight.Playback <= 0 {
		options.Highlight.Playback = DefaultPlaybackHighlight
	}

	if options.MIDIOutput == nil {
		options.MIDIOutput = &contracts.MIDIOutputConfig{ClientName: DefaultClientName} // Default output config
	}

	options.Logger.SetLevel(options.LogLevel) // Set the logger to the specified log level
	return *options, nil
}

type nopMetrics struct{}

func (nopMetrics) SelectionTriggered(string) {}
func (nopMetrics) DwellTransition(bool)      {}
func (nopMetrics) GazeSample(bool)           {}
func (nopMetrics) PlaybackRun(string)        {}
