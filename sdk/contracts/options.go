package contracts

import "time"

// DwellConfig holds the dwell detector tolerances.
type DwellConfig struct {
	Duration time.Duration // Minimum fixation time.
	Range    float64       // Maximum distance from the centroid, in pixels.
}

// NoteConfig controls how selections sound.
type NoteConfig struct {
	Duration time.Duration // Time between note-on and the scheduled note-off.
	Channel  byte          // Zero-based MIDI channel.
}

// HighlightConfig controls how long selections stay highlighted.
type HighlightConfig struct {
	Manual   time.Duration // Manual clicks and dwell selections.
	Playback time.Duration // Selections replayed by the player.
}

// MIDIOutputConfig holds configuration for the OS note-player backends.
type MIDIOutputConfig struct {
	ClientName string // Name of the CoreMIDI client.
	Device     int    // Index of the output device to select.
}

// SessionOptions defines the configuration options for a trainer session.
type SessionOptions struct {
	Logger       Logger            // Logger for logging events and errors.
	LogLevel     LogLevel          // Level of logging to use.
	NotePlayer   NotePlayer        // Note output; opened from MIDIOutput when nil.
	GazeSource   GazeSource        // Optional gaze input.
	ClickSource  ClickSource       // Optional manual click input.
	Pointer      PointerController // Optional OS cursor control.
	Surface      Surface           // Interaction surface; required.
	Highlighter  Highlighter       // Optional highlight sink.
	Status       StatusReporter    // Optional status sink.
	Scheduler    Scheduler         // One-shot timers; defaults to the session loop scheduler.
	Clock        func() time.Time  // Time source; defaults to time.Now.
	Metrics      Metrics           // Optional counters.
	Dwell        DwellConfig       // Dwell detector tolerances.
	Smoothing    *float64          // Gaze smoothing factor in [0,1]; 0 disables smoothing.
	MouseControl bool              // Move and click the OS cursor from gaze.
	PlaybackTick time.Duration     // Playback tick interval.
	Notes        NoteConfig        // Note output settings.
	Volume       *uint8            // Channel volume (0-127), also the note-on velocity; nil means 100.
	Highlight    HighlightConfig   // Highlight durations.
	MIDIOutput   *MIDIOutputConfig // Configuration for the OS note-player backends.
}

// Option is a function that modifies SessionOptions.
type Option func(*SessionOptions)

// WithLogger sets the logger for the session.
func WithLogger(l Logger) Option {
	return func(opts *SessionOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the session.
func WithLogLevel(level LogLevel) Option {
	return func(opts *SessionOptions) {
		opts.LogLevel = level
	}
}

// WithNotePlayer sets the note output.
func WithNotePlayer(p NotePlayer) Option {
	return func(opts *SessionOptions) {
		opts.NotePlayer = p
	}
}

// WithGazeSource sets the gaze input.
func WithGazeSource(src GazeSource) Option {
	return func(opts *SessionOptions) {
		opts.GazeSource = src
	}
}

// WithClickSource sets the manual click input.
func WithClickSource(src ClickSource) Option {
	return func(opts *SessionOptions) {
		opts.ClickSource = src
	}
}

// WithPointer sets the OS cursor controller.
func WithPointer(p PointerController) Option {
	return func(opts *SessionOptions) {
		opts.Pointer = p
	}
}

// WithSurface sets the interaction surface.
func WithSurface(s Surface) Option {
	return func(opts *SessionOptions) {
		opts.Surface = s
	}
}

// WithHighlighter sets the highlight sink.
func WithHighlighter(h Highlighter) Option {
	return func(opts *SessionOptions) {
		opts.Highlighter = h
	}
}

// WithStatusReporter sets the status sink.
func WithStatusReporter(r StatusReporter) Option {
	return func(opts *SessionOptions) {
		opts.Status = r
	}
}

// WithScheduler replaces the session scheduler.
func WithScheduler(s Scheduler) Option {
	return func(opts *SessionOptions) {
		opts.Scheduler = s
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(opts *SessionOptions) {
		opts.Clock = now
	}
}

// WithMetrics sets the counters sink.
func WithMetrics(m Metrics) Option {
	return func(opts *SessionOptions) {
		opts.Metrics = m
	}
}

// WithDwell sets the dwell detector tolerances.
func WithDwell(duration time.Duration, rangePx float64) Option {
	return func(opts *SessionOptions) {
		opts.Dwell = DwellConfig{Duration: duration, Range: rangePx}
	}
}

// WithSmoothing sets the gaze smoothing factor.
func WithSmoothing(factor float64) Option {
	return func(opts *SessionOptions) {
		opts.Smoothing = &factor
	}
}

// WithMouseControl enables moving and clicking the OS cursor from gaze.
func WithMouseControl(enabled bool) Option {
	return func(opts *SessionOptions) {
		opts.MouseControl = enabled
	}
}

// WithPlaybackTick sets the playback tick interval.
func WithPlaybackTick(d time.Duration) Option {
	return func(opts *SessionOptions) {
		opts.PlaybackTick = d
	}
}

// WithNotes sets the note output settings.
func WithNotes(cfg NoteConfig) Option {
	return func(opts *SessionOptions) {
		opts.Notes = cfg
	}
}

// WithVolume sets the initial channel volume. Values above 127 are clamped.
func WithVolume(volume uint8) Option {
	return func(opts *SessionOptions) {
		opts.Volume = &volume
	}
}

// WithHighlight sets the highlight durations.
func WithHighlight(cfg HighlightConfig) Option {
	return func(opts *SessionOptions) {
		opts.Highlight = cfg
	}
}

// WithMIDIOutput sets the configuration for the OS note-player backends.
func WithMIDIOutput(config MIDIOutputConfig) Option {
	return func(opts *SessionOptions) {
		opts.MIDIOutput = &config
	}
}
