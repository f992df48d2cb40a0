package trainer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/leandrodaf/gazeuke/internal/dwell"
	"github.com/leandrodaf/gazeuke/internal/gaze"
	"github.com/leandrodaf/gazeuke/internal/sequence"
	"github.com/leandrodaf/gazeuke/internal/surface"
	"github.com/leandrodaf/gazeuke/sdk/contracts"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

var (
	// ErrNoSurface is returned by NewSession when no surface was configured.
	ErrNoSurface = errors.New("session requires a surface")
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session closed")
	// ErrRunning is returned by Run when the loop is already running.
	ErrRunning = errors.New("session loop already running")
	// ErrUnknownSelection is returned by Trigger for a selection with no note.
	ErrUnknownSelection = errors.New("selection has no note")
	// ErrInvalidSetting is returned by the runtime setters for out of range values.
	ErrInvalidSetting = errors.New("invalid setting")
)

const (
	volumeStep = 10
	maxVolume  = 127

	// A manual click this close in time and space to the last synthetic
	// dwell click is the OS echo of that click.
	echoWindow = 250 * time.Millisecond
	echoRadius = 5.0
)

// Origin tells where a selection came from.
type Origin int

const (
	OriginManual Origin = iota
	OriginDwell
	OriginPlayback
)

func (o Origin) String() string {
	switch o {
	case OriginDwell:
		return "dwell"
	case OriginPlayback:
		return "playback"
	default:
		return "manual"
	}
}

// Status is a point-in-time view of the session, safe to read from any goroutine.
type Status struct {
	Message       string
	Progress      int
	Recording     bool
	Playing       bool
	Events        int
	Volume        uint8
	GazeRate      int64
	InDwell       bool
	MouseControl  bool
	DwellDuration time.Duration
	DwellRange    float64
	Smoothing     float64
}

// Session wires gaze input, manual clicks, the dwell detector, the sequence
// recorder and player, and note output around a single event loop.
//
// Run, Exec, Snapshot and Close may be called from any goroutine. Every other
// method mutates loop state and must run on the loop (through Exec) or before
// Run is started.
type Session struct {
	opts        contracts.SessionOptions
	log         contracts.Logger
	surface     contracts.Surface
	notes       contracts.NotePlayer
	sched       contracts.Scheduler
	highlighter contracts.Highlighter
	metrics     contracts.Metrics
	now         func() time.Time

	detector *dwell.Detector
	smoother *gaze.Smoother
	rate     *gaze.RateMeter
	recorder *sequence.Recorder[contracts.Selection]
	player   *sequence.Player[contracts.Selection]

	volume       uint8
	mouseControl bool
	streaming    bool

	synthetic   contracts.Point
	syntheticAt time.Time
	hasEcho     bool

	gazeCh  chan contracts.GazeSample
	clickCh chan contracts.Point
	cmds    chan func(*Session)
	done    chan struct{}

	mu      sync.Mutex
	closed  bool
	running bool
	wg      sync.WaitGroup

	message  atomic.String
	progress atomic.Int32
	snapshot atomic.Value
}

// NewSession builds a session from the given options. When no note player is
// supplied the OS backend is opened, falling back to a logging player.
func NewSession(opts ...contracts.Option) (*Session, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	s := &Session{
		opts:         options,
		log:          options.Logger,
		surface:      options.Surface,
		highlighter:  options.Highlighter,
		metrics:      options.Metrics,
		now:          options.Clock,
		detector:     dwell.NewDetector(options.Dwell.Duration, options.Dwell.Range),
		smoother:     gaze.NewSmoother(*options.Smoothing),
		rate:         gaze.NewRateMeter(time.Second),
		recorder:     sequence.NewRecorder[contracts.Selection](options.Clock),
		player:       sequence.NewPlayer[contracts.Selection](options.Clock),
		volume:       *options.Volume,
		mouseControl: options.MouseControl,
		gazeCh:       make(chan contracts.GazeSample, 64),
		clickCh:      make(chan contracts.Point, 16),
		cmds:         make(chan func(*Session), 64),
		done:         make(chan struct{}),
	}

	s.notes = options.NotePlayer
	if s.notes == nil {
		s.notes = openNotePlayer(&options)
	}
	s.sched = options.Scheduler
	if s.sched == nil {
		s.sched = loopScheduler{s: s}
	}

	if err := s.notes.SetVolume(s.volume); err != nil {
		s.log.Warn("failed to set initial volume", s.log.Field().Error("error", err))
	}

	s.log.Info("session ready",
		s.log.Field().String("surface", s.surface.Name()),
		s.log.Field().Duration("dwell_duration", s.detector.Duration()),
		s.log.Field().Float64("dwell_range", s.detector.Range()),
		s.log.Field().Float64("smoothing", s.smoother.Factor()),
		s.log.Field().Bool("mouse_control", s.mouseControl),
	)
	s.publish()
	return s, nil
}

// Run drives the event loop until ctx is cancelled or the session is closed.
// Gaze and click sources are started on entry. Run may only be called once.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.running {
		s.mu.Unlock()
		return ErrRunning
	}
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if src := s.opts.GazeSource; src != nil {
		if err := src.Start(ctx, s.gazeCh); err != nil {
			s.log.Error("failed to start gaze source", s.log.Field().Error("error", err))
			s.setStatus("Gaze source unavailable")
		} else {
			s.setStatus("Waiting for gaze data...")
		}
	}
	if src := s.opts.ClickSource; src != nil {
		if err := src.Start(ctx, s.clickCh); err != nil {
			s.log.Error("failed to start click source", s.log.Field().Error("error", err))
		}
	}

	rateTicker := time.NewTicker(time.Second)
	defer rateTicker.Stop()

	var playTicker *time.Ticker
	defer func() {
		if playTicker != nil {
			playTicker.Stop()
		}
	}()

	for {
		var tickC <-chan time.Time
		switch playing := s.player.State() == sequence.Playing; {
		case playing && playTicker == nil:
			playTicker = time.NewTicker(s.opts.PlaybackTick)
			tickC = playTicker.C
		case playing:
			tickC = playTicker.C
		case playTicker != nil:
			playTicker.Stop()
			playTicker = nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case sample := <-s.gazeCh:
			s.HandleGaze(sample)
		case p := <-s.clickCh:
			s.HandlePoint(p)
		case fn := <-s.cmds:
			fn(s)
		case <-tickC:
			s.Tick()
		case <-rateTicker.C:
			s.reportRate()
		}
	}
}

// Exec queues fn to run on the event loop.
func (s *Session) Exec(fn func(*Session)) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.cmds <- fn:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// HandlePoint resolves a manual click and triggers the selection under it.
func (s *Session) HandlePoint(p contracts.Point) {
	if s.isEcho(p) {
		s.log.Debug("ignoring echo of dwell click", s.log.Field().Float64("x", p.X), s.log.Field().Float64("y", p.Y))
		return
	}
	sel, ok := s.surface.ResolveSelection(p)
	if !ok {
		return
	}
	if err := s.Trigger(sel, OriginManual); err != nil {
		s.log.Warn("manual selection ignored", s.log.Field().Error("error", err))
	}
}

// HandleGaze smooths a gaze sample, moves the cursor when mouse control is on
// and feeds the dwell detector. Entering a dwell clicks at its centroid.
// Non-finite or out of order samples are dropped before they reach the
// smoother or the cursor.
func (s *Session) HandleGaze(sample contracts.GazeSample) {
	s.rate.Mark()
	if !s.detector.Accepts(sample.X, sample.Y, sample.Timestamp) {
		s.metrics.GazeSample(false)
		s.log.Debug("dropping gaze sample",
			s.log.Field().Float64("x", sample.X),
			s.log.Field().Float64("y", sample.Y),
			s.log.Field().Float64("timestamp", sample.Timestamp))
		return
	}

	p := s.smoother.Apply(sample.Point())
	if s.mouseControl && s.opts.Pointer != nil {
		if err := s.opts.Pointer.MoveTo(p); err != nil {
			s.log.Debug("cursor move failed", s.log.Field().Error("error", err))
		}
	}

	res := s.detector.AddPoint(p.X, p.Y, sample.Timestamp)
	s.metrics.GazeSample(!res.Rejected)
	if res.Rejected {
		return
	}
	if !res.Changed {
		return
	}

	s.metrics.DwellTransition(res.InDwell)
	s.log.Debug("dwell transition",
		s.log.Field().Bool("in_dwell", res.InDwell),
		s.log.Field().Float64("x", res.Center.X),
		s.log.Field().Float64("y", res.Center.Y))
	if res.InDwell && res.HasCenter {
		s.dwellClick(res.Center)
	}
	s.publish()
}

func (s *Session) dwellClick(center contracts.Point) {
	if s.mouseControl && s.opts.Pointer != nil {
		if err := s.opts.Pointer.ClickAt(center); err != nil {
			s.log.Warn("dwell click failed", s.log.Field().Error("error", err))
		} else {
			s.synthetic, s.syntheticAt, s.hasEcho = center, s.now(), true
		}
	}

	sel, ok := s.surface.ResolveSelection(center)
	if !ok {
		s.log.Debug("dwell outside the surface", s.log.Field().Float64("x", center.X), s.log.Field().Float64("y", center.Y))
		return
	}
	if err := s.Trigger(sel, OriginDwell); err != nil {
		s.log.Warn("dwell selection ignored", s.log.Field().Error("error", err))
	}
}

func (s *Session) isEcho(p contracts.Point) bool {
	if !s.hasEcho {
		return false
	}
	if s.now().Sub(s.syntheticAt) > echoWindow {
		s.hasEcho = false
		return false
	}
	if math.Hypot(p.X-s.synthetic.X, p.Y-s.synthetic.Y) > echoRadius {
		return false
	}
	s.hasEcho = false
	return true
}

// Trigger plays the note of sel, highlights it and, for manual and dwell
// origins, records it when recording is active.
func (s *Session) Trigger(sel contracts.Selection, origin Origin) error {
	note, ok := s.surface.NoteFor(sel)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSelection, sel)
	}

	s.playNote(note)

	s.highlighter.AddHighlight(sel)
	hold := s.opts.Highlight.Manual
	if origin == OriginPlayback {
		hold = s.opts.Highlight.Playback
	}
	s.sched.AfterFunc(hold, func() { s.highlighter.RemoveHighlight(sel) })

	s.metrics.SelectionTriggered(origin.String())
	s.log.Info("selection triggered",
		s.log.Field().String("origin", origin.String()),
		s.log.Field().Int("row", sel.Row),
		s.log.Field().Int("col", sel.Col),
		s.log.Field().String("note", surface.NoteName(note)))

	if origin == OriginPlayback {
		return nil
	}
	s.setStatus(fmt.Sprintf("Clicked %s, Note: %s", sel, surface.NoteName(note)))
	if s.recorder.IsRecording() {
		ev, err := s.recorder.RecordEvent(sel)
		if err != nil {
			return err
		}
		s.log.Debug("selection recorded", s.log.Field().Duration("offset", ev.Offset))
		s.publish()
	}
	return nil
}

func (s *Session) playNote(note contracts.NoteID) {
	if err := s.notes.Play(note, s.volume); err != nil {
		s.log.Error("failed to play note", s.log.Field().Uint8("note", uint8(note)), s.log.Field().Error("error", err))
		s.setStatus("Note output failed")
		return
	}
	s.sched.AfterFunc(s.opts.Notes.Duration, func() {
		if err := s.notes.Stop(note); err != nil {
			s.log.Warn("failed to stop note", s.log.Field().Uint8("note", uint8(note)), s.log.Field().Error("error", err))
		}
	})
}

// StartRecording discards any previous sequence and starts a new one.
func (s *Session) StartRecording() {
	s.recorder.StartRecording()
	s.setStatus("Recording started.")
	s.publish()
}

// StopRecording ends the current recording and keeps its events.
func (s *Session) StopRecording() {
	s.recorder.StopRecording()
	s.log.Info("recording stopped", s.log.Field().Int("events", s.recorder.Len()))
	s.setStatus("Recording stopped.")
	s.publish()
}

// ToggleRecording starts or stops recording.
func (s *Session) ToggleRecording() {
	if s.recorder.IsRecording() {
		s.StopRecording()
		return
	}
	s.StartRecording()
}

// ClearRecording drops the recorded events without changing the recording state.
func (s *Session) ClearRecording() {
	s.recorder.Clear()
	s.setStatus("Recording cleared.")
	s.publish()
}

// StartPlayback replays the recorded sequence. An active recording is stopped first.
func (s *Session) StartPlayback() error {
	if s.player.State() == sequence.Playing {
		return sequence.ErrPlaying
	}
	if s.recorder.IsRecording() {
		s.StopRecording()
	}

	if err := s.player.Start(s.recorder.Events()); err != nil {
		if errors.Is(err, sequence.ErrEmptySequence) {
			s.metrics.PlaybackRun("empty")
			s.setStatus("No recorded sequence to play.")
		}
		return err
	}

	s.metrics.PlaybackRun("started")
	s.log.Info("playback started", s.log.Field().Int("events", s.player.Remaining()))
	s.setStatus("Playback started")
	s.setProgress(0)
	s.publish()
	return nil
}

// StopPlayback cancels a running playback and resets its progress.
func (s *Session) StopPlayback() {
	if s.player.State() != sequence.Playing {
		return
	}
	s.player.Stop()
	s.metrics.PlaybackRun("stopped")
	s.setStatus("Playback stopped")
	s.setProgress(0)
	s.publish()
}

// TogglePlayback starts or stops playback.
func (s *Session) TogglePlayback() error {
	if s.player.State() == sequence.Playing {
		s.StopPlayback()
		return nil
	}
	return s.StartPlayback()
}

// Tick dispatches every due playback event and updates progress.
func (s *Session) Tick() {
	if s.player.State() != sequence.Playing {
		return
	}

	prog := s.player.Tick(func(ev sequence.Event[contracts.Selection]) {
		if err := s.Trigger(ev.Payload, OriginPlayback); err != nil {
			s.log.Warn("playback selection ignored", s.log.Field().Error("error", err))
		}
		s.setStatus(fmt.Sprintf("Playback: %s at %dms", ev.Payload, ev.Offset.Milliseconds()))
	})
	if prog.Percent != int(s.progress.Load()) {
		s.setProgress(prog.Percent)
	}
	if prog.Done {
		s.metrics.PlaybackRun("completed")
		s.log.Info("playback finished")
		s.setStatus("Playback stopped")
		s.publish()
	}
}

// VolumeUp raises the volume by one step.
func (s *Session) VolumeUp() {
	s.applyVolume(int(s.volume)+volumeStep, "Volume increased to %d")
}

// VolumeDown lowers the volume by one step.
func (s *Session) VolumeDown() {
	s.applyVolume(int(s.volume)-volumeStep, "Volume decreased to %d")
}

// SetVolume sets the volume, clamped to 0..127.
func (s *Session) SetVolume(v int) {
	s.applyVolume(v, "Volume set to %d")
}

func (s *Session) applyVolume(v int, format string) {
	if v < 0 {
		v = 0
	}
	if v > maxVolume {
		v = maxVolume
	}
	s.volume = uint8(v)
	if err := s.notes.SetVolume(s.volume); err != nil {
		s.log.Warn("failed to set volume", s.log.Field().Error("error", err))
	}
	s.setStatus(fmt.Sprintf(format, s.volume))
	s.publish()
}

// SetDwellDuration changes the minimum fixation time.
func (s *Session) SetDwellDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: dwell duration %s", ErrInvalidSetting, d)
	}
	s.detector.SetDuration(d)
	s.publish()
	return nil
}

// SetDwellRange changes the fixation radius in pixels.
func (s *Session) SetDwellRange(r float64) error {
	if !(r > 0) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: dwell range %v", ErrInvalidSetting, r)
	}
	s.detector.SetRange(r)
	s.publish()
	return nil
}

// SetSmoothing changes the gaze smoothing factor.
func (s *Session) SetSmoothing(f float64) error {
	if !(f >= 0 && f <= 1) {
		return fmt.Errorf("%w: smoothing %v", ErrInvalidSetting, f)
	}
	s.smoother.SetFactor(f)
	s.publish()
	return nil
}

// SetMouseControl turns cursor following and dwell clicks on or off.
func (s *Session) SetMouseControl(enabled bool) {
	s.mouseControl = enabled
	s.hasEcho = false
	s.publish()
}

// Snapshot returns the latest published status.
func (s *Session) Snapshot() Status {
	st, _ := s.snapshot.Load().(Status)
	st.Message = s.message.Load()
	st.Progress = int(s.progress.Load())
	return st
}

// Close stops the loop and releases the note player and input sources.
// It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	if s.player.State() == sequence.Playing {
		s.player.Stop()
	}

	var err error
	if s.opts.GazeSource != nil {
		err = multierr.Append(err, s.opts.GazeSource.Close())
	}
	if s.opts.ClickSource != nil {
		err = multierr.Append(err, s.opts.ClickSource.Close())
	}
	err = multierr.Append(err, s.notes.Close())
	if err != nil {
		s.log.Error("session closed with errors", s.log.Field().Error("error", err))
		return err
	}
	s.log.Info("session closed")
	return nil
}

func (s *Session) reportRate() {
	streaming := s.rate.Rate() > 0
	if s.opts.GazeSource != nil && streaming != s.streaming {
		if streaming {
			s.setStatus("Streaming gaze data")
		} else {
			s.setStatus("Waiting for gaze data...")
		}
	}
	s.streaming = streaming
	s.publish()
}

func (s *Session) setStatus(msg string) {
	s.message.Store(msg)
	if s.opts.Status != nil {
		s.opts.Status.SetStatus(msg)
	}
	s.log.Debug("status", s.log.Field().String("message", msg))
}

func (s *Session) setProgress(percent int) {
	s.progress.Store(int32(percent))
	if s.opts.Status != nil {
		s.opts.Status.SetProgress(percent)
	}
}

func (s *Session) publish() {
	s.snapshot.Store(Status{
		Recording:     s.recorder.IsRecording(),
		Playing:       s.player.State() == sequence.Playing,
		Events:        s.recorder.Len(),
		Volume:        s.volume,
		GazeRate:      s.rate.Rate(),
		InDwell:       s.detector.InDwell(),
		MouseControl:  s.mouseControl,
		DwellDuration: s.detector.Duration(),
		DwellRange:    s.detector.Range(),
		Smoothing:     s.smoother.Factor(),
	})
}

// loopScheduler runs callbacks on the session loop so they never race with it.
type loopScheduler struct {
	s *Session
}

func (l loopScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, func() {
		select {
		case l.s.cmds <- func(*Session) { fn() }:
		case <-l.s.done:
		}
	})
	return func() { t.Stop() }
}
