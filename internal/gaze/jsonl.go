package gaze

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/leandrodaf/gazeuke/internal/surface"
	"github.com/leandrodaf/gazeuke/sdk/contracts"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMalformedSample is returned for a line that is not a valid gaze record.
var ErrMalformedSample = errors.New("malformed gaze sample")

// record is one JSON line emitted by a tracker bridge, e.g.
//
//	{"x": 0.42, "y": 0.61, "timestamp": 1718000000.125, "normalized": true}
//
// Normalized coordinates are in 0..1 with the origin at the bottom left.
// A missing timestamp is replaced by the local clock.
type record struct {
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Timestamp  float64  `json:"timestamp"`
	Normalized bool     `json:"normalized"`
}

// Decoder turns JSON lines into surface gaze samples.
type Decoder struct {
	Mapper *surface.Mapper  // Required for normalized records.
	Now    func() time.Time // Clock for records without a timestamp.
}

// Decode parses a single line.
func (d *Decoder) Decode(line []byte) (contracts.GazeSample, error) {
	var rec record
	if err := jsonAPI.Unmarshal(line, &rec); err != nil {
		return contracts.GazeSample{}, fmt.Errorf("%w: %v", ErrMalformedSample, err)
	}
	if rec.X == nil || rec.Y == nil {
		return contracts.GazeSample{}, fmt.Errorf("%w: missing x or y", ErrMalformedSample)
	}

	p := contracts.Point{X: *rec.X, Y: *rec.Y}
	if rec.Normalized {
		if d.Mapper == nil {
			return contracts.GazeSample{}, fmt.Errorf("%w: normalized sample without surface mapper", ErrMalformedSample)
		}
		p = d.Mapper.ToSurface(p.X, p.Y)
	}

	ts := rec.Timestamp
	if ts == 0 {
		now := time.Now
		if d.Now != nil {
			now = d.Now
		}
		ts = float64(now().UnixNano()) / float64(time.Second)
	}
	return contracts.GazeSample{X: p.X, Y: p.Y, Timestamp: ts}, nil
}

// StreamSource reads JSON lines from a reader, typically stdin or a pipe.
type StreamSource struct {
	r    io.Reader
	dec  *Decoder
	log  contracts.Logger
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewStreamSource creates a source decoding r with dec.
func NewStreamSource(r io.Reader, dec *Decoder, log contracts.Logger) *StreamSource {
	if dec == nil {
		dec = &Decoder{}
	}
	return &StreamSource{r: r, dec: dec, log: log, done: make(chan struct{})}
}

// Start begins reading in the background.
func (s *StreamSource) Start(ctx context.Context, out chan<- contracts.GazeSample) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := pump(ctx, s.r, s.dec, out, s.done, s.log); err != nil {
			s.log.Warn("gaze stream ended", s.log.Field().Error("error", err))
		}
	}()
	return nil
}

// Close stops delivery and closes the reader when it is an io.Closer.
func (s *StreamSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if c, ok := s.r.(io.Closer); ok {
			err = c.Close()
		}
	})
	return err
}

// Wait blocks until the reader goroutine has returned.
func (s *StreamSource) Wait() {
	s.wg.Wait()
}

// CommandSource runs an external tracker bridge and reads its stdout as JSON lines.
// Each stderr line is logged as a warning.
type CommandSource struct {
	name   string
	args   []string
	dec    *Decoder
	log    contracts.Logger
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewCommandSource prepares a bridge process; it is started by Start.
func NewCommandSource(name string, args []string, dec *Decoder, log contracts.Logger) *CommandSource {
	if dec == nil {
		dec = &Decoder{}
	}
	return &CommandSource{name: name, args: args, dec: dec, log: log, done: make(chan struct{})}
}

// Start launches the process and returns once it is running.
func (s *CommandSource) Start(ctx context.Context, out chan<- contracts.GazeSample) error {
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, s.name, s.args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start gaze bridge %q: %w", s.name, err)
	}
	s.cancel = cancel
	s.log.Info("gaze bridge started", s.log.Field().String("command", s.name), s.log.Field().Int("pid", cmd.Process.Pid))

	stderrDone := make(chan struct{})
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		defer close(stderrDone)
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			s.log.Warn("gaze bridge", s.log.Field().String("stderr", sc.Text()))
		}
	}()
	go func() {
		defer s.wg.Done()
		if err := pump(ctx, stdout, s.dec, out, s.done, s.log); err != nil {
			s.log.Warn("gaze bridge output ended", s.log.Field().Error("error", err))
		}
		stopped := ctx.Err() != nil || s.closed()
		cancel()
		<-stderrDone
		if err := cmd.Wait(); err != nil && !stopped {
			s.log.Error("gaze bridge exited", s.log.Field().Error("error", err))
		}
	}()
	return nil
}

// Close terminates the process and waits for the readers.
func (s *CommandSource) Close() error {
	s.once.Do(func() {
		close(s.done)
		if s.cancel != nil {
			s.cancel()
		}
	})
	s.wg.Wait()
	return nil
}

func (s *CommandSource) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// pump decodes lines from r into out until r is exhausted, ctx is cancelled or done is closed.
// Malformed lines are logged and skipped.
func pump(ctx context.Context, r io.Reader, dec *Decoder, out chan<- contracts.GazeSample, done <-chan struct{}, log contracts.Logger) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		sample, err := dec.Decode(line)
		if err != nil {
			log.Debug("skipping gaze line", log.Field().String("line", string(line)), log.Field().Error("error", err))
			continue
		}
		select {
		case out <- sample:
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return nil
		}
	}
	return sc.Err()
}
