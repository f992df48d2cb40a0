package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/leandrodaf/gazeuke/internal/sequence"
	"github.com/leandrodaf/gazeuke/sdk/contracts"
	"github.com/leandrodaf/gazeuke/sdk/trainer"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

const helpText = `commands:
  r              toggle recording
  p              toggle playback
  c              clear the recording
  + / -          volume up / down
  v <0-127>      set volume
  m              toggle mouse control
  d <seconds>    dwell duration
  g <pixels>     dwell range
  s <0-1>        gaze smoothing
  t <row> <col>  trigger a selection
  status         show the session state
  q              quit
`

// executor is the part of the session the console drives.
type executor interface {
	Exec(fn func(*trainer.Session)) error
	Snapshot() trainer.Status
}

// command is one parsed console line.
type command struct {
	quit   bool
	status bool
	help   bool
	apply  func(*trainer.Session) error
}

// console reads commands and prints status messages. It implements contracts.StatusReporter.
type console struct {
	mu           sync.Mutex
	out          io.Writer
	lastProgress int
}

var _ contracts.StatusReporter = (*console)(nil)

func newConsole(out io.Writer) *console {
	return &console{out: out, lastProgress: -1}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) SetStatus(msg string) {
	c.printf("%s\n", msg)
}

// SetProgress prints progress in steps of ten percent.
func (c *console) SetProgress(percent int) {
	c.mu.Lock()
	step := percent / 10
	if percent != 0 && step == c.lastProgress {
		c.mu.Unlock()
		return
	}
	c.lastProgress = step
	c.mu.Unlock()
	c.printf("progress %d%%\n", percent)
}

func (c *console) printHelp() {
	c.printf("%s", helpText)
}

func (c *console) printStatus(st trainer.Status) {
	c.printf("recording=%t playing=%t events=%d progress=%d%% volume=%d mouse=%t dwell=%s/%gpx smoothing=%g gaze=%d/s\n",
		st.Recording, st.Playing, st.Events, st.Progress, st.Volume, st.MouseControl,
		st.DwellDuration, st.DwellRange, st.Smoothing, st.GazeRate)
}

// Run reads commands from in until EOF, a quit command or a closed session.
func (c *console) Run(in io.Reader, s executor) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		cmd, err := parseCommand(sc.Text())
		if err != nil {
			c.printf("%v\n", err)
			continue
		}
		switch {
		case cmd.quit:
			return nil
		case cmd.help:
			c.printHelp()
			continue
		case cmd.status:
			c.printStatus(s.Snapshot())
			continue
		case cmd.apply == nil:
			continue
		}

		apply := cmd.apply
		if err := s.Exec(func(s *trainer.Session) {
			if err := apply(s); err != nil {
				c.printf("error: %v\n", err)
			}
		}); err != nil {
			return err
		}
	}
	return sc.Err()
}

func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "q", "quit", "exit":
		return command{quit: true}, nil
	case "h", "help", "?":
		return command{help: true}, nil
	case "status":
		return command{status: true}, nil
	case "r":
		return do((*trainer.Session).ToggleRecording), nil
	case "p":
		return action(func(s *trainer.Session) error { return ignoreEmpty(s.TogglePlayback()) }), nil
	case "c":
		return do((*trainer.Session).ClearRecording), nil
	case "+":
		return do((*trainer.Session).VolumeUp), nil
	case "-":
		return do((*trainer.Session).VolumeDown), nil
	case "m":
		return do(func(s *trainer.Session) {
			s.SetMouseControl(!s.Snapshot().MouseControl)
		}), nil
	case "v":
		v, err := intArg(name, args, 0)
		if err != nil {
			return command{}, err
		}
		return do(func(s *trainer.Session) { s.SetVolume(v) }), nil
	case "d":
		f, err := floatArg(name, args)
		if err != nil {
			return command{}, err
		}
		d := time.Duration(math.Round(f * float64(time.Second)))
		return action(func(s *trainer.Session) error { return s.SetDwellDuration(d) }), nil
	case "g":
		f, err := floatArg(name, args)
		if err != nil {
			return command{}, err
		}
		return action(func(s *trainer.Session) error { return s.SetDwellRange(f) }), nil
	case "s":
		f, err := floatArg(name, args)
		if err != nil {
			return command{}, err
		}
		return action(func(s *trainer.Session) error { return s.SetSmoothing(f) }), nil
	case "t":
		if len(args) != 2 {
			return command{}, fmt.Errorf("%w: t <row> <col>", ErrUsage)
		}
		row, err := intArg(name, args, 0)
		if err != nil {
			return command{}, err
		}
		col, err := intArg(name, args, 1)
		if err != nil {
			return command{}, err
		}
		sel := contracts.Selection{Row: row, Col: col}
		return action(func(s *trainer.Session) error { return s.Trigger(sel, trainer.OriginManual) }), nil
	default:
		return command{}, fmt.Errorf("%w: %q (type help)", ErrUnknownCommand, fields[0])
	}
}

func action(fn func(*trainer.Session) error) command {
	return command{apply: fn}
}

func do(fn func(*trainer.Session)) command {
	return action(func(s *trainer.Session) error {
		fn(s)
		return nil
	})
}

// ignoreEmpty drops the empty-sequence error, which the session already reports as a status.
func ignoreEmpty(err error) error {
	if errors.Is(err, sequence.ErrEmptySequence) {
		return nil
	}
	return err
}

func intArg(name string, args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("%w: %s needs a number", ErrUsage, name)
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUsage, name, err)
	}
	return v, nil
}

func floatArg(name string, args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: %s needs one number", ErrUsage, name)
	}
	f, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUsage, name, err)
	}
	return f, nil
}
