package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leandrodaf/gazeuke/internal/config"
	"github.com/leandrodaf/gazeuke/internal/gaze"
	"github.com/leandrodaf/gazeuke/internal/logger"
	"github.com/leandrodaf/gazeuke/internal/metrics"
	"github.com/leandrodaf/gazeuke/internal/pointer"
	"github.com/leandrodaf/gazeuke/internal/surface"
	"github.com/leandrodaf/gazeuke/sdk/contracts"
	"github.com/leandrodaf/gazeuke/sdk/trainer"
	"go.uber.org/multierr"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration (default ./"+config.DefaultFileName+")")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "gazeuke:", err)
		os.Exit(1)
	}
}

func run(configPath string) (err error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.NewZapLogger()
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	if cfg.Logging.File != "" {
		if err := log.SetDestination(contracts.FileLog, cfg.Logging.File); err != nil {
			return err
		}
	}
	defer func() { _ = log.Sync() }()
	log.Info("configuration loaded", log.Field().String("source", cfg.Source))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	con := newConsole(os.Stdout)
	surf := buildSurface(cfg)
	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithLogLevel(level),
		contracts.WithSurface(surf),
		contracts.WithStatusReporter(con),
		contracts.WithPointer(&pointer.Robot{}),
		contracts.WithDwell(cfg.Dwell.Duration, cfg.Dwell.Range),
		contracts.WithSmoothing(cfg.Gaze.Smoothing),
		contracts.WithMouseControl(cfg.Pointer.MouseControl),
		contracts.WithPlaybackTick(cfg.Playback.Tick),
		contracts.WithNotes(contracts.NoteConfig{
			Duration: cfg.Notes.Duration,
			Channel:  byte(cfg.Notes.Channel),
		}),
		contracts.WithVolume(uint8(cfg.Notes.Volume)),
		contracts.WithHighlight(contracts.HighlightConfig{Manual: cfg.Highlight.Manual, Playback: cfg.Highlight.Playback}),
		contracts.WithMIDIOutput(contracts.MIDIOutputConfig{ClientName: cfg.MIDI.ClientName, Device: cfg.MIDI.Device}),
	}
	if cfg.Pointer.ClickHook {
		opts = append(opts, contracts.WithClickSource(pointer.NewClickHook(contracts.Point{})))
	}

	src, stdinTaken := buildGazeSource(cfg, log)
	if src != nil {
		opts = append(opts, contracts.WithGazeSource(src))
	}

	if cfg.Metrics.Addr != "" {
		rec := metrics.New()
		opts = append(opts, contracts.WithMetrics(rec))
		srv := serveMetrics(cfg.Metrics.Addr, rec, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			err = multierr.Append(err, srv.Shutdown(shutdownCtx))
		}()
	}

	session, err := trainer.NewSession(opts...)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, session.Close()) }()

	if stdinTaken {
		log.Info("stdin carries gaze data, console commands are disabled")
	} else {
		con.printHelp()
		go func() {
			if err := con.Run(os.Stdin, session); err != nil {
				log.Warn("console stopped", log.Field().Error("error", err))
			}
			stop()
		}()
	}

	return session.Run(ctx)
}

func buildSurface(cfg config.Config) contracts.Surface {
	if cfg.Surface.Kind == "fretboard" {
		return surface.NewFretboard(cfg.Surface.Fretboard, surface.UkuleleTuning)
	}
	return surface.NewGrid(cfg.GridLayout(), surface.UkuleleTuning)
}

// buildGazeSource returns the configured gaze input, if any, and whether it reads stdin.
func buildGazeSource(cfg config.Config, log contracts.Logger) (contracts.GazeSource, bool) {
	dec := &gaze.Decoder{
		Mapper: &surface.Mapper{Width: cfg.Surface.Width, Height: cfg.Surface.Height, TagSize: cfg.Surface.TagSize},
	}
	switch cfg.Gaze.Source {
	case "mouse":
		return pointer.NewCursorGazeSource(contracts.Point{}, cfg.Gaze.PollHz), false
	case "jsonl":
		if len(cfg.Gaze.Command) > 0 {
			return gaze.NewCommandSource(cfg.Gaze.Command[0], cfg.Gaze.Command[1:], dec, log), false
		}
		return gaze.NewStreamSource(io.NopCloser(os.Stdin), dec, log), true
	default:
		return nil, false
	}
}

func serveMetrics(addr string, rec *metrics.Recorder, log contracts.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("serving metrics", log.Field().String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", log.Field().Error("error", err))
		}
	}()
	return srv
}
