package trainer

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/gazeuke/internal/midi/mididarwin"
	"github.com/leandrodaf/gazeuke/internal/midi/midilog"
	"github.com/leandrodaf/gazeuke/internal/midi/midiwindows"
	"github.com/leandrodaf/gazeuke/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system has no MIDI output backend.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// playerInitializers maps OS names to corresponding note player initializers.
var playerInitializers = map[string]func(*contracts.SessionOptions) (contracts.NotePlayer, error){
	"darwin":  mididarwin.NewNotePlayer,  // macOS (Darwin) CoreMIDI output.
	"windows": midiwindows.NewNotePlayer, // Windows winmm output.
}

// NewNotePlayer initializes a note player based on the current operating system.
// It supports macOS (Darwin) and Windows, returning ErrUnsupportedOS if the OS is unsupported.
func NewNotePlayer(opts *contracts.SessionOptions) (contracts.NotePlayer, error) {
	if initializer, exists := playerInitializers[runtime.GOOS]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}

// openNotePlayer opens the OS backend and selects the configured device.
// When no backend or device is usable it falls back to a logging player.
func openNotePlayer(opts *contracts.SessionOptions) contracts.NotePlayer {
	log := opts.Logger
	fallback := func(reason error) contracts.NotePlayer {
		log.Warn("no MIDI output available, notes will only be logged", log.Field().Error("reason", reason))
		return midilog.New(log, opts.Notes.Channel)
	}

	player, err := NewNotePlayer(opts)
	if err != nil {
		return fallback(err)
	}

	devices, err := player.ListDevices()
	if err == nil && len(devices) == 0 {
		err = errors.New("no MIDI devices found")
	}
	if err != nil {
		_ = player.Close()
		return fallback(err)
	}
	for i, d := range devices {
		log.Info("MIDI output device",
			log.Field().Int("index", i),
			log.Field().String("name", d.Name),
			log.Field().String("manufacturer", d.Manufacturer))
	}

	if err := player.SelectDevice(opts.MIDIOutput.Device); err != nil {
		_ = player.Close()
		return fallback(err)
	}
	return player
}
