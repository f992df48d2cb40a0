//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/gazeuke/sdk/contracts"
	"golang.org/x/sys/windows"
)

// HMIDIOUT is a winmm MIDI output handle.
type HMIDIOUT windows.Handle

const CALLBACK_NULL = 0x00000000 // No callback, output only

var (
	ErrNoMIDIDevices    = errors.New("no MIDI devices found")
	ErrNoDeviceSelected = errors.New("no MIDI device selected")
	ErrPlayerClosed     = errors.New("note player closed")
)

// Struct representing MIDI output device capabilities (MIDIOUTCAPSW)
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

// Load the winmm.dll library and required functions
var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutReset      = winmm.NewProc("midiOutReset")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
)

// NotePlayer sends notes through a winmm MIDI output device
type NotePlayer struct {
	logger  contracts.Logger
	handle  HMIDIOUT
	open    bool
	closed  bool
	channel byte
	mu      sync.Mutex
}

// NewNotePlayer creates a note player for Windows
func NewNotePlayer(options *contracts.SessionOptions) (contracts.NotePlayer, error) {
	options.Logger.Info("MIDI output created for Windows")

	return &NotePlayer{
		logger:  options.Logger,
		channel: options.Notes.Channel,
	}, nil
}

// ListDevices lists the available MIDI output devices
func (p *NotePlayer) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		p.logger.Warn("No MIDI output devices found")
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		ok := r1 == 0
		if !ok {
			p.logger.Warn("failed to get MIDI device capabilities",
				p.logger.Field().Int("index", int(i)),
				p.logger.Field().Uint64("mmresult", uint64(r1)))
		}
		devices[i] = describeDevice(i, windows.UTF16ToString(caps.szPname[:]), caps.wMid, caps.wPid, ok)
	}
	return devices, nil
}

// SelectDevice opens the output device, closing any previous one
func (p *NotePlayer) SelectDevice(deviceID int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}
	if p.open {
		if err := p.closeDevice(); err != nil {
			return fmt.Errorf("failed to close previous MIDI device: %w", err)
		}
	}

	r1, _, err := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&p.handle)),
		uintptr(deviceID),
		0,
		0,
		CALLBACK_NULL,
	)
	if r1 != 0 {
		p.logger.Error(fmt.Sprintf("Failed to open MIDI device %d: %v", deviceID, err))
		return fmt.Errorf("failed to open MIDI device %d: %v", deviceID, err)
	}

	p.open = true
	p.logger.Info(fmt.Sprintf("MIDI output device %d connected", deviceID))
	return nil
}

func (p *NotePlayer) Play(note contracts.NoteID, velocity uint8) error {
	return p.send(contracts.NoteOnMessage(p.channel, note, velocity))
}

func (p *NotePlayer) Stop(note contracts.NoteID) error {
	return p.send(contracts.NoteOffMessage(p.channel, note))
}

func (p *NotePlayer) SetVolume(volume uint8) error {
	return p.send(contracts.VolumeMessage(p.channel, volume))
}

// Close resets and closes the device. Safe to call more than once.
func (p *NotePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	if !p.open {
		return nil
	}
	return p.closeDevice()
}

func (p *NotePlayer) closeDevice() error {
	procMidiOutReset.Call(uintptr(p.handle))
	r1, _, err := procMidiOutClose.Call(uintptr(p.handle))
	p.open = false
	if r1 != 0 {
		return fmt.Errorf("failed to close MIDI device: %v", err)
	}
	p.logger.Info("MIDI output device closed")
	return nil
}

func (p *NotePlayer) send(msg contracts.MIDI) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}
	if !p.open {
		return ErrNoDeviceSelected
	}
	r1, _, err := procMidiOutShortMsg.Call(uintptr(p.handle), uintptr(msg.Packed()))
	if r1 != 0 {
		return fmt.Errorf("midiOutShortMsg failed: %v", err)
	}
	return nil
}
