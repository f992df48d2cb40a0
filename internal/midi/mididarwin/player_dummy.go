//go:build !darwin
// +build !darwin

package mididarwin

import (
	"fmt"

	"github.com/leandrodaf/gazeuke/sdk/contracts"
)

type DummyNotePlayer struct {
	logger contracts.Logger
}

func NewNotePlayer(options *contracts.SessionOptions) (contracts.NotePlayer, error) {
	options.Logger.Info("Using dummy note player for non-macOS system")
	return &DummyNotePlayer{
		logger: options.Logger,
	}, nil
}

func (p *DummyNotePlayer) ListDevices() ([]contracts.DeviceInfo, error) {
	p.logger.Warn("ListDevices called on dummy note player")
	return nil, fmt.Errorf("MIDI functionality is not available on this platform")
}

func (p *DummyNotePlayer) SelectDevice(deviceID int) error {
	p.logger.Warn("SelectDevice called on dummy note player")
	return fmt.Errorf("MIDI functionality is not available on this platform")
}

func (p *DummyNotePlayer) Play(note contracts.NoteID, velocity uint8) error {
	return fmt.Errorf("MIDI functionality is not available on this platform")
}

func (p *DummyNotePlayer) Stop(note contracts.NoteID) error {
	return fmt.Errorf("MIDI functionality is not available on this platform")
}

func (p *DummyNotePlayer) SetVolume(volume uint8) error {
	return fmt.Errorf("MIDI functionality is not available on this platform")
}

func (p *DummyNotePlayer) Close() error {
	return nil
}
