// Package midilog provides a note player that only logs what it would play.
// It stands in for a real device when none is available and keeps a journal
// of the messages it received.
package midilog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/gazeuke/internal/surface"
	"github.com/leandrodaf/gazeuke/sdk/contracts"
)

var (
	ErrClosed        = errors.New("note player closed")
	ErrInvalidDevice = errors.New("invalid MIDI device")
)

// Player implements contracts.NotePlayer on top of a logger.
type Player struct {
	logger  contracts.Logger
	channel byte
	mu      sync.Mutex
	journal []contracts.MIDI
	closed  bool
}

// New creates a logging player for the given zero-based channel.
func New(logger contracts.Logger, channel byte) *Player {
	return &Player{logger: logger, channel: channel}
}

func (p *Player) ListDevices() ([]contracts.DeviceInfo, error) {
	return []contracts.DeviceInfo{{Name: "log", EntityName: "log", Manufacturer: "gazeuke"}}, nil
}

func (p *Player) SelectDevice(deviceID int) error {
	if deviceID != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDevice, deviceID)
	}
	return nil
}

func (p *Player) Play(note contracts.NoteID, velocity uint8) error {
	p.logger.Debug("note on",
		p.logger.Field().String("note", surface.NoteName(note)),
		p.logger.Field().Uint8("velocity", velocity))
	return p.append(contracts.NoteOnMessage(p.channel, note, velocity))
}

func (p *Player) Stop(note contracts.NoteID) error {
	p.logger.Debug("note off", p.logger.Field().String("note", surface.NoteName(note)))
	return p.append(contracts.NoteOffMessage(p.channel, note))
}

func (p *Player) SetVolume(volume uint8) error {
	p.logger.Debug("volume", p.logger.Field().Uint8("volume", volume))
	return p.append(contracts.VolumeMessage(p.channel, volume))
}

func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Journal returns a copy of every message received so far.
func (p *Player) Journal() []contracts.MIDI {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]contracts.MIDI, len(p.journal))
	copy(out, p.journal)
	return out
}

func (p *Player) append(msg contracts.MIDI) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.journal = append(p.journal, msg)
	return nil
}
