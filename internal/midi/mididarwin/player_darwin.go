//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/gazeuke/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for MIDI output issues.
var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrCreateOutputPort  = errors.New("error creating output port")
	ErrNoDeviceSelected  = errors.New("no MIDI device selected")
	ErrPlayerClosed      = errors.New("note player closed")
)

// allNotesOff is the channel mode controller that silences every sounding note.
const allNotesOff = 123

// NotePlayer sends notes to a CoreMIDI destination on macOS.
type NotePlayer struct {
	logger    contracts.Logger
	client    coremidi.Client       // CoreMIDI client instance.
	port      coremidi.OutputPort   // Output port notes are sent through.
	dest      *coremidi.Destination // Selected destination, nil until SelectDevice.
	channel   byte                  // Zero-based MIDI channel.
	mu        sync.Mutex            // Guards dest and closed.
	closed    bool
	closeOnce sync.Once
}

// NewNotePlayer creates the CoreMIDI client and its output port.
func NewNotePlayer(options *contracts.SessionOptions) (contracts.NotePlayer, error) {
	client, err := coremidi.NewClient(options.MIDIOutput.ClientName)
	if err != nil {
		return nil, err
	}
	port, err := coremidi.NewOutputPort(client, "Output Port")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateOutputPort, err)
	}
	options.Logger.Info("MIDI output client successfully created",
		options.Logger.Field().String("client", options.MIDIOutput.ClientName))

	return &NotePlayer{
		logger:  options.Logger,
		client:  client,
		port:    port,
		channel: options.Notes.Channel,
	}, nil
}

// ListDevices retrieves the available MIDI destinations.
func (p *NotePlayer) ListDevices() ([]contracts.DeviceInfo, error) {
	dests, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI destinations: %w", err)
	}
	if len(dests) == 0 {
		p.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(dests))
	for i, dest := range dests {
		entity := dest.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         dest.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice routes subsequent notes to the destination at deviceID.
func (p *NotePlayer) SelectDevice(deviceID int) error {
	dests, err := coremidi.AllDestinations()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI destinations: %w", err)
	}
	if deviceID < 0 || deviceID >= len(dests) {
		p.logger.Error(ErrInvalidMIDIDevice.Error(), p.logger.Field().Int("deviceID", deviceID))
		return ErrInvalidMIDIDevice
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	dest := dests[deviceID]
	p.dest = &dest
	p.logger.Info("MIDI device selected",
		p.logger.Field().Int("deviceID", deviceID),
		p.logger.Field().String("deviceName", dest.Name()))
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

// Close silences the channel and stops accepting notes. Safe to call more than once.
func (p *NotePlayer) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.send(contracts.MIDI{Command: contracts.ControlChange, Channel: p.channel, Data1: allNotesOff})
		if errors.Is(err, ErrNoDeviceSelected) {
			err = nil
		}
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		p.logger.Info("MIDI output closed")
	})
	return err
}

func (p *NotePlayer) send(msg contracts.MIDI) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPlayerClosed
	}
	if p.dest == nil {
		return ErrNoDeviceSelected
	}
	packet := coremidi.NewPacket(msg.Bytes(), 0)
	return packet.Send(&p.port, p.dest)
}
