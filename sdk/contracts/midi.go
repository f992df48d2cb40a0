package contracts

// NoteID is a MIDI note number (0-127). Middle C (C4) is 60.
type NoteID uint8

// MIDICommand represents the status nibble of a MIDI channel message.
type MIDICommand byte

const (
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn MIDICommand = 0x90
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
	// ControlChange is the MIDI command for a controller change (0xB0).
	ControlChange MIDICommand = 0xB0
)

// ChannelVolume is the controller number for channel volume (CC 7).
const ChannelVolume byte = 7

// MIDI represents an outgoing MIDI channel message.
type MIDI struct {
	Command MIDICommand // Command specifies the type of message (e.g., Note On, Note Off).
	Channel byte        // Channel is the zero-based MIDI channel (0-15).
	Data1   byte        // Data1 is the note number or controller number.
	Data2   byte        // Data2 is the velocity or controller value.
}

// Bytes encodes the message as the three bytes sent on the wire.
func (m MIDI) Bytes() []byte {
	return []byte{byte(m.Command) | (m.Channel & 0x0F), m.Data1 & 0x7F, m.Data2 & 0x7F}
}

// Packed encodes the message as a little-endian short message (status in the low byte).
func (m MIDI) Packed() uint32 {
	b := m.Bytes()
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// NoteOnMessage builds a Note On message on the given channel.
func NoteOnMessage(channel byte, note NoteID, velocity uint8) MIDI {
	return MIDI{Command: NoteOn, Channel: channel, Data1: byte(note), Data2: velocity}
}

// NoteOffMessage builds a Note Off message on the given channel.
func NoteOffMessage(channel byte, note NoteID) MIDI {
	return MIDI{Command: NoteOff, Channel: channel, Data1: byte(note)}
}

// VolumeMessage builds a CC 7 message on the given channel.
func VolumeMessage(channel byte, volume uint8) MIDI {
	return MIDI{Command: ControlChange, Channel: channel, Data1: ChannelVolume, Data2: volume}
}

// DeviceInfo describes a note output device as reported by the OS backend.
type DeviceInfo struct {
	Name         string
	Manufacturer string
	EntityName   string // CoreMIDI entity; empty on Windows.
}

// NotePlayer defines the note output capability used by a session.
// Play and Stop are fire-and-forget: they must not block on audio rendering.
type NotePlayer interface {
	ListDevices() ([]DeviceInfo, error)     // Lists the available MIDI output devices.
	SelectDevice(deviceID int) error        // Selects an output device by its index.
	Play(note NoteID, velocity uint8) error // Sends a Note On.
	Stop(note NoteID) error                 // Sends a Note Off.
	SetVolume(volume uint8) error           // Sends a channel volume change.
	Close() error                           // Releases the device.
}
