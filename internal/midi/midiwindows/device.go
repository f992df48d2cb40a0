package midiwindows

import (
	"fmt"

	"github.com/leandrodaf/gazeuke/sdk/contracts"
)

// describeDevice builds the listing entry for output device index. When the
// capabilities query failed the entry keeps its slot with a placeholder name,
// so positions in the list still match the device IDs SelectDevice takes.
func describeDevice(index uint32, name string, mid, pid uint16, ok bool) contracts.DeviceInfo {
	if !ok {
		placeholder := fmt.Sprintf("unavailable MIDI device %d", index)
		return contracts.DeviceInfo{Name: placeholder, EntityName: placeholder, Manufacturer: "unknown"}
	}
	return contracts.DeviceInfo{
		Name:         name,
		EntityName:   name,
		Manufacturer: fmt.Sprintf("MID: %d PID: %d", mid, pid),
	}
}
