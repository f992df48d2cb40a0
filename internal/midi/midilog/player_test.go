package midilog

import (
	"io"
	"testing"

	"github.com/leandrodaf/gazeuke/internal/logger"
	"github.com/leandrodaf/gazeuke/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayer_Journal(t *testing.T) {
	p := New(logger.NewZapLoggerWithWriter(io.Discard), 2)

	require.NoError(t, p.SelectDevice(0))
	require.NoError(t, p.SetVolume(90))
	require.NoError(t, p.Play(60, 90))
	require.NoError(t, p.Stop(60))

	j := p.Journal()
	require.Len(t, j, 3)
	assert.Equal(t, []byte{0xB2, 7, 90}, j[0].Bytes())
	assert.Equal(t, []byte{0x92, 60, 90}, j[1].Bytes())
	assert.Equal(t, []byte{0x82, 60, 0}, j[2].Bytes())
	assert.Equal(t, uint32(0x5A3C92), j[1].Packed())
}

func TestPlayer_Close(t *testing.T) {
	p := New(logger.NewZapLoggerWithWriter(io.Discard), 0)
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.Play(60, 100), ErrClosed)
	assert.Empty(t, p.Journal())
}

func TestPlayer_Devices(t *testing.T) {
	p := New(logger.NewZapLoggerWithWriter(io.Discard), 0)
	devs, err := p.ListDevices()
	require.NoError(t, err)
	assert.Equal(t, []contracts.DeviceInfo{{Name: "log", EntityName: "log", Manufacturer: "gazeuke"}}, devs)

	err = p.SelectDevice(3)
	assert.ErrorIs(t, err, ErrInvalidDevice)
	assert.EqualError(t, err, "invalid MIDI device: 3")
}
