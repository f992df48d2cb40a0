package gaze

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/gazeuke/internal/logger"
	"github.com/leandrodaf/gazeuke/internal/surface"
	"github.com/leandrodaf/gazeuke/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoother(t *testing.T) {
	s := NewSmoother(0.8)

	assert.Equal(t, contracts.Point{X: 100, Y: 50}, s.Apply(contracts.Point{X: 100, Y: 50}))

	p := s.Apply(contracts.Point{X: 200, Y: 150})
	assert.InDelta(t, 120, p.X, 1e-9)
	assert.InDelta(t, 70, p.Y, 1e-9)

	s.Reset()
	assert.Equal(t, contracts.Point{X: 7, Y: 8}, s.Apply(contracts.Point{X: 7, Y: 8}))
}

func TestSmoother_FactorBounds(t *testing.T) {
	s := NewSmoother(-3)
	assert.Equal(t, 0.0, s.Factor())
	s.Apply(contracts.Point{X: 0, Y: 0})
	assert.Equal(t, contracts.Point{X: 10, Y: 10}, s.Apply(contracts.Point{X: 10, Y: 10}))

	s.SetFactor(4)
	assert.Equal(t, 1.0, s.Factor())
	assert.Equal(t, contracts.Point{X: 10, Y: 10}, s.Apply(contracts.Point{X: 90, Y: 90}))
}

func TestDecoder_Pixels(t *testing.T) {
	d := &Decoder{}
	s, err := d.Decode([]byte(`{"x": 120.5, "y": 80, "timestamp": 12.25}`))
	require.NoError(t, err)
	assert.Equal(t, contracts.GazeSample{X: 120.5, Y: 80, Timestamp: 12.25}, s)
}

func TestDecoder_Normalized(t *testing.T) {
	d := &Decoder{Mapper: &surface.Mapper{Width: 1000, Height: 600, TagSize: 200}}
	s, err := d.Decode([]byte(`{"x": 0.5, "y": 0.5, "timestamp": 3, "normalized": true}`))
	require.NoError(t, err)
	assert.Equal(t, 500.0, s.X)
	assert.Equal(t, 300.0, s.Y)

	_, err = (&Decoder{}).Decode([]byte(`{"x": 0.5, "y": 0.5, "timestamp": 3, "normalized": true}`))
	assert.ErrorIs(t, err, ErrMalformedSample)
}

func TestDecoder_MissingTimestampUsesClock(t *testing.T) {
	at := time.Unix(1700000000, 500_000_000)
	d := &Decoder{Now: func() time.Time { return at }}
	s, err := d.Decode([]byte(`{"x": 1, "y": 2}`))
	require.NoError(t, err)
	assert.InDelta(t, 1700000000.5, s.Timestamp, 1e-6)
}

func TestDecoder_Malformed(t *testing.T) {
	d := &Decoder{}
	for _, line := range []string{`not json`, `{"x": 1}`, `{"y": 1}`, `[1,2]`} {
		_, err := d.Decode([]byte(line))
		assert.ErrorIs(t, err, ErrMalformedSample, line)
	}
}

func TestStreamSource(t *testing.T) {
	input := strings.Join([]string{
		`{"x": 1, "y": 1, "timestamp": 0.1}`,
		`garbage`,
		``,
		`{"x": 2, "y": 2, "timestamp": 0.2}`,
	}, "\n")
	src := NewStreamSource(strings.NewReader(input), nil, logger.NewZapLoggerWithWriter(io.Discard))

	out := make(chan contracts.GazeSample, 4)
	require.NoError(t, src.Start(context.Background(), out))
	src.Wait()
	require.NoError(t, src.Close())

	close(out)
	var got []float64
	for s := range out {
		got = append(got, s.Timestamp)
	}
	assert.Equal(t, []float64{0.1, 0.2}, got)
}

func TestStreamSource_CloseUnblocksDelivery(t *testing.T) {
	input := `{"x": 1, "y": 1, "timestamp": 0.1}` + "\n" + `{"x": 2, "y": 2, "timestamp": 0.2}`
	src := NewStreamSource(strings.NewReader(input), nil, logger.NewZapLoggerWithWriter(io.Discard))

	out := make(chan contracts.GazeSample)
	require.NoError(t, src.Start(context.Background(), out))
	<-out
	require.NoError(t, src.Close())
	src.Wait()
}

func TestRateMeter(t *testing.T) {
	m := NewRateMeter(0)
	for i := 0; i < 30; i++ {
		m.Mark()
	}
	assert.Equal(t, int64(30), m.Rate())
	assert.Equal(t, int64(30), m.Total())
	assert.InDelta(t, 30.0, m.PerSecond(), 1e-9)
}
