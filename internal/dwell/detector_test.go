package dwell

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPoint_SingleSampleIsInsufficient(t *testing.T) {
	d := NewDetector(500*time.Millisecond, 50)

	res := d.AddPoint(100, 100, 0)
	assert.False(t, res.Changed)
	assert.False(t, res.InDwell)
	assert.False(t, res.HasCenter)
}

func TestAddPoint_SpanShorterThanDelay(t *testing.T) {
	d := NewDetector(500*time.Millisecond, 50)

	d.AddPoint(100, 100, 0)
	res := d.AddPoint(100, 100, 0.3)
	assert.False(t, res.HasCenter)
	assert.False(t, res.InDwell)
}

func TestAddPoint_StableClusterTriggersOnce(t *testing.T) {
	d := NewDetector(500*time.Millisecond, 50)

	var enters int
	for i := 0; i <= 30; i++ {
		ts := float64(i) * 0.05
		x := 200 + 5*math.Sin(float64(i))
		y := 300 + 5*math.Cos(float64(i))
		res := d.AddPoint(x, y, ts)
		if res.Changed && res.InDwell {
			enters++
			assert.InDelta(t, 200, res.Center.X, 10)
			assert.InDelta(t, 300, res.Center.Y, 10)
		}
	}
	assert.Equal(t, 1, enters)
	assert.True(t, d.InDwell())
}

func TestAddPoint_ClusterBreakReportsExit(t *testing.T) {
	d := NewDetector(500*time.Millisecond, 50)

	ts := 0.0
	for ; ts <= 0.6; ts += 0.05 {
		d.AddPoint(100, 100, ts)
	}
	require.True(t, d.InDwell())

	res := d.AddPoint(400, 400, ts)
	assert.True(t, res.Changed)
	assert.False(t, res.InDwell)

	res = d.AddPoint(410, 400, ts+0.05)
	assert.False(t, res.Changed, "exit is edge triggered")
	assert.False(t, res.InDwell)
}

func TestAddPoint_ScatteredPointsNeverDwell(t *testing.T) {
	d := NewDetector(300*time.Millisecond, 20)

	for i := 0; i < 40; i++ {
		x := float64((i % 2) * 100)
		res := d.AddPoint(x, 0, float64(i)*0.05)
		assert.False(t, res.InDwell)
	}
}

func TestAddPoint_WindowBoundedByDelay(t *testing.T) {
	d := NewDetector(400*time.Millisecond, 50)

	for i := 0; i < 200; i++ {
		ts := float64(i) * 0.033
		d.AddPoint(float64(i%7), 0, ts)
		oldest := d.win.oldest().t
		assert.LessOrEqual(t, ts-oldest, 0.4+Epsilon+0.033, "sample %d", i)
		if d.win.len() > 1 && ts-oldest >= 0.4 {
			assert.GreaterOrEqual(t, oldest, ts-0.4-Epsilon)
		}
	}
	assert.Less(t, len(d.win.buf), 64)
}

func TestAddPoint_RejectsOutOfOrderSample(t *testing.T) {
	d := NewDetector(200*time.Millisecond, 50)

	for ts := 0.0; ts <= 0.3; ts += 0.05 {
		d.AddPoint(10, 10, ts)
	}
	require.True(t, d.InDwell())
	before := d.win.len()

	res := d.AddPoint(900, 900, 0.1)
	assert.True(t, res.Rejected)
	assert.False(t, res.Changed)
	assert.True(t, res.InDwell)
	assert.Equal(t, before, d.win.len())
}

func TestAddPoint_RejectsNonFinite(t *testing.T) {
	d := NewDetector(200*time.Millisecond, 50)

	assert.True(t, d.AddPoint(math.NaN(), 0, 0).Rejected)
	assert.True(t, d.AddPoint(0, math.Inf(1), 0).Rejected)
	assert.True(t, d.AddPoint(0, 0, math.NaN()).Rejected)
	assert.Equal(t, 0, d.win.len())
}

func TestAccepts(t *testing.T) {
	d := NewDetector(200*time.Millisecond, 50)

	assert.True(t, d.Accepts(1, 1, 0.5))
	assert.False(t, d.Accepts(math.NaN(), 1, 0.5))
	d.AddPoint(1, 1, 0.5)

	assert.True(t, d.Accepts(900, 900, 0.5))
	assert.True(t, d.Accepts(900, 900, 0.6))
	assert.False(t, d.Accepts(900, 900, 0.4))
	assert.False(t, d.Accepts(1, 1, math.Inf(1)))
	assert.Equal(t, 1, d.win.len(), "Accepts never changes the window")
}

func TestAddPoint_DuplicateTimestampAccepted(t *testing.T) {
	d := NewDetector(200*time.Millisecond, 50)

	d.AddPoint(1, 1, 0.5)
	res := d.AddPoint(2, 2, 0.5)
	assert.False(t, res.Rejected)
	assert.Equal(t, 2, d.win.len())
}

func TestSetters_SameValueKeepsState(t *testing.T) {
	d := NewDetector(300*time.Millisecond, 40)
	ts := 0.0
	for ; ts <= 0.5; ts += 0.05 {
		d.AddPoint(50, 50, ts)
	}
	require.True(t, d.InDwell())

	d.SetRange(d.Range())
	d.SetDuration(d.Duration())
	res := d.AddPoint(50, 50, ts)
	assert.False(t, res.Changed)
	assert.True(t, res.InDwell)
}

func TestSetRange_AppliesOnNextSample(t *testing.T) {
	d := NewDetector(300*time.Millisecond, 40)
	var ts float64
	for i := 0; i <= 10; i++ {
		ts = float64(i) * 0.05
		d.AddPoint(float64(i%2)*30, 0, ts)
	}
	require.True(t, d.InDwell())

	d.SetRange(5)
	assert.True(t, d.InDwell(), "no retroactive evaluation")

	res := d.AddPoint(0, 0, ts+0.05)
	assert.True(t, res.Changed)
	assert.False(t, res.InDwell)
}

func TestReset(t *testing.T) {
	d := NewDetector(100*time.Millisecond, 40)
	for ts := 0.0; ts <= 0.2; ts += 0.05 {
		d.AddPoint(0, 0, ts)
	}
	require.True(t, d.InDwell())

	d.Reset()
	assert.False(t, d.InDwell())
	assert.Equal(t, 0, d.win.len())
	assert.False(t, d.AddPoint(0, 0, 0).Rejected)
}
