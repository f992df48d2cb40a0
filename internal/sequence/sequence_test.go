package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func events(pairs ...any) []Event[string] {
	var out []Event[string]
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Event[string]{
			Payload: pairs[i].(string),
			Offset:  time.Duration(pairs[i+1].(int)) * time.Millisecond,
		})
	}
	return out
}

func TestRecorder_RecordWhileNotRecording(t *testing.T) {
	clk := newFakeClock()
	r := NewRecorder[string](clk.Now)

	_, err := r.RecordEvent("A")
	assert.ErrorIs(t, err, ErrNotRecording)
	assert.Equal(t, 0, r.Len())

	r.StartRecording()
	r.StopRecording()
	_, err = r.RecordEvent("B")
	assert.ErrorIs(t, err, ErrNotRecording)
	assert.Equal(t, 0, r.Len())
}

func TestRecorder_OffsetsRelativeToStart(t *testing.T) {
	clk := newFakeClock()
	r := NewRecorder[string](clk.Now)

	clk.Advance(5 * time.Second)
	r.StartRecording()
	for i, d := range []time.Duration{0, 120 * time.Millisecond, 380*time.Millisecond + 700*time.Microsecond} {
		clk.Advance(d)
		_, err := r.RecordEvent(string(rune('A' + i)))
		require.NoError(t, err)
	}

	got := r.Events()
	require.Len(t, got, 3)
	assert.Equal(t, time.Duration(0), got[0].Offset)
	assert.Equal(t, 120*time.Millisecond, got[1].Offset)
	assert.Equal(t, 500*time.Millisecond, got[2].Offset, "truncated to milliseconds")
}

func TestRecorder_LengthMatchesCalls(t *testing.T) {
	clk := newFakeClock()
	r := NewRecorder[int](clk.Now)
	r.StartRecording()
	for i := 0; i < 17; i++ {
		clk.Advance(time.Duration(i) * time.Millisecond)
		_, err := r.RecordEvent(i)
		require.NoError(t, err)
	}
	assert.Equal(t, 17, r.Len())
}

func TestRecorder_ClockGoingBackwardsIsClamped(t *testing.T) {
	clk := newFakeClock()
	r := NewRecorder[string](clk.Now)
	r.StartRecording()

	clk.Advance(200 * time.Millisecond)
	_, _ = r.RecordEvent("A")
	clk.Advance(-150 * time.Millisecond)
	ev, err := r.RecordEvent("B")
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, ev.Offset)

	clk.Advance(-time.Second)
	ev, _ = r.RecordEvent("C")
	assert.Equal(t, 200*time.Millisecond, ev.Offset)
}

func TestRecorder_StartClearsPrevious(t *testing.T) {
	clk := newFakeClock()
	r := NewRecorder[string](clk.Now)
	r.StartRecording()
	_, _ = r.RecordEvent("A")
	r.StopRecording()
	require.Equal(t, 1, r.Len())

	r.StartRecording()
	assert.Equal(t, 0, r.Len())
	assert.True(t, r.IsRecording())
}

func TestRecorder_ClearKeepsRecording(t *testing.T) {
	clk := newFakeClock()
	r := NewRecorder[string](clk.Now)
	r.StartRecording()
	_, _ = r.RecordEvent("A")

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.True(t, r.IsRecording())

	r.StopRecording()
	r.Clear()
	assert.False(t, r.IsRecording())
}

func TestRecorder_EventsIsACopy(t *testing.T) {
	r := NewRecorder[string](newFakeClock().Now)
	r.StartRecording()
	_, _ = r.RecordEvent("A")

	evs := r.Events()
	evs[0].Payload = "Z"
	assert.Equal(t, "A", r.Events()[0].Payload)
}

func TestPlayer_StartEmpty(t *testing.T) {
	p := NewPlayer[string](newFakeClock().Now)

	assert.ErrorIs(t, p.Start(nil), ErrEmptySequence)
	assert.Equal(t, Idle, p.State())
}

func TestPlayer_StartWhilePlaying(t *testing.T) {
	p := NewPlayer[string](newFakeClock().Now)
	require.NoError(t, p.Start(events("A", 0, "B", 100)))

	assert.ErrorIs(t, p.Start(events("C", 0)), ErrPlaying)
	assert.Equal(t, Playing, p.State())
	assert.Equal(t, 2, p.Remaining())
}

func TestPlayer_DispatchesOnlyDueEvents(t *testing.T) {
	clk := newFakeClock()
	p := NewPlayer[string](clk.Now)
	require.NoError(t, p.Start(events("A", 0, "B", 200, "C", 500)))

	var got []string
	sink := func(ev Event[string]) { got = append(got, ev.Payload) }

	clk.Advance(250 * time.Millisecond)
	prog := p.Tick(sink)
	assert.Equal(t, []string{"A", "B"}, got)
	assert.Equal(t, 2, prog.Dispatched)
	assert.False(t, prog.Done)
	assert.Equal(t, Playing, p.State())
	assert.Equal(t, 50, prog.Percent)

	clk.Advance(250 * time.Millisecond)
	prog = p.Tick(sink)
	assert.Equal(t, []string{"A", "B", "C"}, got)
	assert.True(t, prog.Done)
	assert.Equal(t, 100, prog.Percent)
	assert.Equal(t, Idle, p.State())
}

func TestPlayer_Progress(t *testing.T) {
	clk := newFakeClock()
	p := NewPlayer[string](clk.Now)
	require.NoError(t, p.Start(events("A", 0, "B", 100)))
	noop := func(Event[string]) {}

	clk.Advance(50 * time.Millisecond)
	assert.Equal(t, 50, p.Tick(noop).Percent)

	clk.Advance(50 * time.Millisecond)
	prog := p.Tick(noop)
	assert.Equal(t, 100, prog.Percent)
	assert.True(t, prog.Done)
}

func TestPlayer_SingleEventAtZero(t *testing.T) {
	p := NewPlayer[string](newFakeClock().Now)
	require.NoError(t, p.Start(events("A", 0)))

	var got []string
	prog := p.Tick(func(ev Event[string]) { got = append(got, ev.Payload) })
	assert.Equal(t, []string{"A"}, got)
	assert.Equal(t, 100, prog.Percent)
	assert.True(t, prog.Done)
}

func TestPlayer_StopMidPlayback(t *testing.T) {
	clk := newFakeClock()
	rec := NewRecorder[string](clk.Now)
	rec.StartRecording()
	for _, d := range []time.Duration{0, 100, 400} {
		clk.Advance(d * time.Millisecond)
		_, _ = rec.RecordEvent("x")
	}
	rec.StopRecording()

	p := NewPlayer[string](clk.Now)
	require.NoError(t, p.Start(rec.Events()))
	var n int
	sink := func(Event[string]) { n++ }

	clk.Advance(150 * time.Millisecond)
	p.Tick(sink)
	require.Equal(t, 2, n)

	p.Stop()
	assert.Equal(t, Idle, p.State())
	assert.Equal(t, 0, p.Percent())
	assert.Equal(t, 3, rec.Len())

	clk.Advance(time.Second)
	prog := p.Tick(sink)
	assert.Equal(t, 2, n, "no dispatch after stop")
	assert.Equal(t, 0, prog.Dispatched)
}

func TestPlayer_StopFromSink(t *testing.T) {
	clk := newFakeClock()
	p := NewPlayer[string](clk.Now)
	require.NoError(t, p.Start(events("A", 0, "B", 0, "C", 0)))

	var got []string
	prog := p.Tick(func(ev Event[string]) {
		got = append(got, ev.Payload)
		p.Stop()
	})
	assert.Equal(t, []string{"A"}, got)
	assert.Equal(t, 1, prog.Dispatched)
	assert.False(t, prog.Done)
	assert.Equal(t, Idle, p.State())
}

func TestPlayer_RestartFromSink(t *testing.T) {
	clk := newFakeClock()
	p := NewPlayer[string](clk.Now)
	require.NoError(t, p.Start(events("A", 0, "B", 0)))

	var got []string
	p.Tick(func(ev Event[string]) {
		got = append(got, ev.Payload)
		if ev.Payload == "A" {
			p.Stop()
			require.NoError(t, p.Start(events("X", 0)))
		}
	})
	assert.Equal(t, []string{"A"}, got)
	assert.Equal(t, Playing, p.State())
	assert.Equal(t, 1, p.Remaining())
}

func TestPlayer_StartSnapshotsEvents(t *testing.T) {
	clk := newFakeClock()
	p := NewPlayer[string](clk.Now)
	src := events("A", 0)
	require.NoError(t, p.Start(src))
	src[0].Payload = "Z"

	var got string
	p.Tick(func(ev Event[string]) { got = ev.Payload })
	assert.Equal(t, "A", got)
}

func TestPlayer_TickWhenIdle(t *testing.T) {
	p := NewPlayer[string](newFakeClock().Now)
	prog := p.Tick(func(Event[string]) { t.Fatal("unexpected dispatch") })
	assert.Equal(t, Progress{}, prog)
}
