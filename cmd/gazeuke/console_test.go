package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/gazeuke/internal/logger"
	"github.com/leandrodaf/gazeuke/internal/midi/midilog"
	"github.com/leandrodaf/gazeuke/internal/surface"
	"github.com/leandrodaf/gazeuke/sdk/contracts"
	"github.com/leandrodaf/gazeuke/sdk/trainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopScheduler struct{}

func (noopScheduler) AfterFunc(time.Duration, func()) func() { return func() {} }

// inline runs commands immediately instead of queueing them on a loop.
type inline struct {
	s *trainer.Session
}

func (i inline) Exec(fn func(*trainer.Session)) error {
	fn(i.s)
	return nil
}

func (i inline) Snapshot() trainer.Status { return i.s.Snapshot() }

func newTestSession(t *testing.T, status contracts.StatusReporter) (*trainer.Session, *midilog.Player) {
	t.Helper()
	log := logger.NewZapLoggerWithWriter(io.Discard)
	notes := midilog.New(log, 0)
	s, err := trainer.NewSession(
		contracts.WithLogger(log),
		contracts.WithSurface(surface.NewGrid(surface.DefaultGridLayout(1920), nil)),
		contracts.WithNotePlayer(notes),
		contracts.WithScheduler(noopScheduler{}),
		contracts.WithStatusReporter(status),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, notes
}

func TestParseCommand(t *testing.T) {
	cmd, err := parseCommand("   ")
	require.NoError(t, err)
	assert.Nil(t, cmd.apply)

	cmd, err = parseCommand("Q")
	require.NoError(t, err)
	assert.True(t, cmd.quit)

	cmd, err = parseCommand("status")
	require.NoError(t, err)
	assert.True(t, cmd.status)

	for _, line := range []string{"r", "p", "c", "+", "-", "m", "v 80", "d 1.5", "g 40", "s 0.3", "t 1 2"} {
		cmd, err := parseCommand(line)
		require.NoError(t, err, line)
		assert.NotNil(t, cmd.apply, line)
	}
}

func TestParseCommand_Errors(t *testing.T) {
	_, err := parseCommand("x")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	for _, line := range []string{"d", "d soon", "g 1 2", "v", "v loud", "t 1", "t a b"} {
		_, err := parseCommand(line)
		assert.ErrorIs(t, err, ErrUsage, line)
	}
}

func TestConsole_Run(t *testing.T) {
	var out bytes.Buffer
	con := newConsole(&out)
	s, notes := newTestSession(t, con)

	input := strings.Join([]string{
		"r",
		"t 1 2",
		"t 0 0",
		"r",
		"d 1.2",
		"g 30",
		"s 0",
		"v 64",
		"m",
		"s 2",
		"bogus",
		"status",
		"q",
		"r",
	}, "\n")
	require.NoError(t, con.Run(strings.NewReader(input), inline{s: s}))

	st := s.Snapshot()
	assert.False(t, st.Recording, "commands after q are not read")
	assert.Equal(t, 2, st.Events)
	assert.Equal(t, 1200*time.Millisecond, st.DwellDuration)
	assert.Equal(t, 30.0, st.DwellRange)
	assert.Equal(t, 0.0, st.Smoothing)
	assert.Equal(t, uint8(64), st.Volume)
	assert.True(t, st.MouseControl)

	var ons int
	for _, m := range notes.Journal() {
		if m.Command == contracts.NoteOn {
			ons++
		}
	}
	assert.Equal(t, 2, ons)

	text := out.String()
	assert.Contains(t, text, "Recording started.")
	assert.Contains(t, text, "Clicked (1,2), Note: D4")
	assert.Contains(t, text, "Volume set to 64")
	assert.Contains(t, text, "error: invalid setting")
	assert.Contains(t, text, "unknown command")
	assert.Contains(t, text, "recording=false playing=false events=2")
}

func TestConsole_PlaybackOfEmptySequence(t *testing.T) {
	var out bytes.Buffer
	con := newConsole(&out)
	s, _ := newTestSession(t, con)

	require.NoError(t, con.Run(strings.NewReader("p\n"), inline{s: s}))
	assert.Contains(t, out.String(), "No recorded sequence to play.")
	assert.NotContains(t, out.String(), "error:")
}

func TestConsole_ClosedSession(t *testing.T) {
	con := newConsole(io.Discard)
	s, _ := newTestSession(t, con)
	require.NoError(t, s.Close())

	err := con.Run(strings.NewReader("r\n"), s)
	assert.ErrorIs(t, err, trainer.ErrClosed)
}

func TestConsole_SetProgressSteps(t *testing.T) {
	var out bytes.Buffer
	con := newConsole(&out)

	for _, p := range []int{0, 3, 9, 10, 15, 50, 100} {
		con.SetProgress(p)
	}
	assert.Equal(t, "progress 0%\nprogress 10%\nprogress 50%\nprogress 100%\n", out.String())
}
