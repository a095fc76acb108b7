package robot

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// fakePort replays canned replies and records everything written.
type fakePort struct {
	written bytes.Buffer
	replies io.Reader
	closed  bool
}

func newFakePort(replies ...string) *fakePort {
	return &fakePort{replies: strings.NewReader(strings.Join(replies, ""))}
}

func (p *fakePort) Read(b []byte) (int, error)  { return p.replies.Read(b) }
func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }
func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

// silentPort behaves like a serial port whose read timeout always expires.
type silentPort struct{ fakePort }

func (p *silentPort) Read([]byte) (int, error) { return 0, nil }

func TestFormatCommand(t *testing.T) {
	assert.Equal(t, "STOP\n", FormatCommand("STOP"))
	assert.Equal(t, "ORBIT -90 20\n", FormatCommand("ORBIT", -90, 20))
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		line    string
		want    string
		wantErr error
	}{
		{"OK", "", nil},
		{"OK\r\n", "", nil},
		{"OK 532", "532", nil},
		{"ERR servo stalled", "", ErrCommandFailed},
		{"ERR", "", ErrCommandFailed},
	}
	for _, tt := range tests {
		got, err := ParseReply(tt.line)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, tt.line)
			continue
		}
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseReply("HELLO")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCommandFailed)
}

func TestPortOptions_Normalize(t *testing.T) {
	got, err := PortOptions{}.Normalize()
	require.NoError(t, err)

	want := PortOptions{BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: "N", ReadTimeoutMS: 2000}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, DefaultReadTimeout, got.ReadTimeout())

	got, err = PortOptions{BaudRate: 9600, Parity: "even", ReadTimeoutMS: 250}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "E", got.Parity)
	assert.Equal(t, 9600, got.BaudRate)
	assert.Equal(t, 250*time.Millisecond, got.ReadTimeout())

	for _, bad := range []PortOptions{{DataBits: 9}, {StopBits: 3}, {Parity: "mark"}} {
		_, err := bad.Normalize()
		assert.Error(t, err, "%+v", bad)
	}
}

func TestPortOptions_SerialMode(t *testing.T) {
	mode, err := PortOptions{StopBits: 2, Parity: "O"}.SerialMode()
	require.NoError(t, err)
	assert.Equal(t, 115200, mode.BaudRate)
	assert.Equal(t, serial.TwoStopBits, mode.StopBits)
	assert.Equal(t, serial.OddParity, mode.Parity)

	mode, err = PortOptions{}.SerialMode()
	require.NoError(t, err)
	assert.Equal(t, serial.OneStopBit, mode.StopBits)
	assert.Equal(t, serial.NoParity, mode.Parity)
}

func TestSerialDriver_Send(t *testing.T) {
	port := newFakePort("OK\n", "OK 532\r\n")
	drv := NewSerialDriver("/dev/ttyTEST", port)
	ctx := context.Background()

	reply, err := drv.Send(ctx, "ORBIT", 90, 20)
	require.NoError(t, err)
	assert.Empty(t, reply)

	reply, err = drv.Send(ctx, "DIST")
	require.NoError(t, err)
	assert.Equal(t, "532", reply)

	assert.Equal(t, "ORBIT 90 20\nDIST\n", port.written.String())
}

func TestSerialDriver_Errors(t *testing.T) {
	ctx := context.Background()

	drv := NewSerialDriver("/dev/ttyTEST", newFakePort("ERR bad verb\n"))
	_, err := drv.Send(ctx, "JUMP")
	assert.ErrorIs(t, err, ErrCommandFailed)

	drv = NewSerialDriver("/dev/ttyTEST", newFakePort())
	_, err = drv.Send(ctx, "STOP")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/ttyTEST")
	assert.ErrorIs(t, err, io.EOF)

	drv = NewSerialDriver("/dev/ttyTEST", &silentPort{})
	_, err = drv.Send(ctx, "STOP")
	assert.ErrorIs(t, err, ErrNoReply)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	port := newFakePort("OK\n")
	_, err = NewSerialDriver("/dev/ttyTEST", port).Send(cancelled, "STOP")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, port.written.Len(), "nothing is written after cancellation")
}

func TestSerialDriver_Close(t *testing.T) {
	port := newFakePort()
	require.NoError(t, NewSerialDriver("/dev/ttyTEST", port).Close())
	assert.True(t, port.closed)
}

func TestOpenSerial_Failures(t *testing.T) {
	_, err := OpenSerial(filepath.Join(t.TempDir(), "no-such-tty"), PortOptions{})
	assert.ErrorIs(t, err, ErrHardwareInit)

	_, err = OpenSerial("/dev/null", PortOptions{DataBits: 12})
	assert.ErrorIs(t, err, ErrHardwareInit)
}
