package detector

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    RawSample
		wantErr bool
	}{
		{
			name: "valid line",
			line: "1234567890123,2048",
			want: RawSample{Timestamp: time.UnixMicro(1234567890123), Level: 2048},
		},
		{
			name: "max level",
			line: "1,4095",
			want: RawSample{Timestamp: time.UnixMicro(1), Level: 4095},
		},
		{name: "level out of range", line: "1,4096", wantErr: true},
		{name: "negative level", line: "1,-3", wantErr: true},
		{name: "bad timestamp", line: "abc,12", wantErr: true},
		{name: "too many fields", line: "1,2,3", wantErr: true},
		{name: "too few fields", line: "12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Timestamp.Equal(got.Timestamp))
			assert.Equal(t, tt.want.Level, got.Level)
		})
	}
}

// pipeConn reads what the test writes into the pipe and records what the sensor is sent.
type pipeConn struct {
	*io.PipeReader

	mu      sync.Mutex
	written bytes.Buffer
}

func (c *pipeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written.Write(p)
}

func (c *pipeConn) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written.String()
}

func newPipeSerial(t *testing.T) (*Serial, *pipeConn, *io.PipeWriter) {
	t.Helper()
	pr, pw := io.Pipe()
	conn := &pipeConn{PipeReader: pr}
	s := newSerial(func() (io.ReadWriteCloser, error) { return conn, nil }, 10, zerolog.Nop())
	return s, conn, pw
}

func receive(t *testing.T, ch <-chan RawSample) RawSample {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "samples channel closed")
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no sample received")
	}
	return RawSample{}
}

func TestSerial_ReadSamples(t *testing.T) {
	s, _, pw := newPipeSerial(t)
	host := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return host }

	require.NoError(t, s.Connect())
	assert.True(t, s.IsConnected())
	assert.Error(t, s.Connect())

	go func() {
		_, _ = io.WriteString(pw, "1000000,120\n\ngarbage\n1250000,3900\n")
	}()

	first := receive(t, s.Samples())
	assert.Equal(t, uint16(120), first.Level)
	assert.True(t, host.Equal(first.Timestamp), "first sample is rebased onto the host clock")

	second := receive(t, s.Samples())
	assert.Equal(t, uint16(3900), second.Level)
	assert.Equal(t, 250*time.Millisecond, second.Timestamp.Sub(first.Timestamp))

	require.NoError(t, s.Close())
	assert.False(t, s.IsConnected())

	_, ok := <-s.Samples()
	assert.False(t, ok, "channel should be closed")
	require.NoError(t, s.Close())
}

func TestSerial_Commands(t *testing.T) {
	s, conn, _ := newPipeSerial(t)

	assert.Error(t, s.Beep(5), "not connected")

	require.NoError(t, s.Connect())
	require.NoError(t, s.Beep(10))
	require.NoError(t, s.SetSampleWindow(50))
	require.NoError(t, s.Beep(0))
	assert.Equal(t, "B10\nW50\nB0\n", conn.Written())

	require.NoError(t, s.Close())
}

func TestSerial_Reconnect(t *testing.T) {
	s, _, _ := newPipeSerial(t)
	require.NoError(t, s.Connect())
	first := s.Samples()
	require.NoError(t, s.Close())

	pr, _ := io.Pipe()
	s.open = func() (io.ReadWriteCloser, error) { return &pipeConn{PipeReader: pr}, nil }
	require.NoError(t, s.Connect())
	assert.NotEqual(t, first, s.Samples())
	require.NoError(t, s.Close())
}
