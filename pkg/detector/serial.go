package detector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial"
)

// DefaultBaudRate is the baud rate of the sensor firmware.
const DefaultBaudRate = 115200

// Serial is a connection to the microphone sampler.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	logger   zerolog.Logger
	open     func() (io.ReadWriteCloser, error)
	now      func() time.Time

	mu        sync.RWMutex
	conn      io.ReadWriteCloser
	samples   chan RawSample
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
}

// NewSerial creates a sensor on port.
func NewSerial(port string, baudRate, bufSize int, logger zerolog.Logger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	s := newSerial(nil, bufSize, logger)
	s.port = port
	s.baudRate = baudRate
	s.open = func() (io.ReadWriteCloser, error) {
		return serial.Open(port, &serial.Mode{BaudRate: baudRate})
	}
	return s
}

func newSerial(open func() (io.ReadWriteCloser, error), bufSize int, logger zerolog.Logger) *Serial {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Serial{
		bufSize: bufSize,
		logger:  logger,
		open:    open,
		now:     time.Now,
	}
}

// Connect opens the port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	conn, err := d.open()
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.conn = conn
	d.samples = make(chan RawSample, d.bufSize)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.connected = true

	go d.readSamples(ctx, conn, d.samples, d.done)

	return nil
}

// Close closes the connection and waits for the reader to stop.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()
	if err := d.conn.Close(); err != nil {
		d.logger.Warn().Err(err).Msg("error closing serial port")
	}
	<-d.done

	d.conn = nil
	d.connected = false
	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.samples
}

// Beep sends "B<volume>\n".
func (d *Serial) Beep(volume uint8) error {
	return d.command('B', volume)
}

// SetSampleWindow sends "W<ms>\n".
func (d *Serial) SetSampleWindow(ms uint8) error {
	return d.command('W', ms)
}

// IsConnected returns whether the sensor is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

func (d *Serial) command(op byte, arg uint8) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	var buf [5]byte
	cmd := append(buf[:0], op)
	cmd = strconv.AppendUint(cmd, uint64(arg), 10)
	cmd = append(cmd, '\n')

	if _, err := d.conn.Write(cmd); err != nil {
		return fmt.Errorf("failed to send %c command: %w", op, err)
	}
	return nil
}

// readSamples reads lines until the connection fails or is closed. Device timestamps are
// rebased onto the host clock at the first sample so that intervals keep device precision.
func (d *Serial) readSamples(ctx context.Context, conn io.Reader, out chan<- RawSample, done chan<- struct{}) {
	defer close(done)
	defer close(out)

	var offset time.Duration
	rebased := false

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sample, err := parseLine(line)
		if err != nil {
			d.logger.Debug().Err(err).Str("line", line).Msg("failed to parse line")
			continue
		}
		if !rebased {
			offset = d.now().Sub(sample.Timestamp)
			rebased = true
		}
		sample.Timestamp = sample.Timestamp.Add(offset)

		select {
		case out <- sample:
		case <-ctx.Done():
			return
		default:
			d.logger.Warn().Msg("samples channel full, dropping sample")
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil && !errors.Is(err, io.EOF) {
		d.logger.Error().Err(err).Msg("error reading from serial port")
	}
}
