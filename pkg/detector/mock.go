package detector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/goshot/pkg/config"
)

// Mock simulates the shot sensor: a noise floor with exponentially decaying shots, fired
// every ShotPeriod (zero disables) or on Trigger.
type Mock struct {
	cfg *config.MockConfig

	mu        sync.RWMutex
	samples   chan RawSample
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool

	startTime time.Time
	lastShot  time.Time
	nextShot  time.Time
	pending   bool
	beeps     []uint8
	window    uint8
}

// NewMock creates a new mocked sensor.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	return &Mock{cfg: cfg}
}

// Connect starts generating samples.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.samples = make(chan RawSample, DefaultBufferSize)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.connected = true
	m.startTime = time.Now()
	m.lastShot = time.Time{}
	m.nextShot = m.startTime.Add(m.cfg.ShotPeriod)
	m.pending = false

	go m.generateSamples(ctx, m.samples, m.done)

	return nil
}

// Close stops the mocked sensor and closes the samples channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	done := m.done
	m.connected = false
	m.mu.Unlock()

	<-done
	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.samples
}

// Beep records the beep volume.
func (m *Mock) Beep(volume uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}
	m.beeps = append(m.beeps, volume)
	return nil
}

// Beeps returns the volumes of all beeps so far.
func (m *Mock) Beeps() []uint8 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]uint8(nil), m.beeps...)
}

// SetSampleWindow records the sample window.
func (m *Mock) SetSampleWindow(ms uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}
	m.window = ms
	return nil
}

// SampleWindow returns the last sample window set.
func (m *Mock) SampleWindow() uint8 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.window
}

// Trigger fires a simulated shot at the next sample.
func (m *Mock) Trigger() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = true
}

// IsConnected returns whether the sensor is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Mock) generateSamples(ctx context.Context, out chan<- RawSample, done chan<- struct{}) {
	defer close(done)
	defer close(out)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sample := m.generateSample(now)
			select {
			case out <- sample:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

func (m *Mock) generateSample(now time.Time) RawSample {
	m.mu.Lock()
	if m.pending || (m.cfg.ShotPeriod > 0 && !now.Before(m.nextShot)) {
		m.lastShot = now
		m.nextShot = now.Add(m.cfg.ShotPeriod)
		m.pending = false
	}
	sinceShot := now.Sub(m.lastShot)
	elapsed := now.Sub(m.startTime)
	m.mu.Unlock()

	return RawSample{
		Timestamp: now,
		Level:     mockLevel(m.cfg, elapsed, sinceShot),
	}
}

// mockLevel is the simulated peak-to-peak level elapsed after connecting and sinceShot after
// the latest shot.
func mockLevel(cfg *config.MockConfig, elapsed, sinceShot time.Duration) uint16 {
	t := float32(elapsed.Seconds())
	noise := (math32.Sin(t*377) + math32.Cos(t*1213)) * 0.5 * cfg.NoiseLevel
	level := cfg.NoiseLevel + noise

	if cfg.ShotDuration > 0 {
		decay := float32(sinceShot.Seconds() / cfg.ShotDuration.Seconds())
		if decay < 8 {
			level += cfg.ShotLevel * math32.Exp(-decay)
		}
	}

	level = math32.Round(level)
	if level < 0 {
		return 0
	}
	if level > FullScale {
		return FullScale
	}
	return uint16(level)
}
