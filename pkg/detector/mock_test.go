package detector

import (
	"testing"
	"time"

	"github.com/itohio/goshot/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMockConfig() *config.MockConfig {
	return &config.MockConfig{
		NoiseLevel:   40,
		ShotLevel:    4000,
		ShotPeriod:   0,
		ShotDuration: 30 * time.Millisecond,
		SampleRate:   2 * time.Millisecond,
	}
}

func TestMockLevel(t *testing.T) {
	cfg := testMockConfig()

	quiet := mockLevel(cfg, time.Second, time.Hour)
	assert.LessOrEqual(t, quiet, uint16(80))

	peak := mockLevel(cfg, time.Second, 0)
	assert.GreaterOrEqual(t, peak, Threshold(1))

	decayed := mockLevel(cfg, time.Second, 90*time.Millisecond)
	assert.Less(t, decayed, peak)
	assert.Less(t, decayed, Threshold(1))

	cfg.ShotLevel = 10000
	assert.Equal(t, uint16(FullScale), mockLevel(cfg, 0, 0))
}

func TestMock_NotConnected(t *testing.T) {
	m := NewMock(nil)
	assert.False(t, m.IsConnected())
	assert.Error(t, m.Beep(3))
	assert.Error(t, m.SetSampleWindow(20))
	assert.NoError(t, m.Close())
}

func TestMock_BeepAndWindow(t *testing.T) {
	m := NewMock(testMockConfig())
	require.NoError(t, m.Connect())
	defer m.Close()

	assert.Error(t, m.Connect())
	require.NoError(t, m.Beep(7))
	require.NoError(t, m.Beep(10))
	require.NoError(t, m.SetSampleWindow(25))
	assert.Equal(t, []uint8{7, 10}, m.Beeps())
	assert.Equal(t, uint8(25), m.SampleWindow())
}

func TestMock_TriggerIsDetected(t *testing.T) {
	m := NewMock(testMockConfig())
	require.NoError(t, m.Connect())

	shots := NewShotDetector(1, 50*time.Millisecond)(m.Samples())

	// let the noise floor settle before firing
	time.Sleep(20 * time.Millisecond)
	m.Trigger()

	select {
	case s := <-shots:
		assert.GreaterOrEqual(t, s.Level, Threshold(1))
	case <-time.After(2 * time.Second):
		t.Fatal("triggered shot not detected")
	}

	require.NoError(t, m.Close())
	for range shots {
	}
}

// TestMock_GracefulShutdown tests that Mock closes the samples channel when Close() is called.
func TestMock_GracefulShutdown(t *testing.T) {
	m := NewMock(testMockConfig())
	require.NoError(t, m.Connect())

	samples := m.Samples()

	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range samples {
			received++
			if received == 3 {
				go m.Close()
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Samples channel did not close within timeout")
	}

	assert.GreaterOrEqual(t, received, 3, "Should receive samples before channel closes")
	assert.False(t, m.IsConnected())
}
