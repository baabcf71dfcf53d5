// Package detector reads microphone levels from the shot sensor and turns them into shots.
package detector

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

const (
	// FullScale is the largest 12-bit ADC level.
	FullScale = 4095
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
)

// RawSample is the peak-to-peak microphone level over one sample window.
type RawSample struct {
	Timestamp time.Time
	Level     uint16 // 12-bit (0-4095)
}

// Shot is a detected shot.
type Shot struct {
	Timestamp time.Time
	Level     uint16
}

// Source is a shot sensor (real or mocked).
type Source interface {
	Connect() error
	Close() error
	// Samples returns the sample stream of the current connection. It is closed by Close.
	Samples() <-chan RawSample
	// Beep sounds the start signal at volume 0-10.
	Beep(volume uint8) error
	// SetSampleWindow sets the peak-to-peak window in milliseconds.
	SetSampleWindow(ms uint8) error
	IsConnected() bool
}

var (
	_ Source = (*Serial)(nil)
	_ Source = (*Mock)(nil)
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// parseLine parses a sensor line into a RawSample stamped with the device clock.
// Format: unix_micros,level
// Example: 1234567890123,2048
func parseLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return RawSample{}, fmt.Errorf("invalid line format: expected 2 comma-separated values, got %d", len(parts))
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	level, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid level: %w", err)
	}
	if level > FullScale {
		return RawSample{}, fmt.Errorf("level out of range: %d (max %d)", level, FullScale)
	}

	return RawSample{
		Timestamp: time.UnixMicro(micros),
		Level:     uint16(level),
	}, nil
}
