package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the host application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Storage  StorageConfig  `yaml:"storage"`
	Display  DisplayConfig  `yaml:"display"`
	Detector DetectorConfig `yaml:"detector"`
	Mock     MockConfig     `yaml:"mock"`
	Log      LogConfig      `yaml:"log"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	DetectorPort    string `yaml:"detector_port"`     // Microphone sampler; empty uses the mock detector
	DisplayPort     string `yaml:"display_port"`      // LCD backpack; empty keeps the on-screen display only
	BaudRate        int    `yaml:"baud_rate"`         // Detector baud rate
	DisplayBaudRate int    `yaml:"display_baud_rate"` // LCD backpack baud rate
}

// StorageConfig locates the settings file.
type StorageConfig struct {
	Dir          string `yaml:"dir"`           // Root of the medium (mounted SD card or a local directory)
	SettingsPath string `yaml:"settings_path"` // Settings file relative to Dir
}

// DisplayConfig contains character display geometry.
type DisplayConfig struct {
	Rows    int           `yaml:"rows"`
	Cols    int           `yaml:"cols"`
	Refresh time.Duration `yaml:"refresh"` // Live elapsed time refresh period
}

// DetectorConfig contains shot detection parameters.
type DetectorConfig struct {
	Holdoff    time.Duration `yaml:"holdoff"`     // Re-trigger suppression after a shot (echoes)
	BufferSize int           `yaml:"buffer_size"` // Samples channel buffer
}

// MockConfig contains mock detector configuration.
type MockConfig struct {
	NoiseLevel   float32       `yaml:"noise_level"`   // Background level (ADC counts)
	ShotLevel    float32       `yaml:"shot_level"`    // Peak level of a simulated shot (ADC counts)
	ShotPeriod   time.Duration `yaml:"shot_period"`   // Time between simulated shots
	ShotDuration time.Duration `yaml:"shot_duration"` // Decay time of a simulated shot
	SampleRate   time.Duration `yaml:"sample_rate"`   // Sample period
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
	Verbose bool   `yaml:"verbose"` // Annotate log entries with file:line
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			DetectorPort:    "",
			DisplayPort:     "",
			BaudRate:        115200,
			DisplayBaudRate: 9600,
		},
		Storage: StorageConfig{
			Dir:          "sdcard",
			SettingsPath: "ShotTimer/settings.st",
		},
		Display: DisplayConfig{
			Rows:    2,
			Cols:    16,
			Refresh: 50 * time.Millisecond,
		},
		Detector: DetectorConfig{
			Holdoff:    50 * time.Millisecond,
			BufferSize: 100,
		},
		Mock: MockConfig{
			NoiseLevel:   40,
			ShotLevel:    4000,
			ShotPeriod:   1500 * time.Millisecond,
			ShotDuration: 30 * time.Millisecond,
			SampleRate:   5 * time.Millisecond,
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills fields that must never be zero.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.DisplayBaudRate == 0 {
		c.Serial.DisplayBaudRate = def.Serial.DisplayBaudRate
	}

	if c.Storage.Dir == "" {
		c.Storage.Dir = def.Storage.Dir
	}
	if c.Storage.SettingsPath == "" {
		c.Storage.SettingsPath = def.Storage.SettingsPath
	}

	if c.Display.Rows <= 0 {
		c.Display.Rows = def.Display.Rows
	}
	if c.Display.Cols <= 0 {
		c.Display.Cols = def.Display.Cols
	}
	if c.Display.Refresh <= 0 {
		c.Display.Refresh = def.Display.Refresh
	}

	if c.Detector.Holdoff <= 0 {
		c.Detector.Holdoff = def.Detector.Holdoff
	}
	if c.Detector.BufferSize <= 0 {
		c.Detector.BufferSize = def.Detector.BufferSize
	}

	if c.Mock.SampleRate <= 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.ShotPeriod <= 0 {
		c.Mock.ShotPeriod = def.Mock.ShotPeriod
	}
	if c.Mock.ShotDuration <= 0 {
		c.Mock.ShotDuration = def.Mock.ShotDuration
	}
	if c.Mock.ShotLevel == 0 {
		c.Mock.ShotLevel = def.Mock.ShotLevel
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}
