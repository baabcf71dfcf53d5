//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_US    = 250 // Microphone ADC read interval in microseconds
	DEFAULT_SAMPLE_WINDOW = 50  // Peak-to-peak window in milliseconds until the host sends W<ms>

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Beeper configuration
	BEEP_FREQUENCY_HZ = 2000
	BEEP_DURATION_MS  = 300
	MAX_VOLUME        = 10

	// Microphone amplifier output
	PIN_MIC = machine.A1

	// Piezo beeper
	PIN_BEEPER = machine.D7

	// Serial configuration
	// Format "unix_micros,level\n" is ~22 bytes per line. The default 50 ms window needs
	// 440 bytes/sec; 115200 baud carries 11,520 bytes/sec, enough for windows down to 2 ms.
	UART_BAUD_RATE = 115200
)
