//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcMic machine.ADC
	uart   = machine.UART0

	// Peak-to-peak accumulation over the current window
	levelMin     uint16
	levelMax     uint16
	windowStart  time.Time
	sampleWindow = time.Duration(DEFAULT_SAMPLE_WINDOW) * time.Millisecond

	// Timing
	lastADCRead time.Time

	// Serial buffer for reading command lines
	serialBuffer [16]byte
	serialPos    int
	discarding   bool // rest of an overlong line is ignored until its newline
)

func main() {
	PIN_BEEPER.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_BEEPER.Low()

	PIN_MIC.Configure(machine.PinConfig{Mode: machine.PinInput})
	adcMic = machine.ADC{Pin: PIN_MIC}
	adcMic.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	lastADCRead = time.Now()
	resetWindow(lastADCRead)

	for {
		now := time.Now()

		processSerial()

		if now.Sub(lastADCRead) >= SAMPLE_INTERVAL_US*time.Microsecond {
			readMic()
			lastADCRead = now
		}

		if now.Sub(windowStart) >= sampleWindow {
			outputLevel(now)
			resetWindow(now)
		}

		time.Sleep(50 * time.Microsecond)
	}
}

func resetWindow(now time.Time) {
	levelMin = 0xffff
	levelMax = 0
	windowStart = now
}

func readMic() {
	// machine.ADC returns 16-bit scaled values regardless of resolution
	value := adcMic.Get() >> 4
	if value < levelMin {
		levelMin = value
	}
	if value > levelMax {
		levelMax = value
	}
}

func outputLevel(now time.Time) {
	var level uint16
	if levelMax > levelMin {
		level = levelMax - levelMin
	}

	// Output format: "unix_micros,level\n"
	// Example: "1234567890123,2048\n"
	print(now.UnixNano() / 1000)
	print(",")
	print(level)
	print("\n")
}

func processSerial() {
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		if data == '\n' || data == '\r' {
			if serialPos > 0 && !discarding {
				executeCommand(serialBuffer[:serialPos])
			}
			serialPos = 0
			discarding = false
			continue
		}

		if discarding || data == ' ' || data == '\t' {
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		} else {
			serialPos = 0
			discarding = true
		}
	}
}

// executeCommand runs "W<ms>" (sample window) or "B<volume>" (beep).
func executeCommand(cmd []byte) {
	value, ok := parseUint8(cmd[1:])
	if !ok {
		return
	}

	switch cmd[0] {
	case 'W':
		if value == 0 {
			value = 1
		}
		sampleWindow = time.Duration(value) * time.Millisecond
		resetWindow(time.Now())
	case 'B':
		beep(value)
		// The beeper is loud enough to register; start a fresh window after it.
		resetWindow(time.Now())
	}
}

func parseUint8(digits []byte) (uint8, bool) {
	if len(digits) == 0 || len(digits) > 3 {
		return 0, false
	}
	var v uint16
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint16(c-'0')
	}
	if v > 255 {
		return 0, false
	}
	return uint8(v), true
}

// beep drives the piezo with a square wave. Volume scales the duty cycle.
func beep(volume uint8) {
	if volume == 0 {
		return
	}
	if volume > MAX_VOLUME {
		volume = MAX_VOLUME
	}

	period := time.Second / BEEP_FREQUENCY_HZ
	high := period * time.Duration(volume) / (2 * MAX_VOLUME)
	cycles := BEEP_FREQUENCY_HZ * BEEP_DURATION_MS / 1000

	for range cycles {
		PIN_BEEPER.High()
		time.Sleep(high)
		PIN_BEEPER.Low()
		time.Sleep(period - high)
	}
}
