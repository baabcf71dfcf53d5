package detector

import (
	"time"

	"github.com/itohio/goshot/pkg/log"
)

// MaxSensitivity is the highest sensitivity setting.
const MaxSensitivity = 20

// Converter turns a sample stream into a shot stream. The output closes when the input does.
type Converter func(in <-chan RawSample) <-chan Shot

// Threshold returns the level a sample must reach to count as a shot. Each sensitivity step
// lowers the threshold by 1/21 of full scale; 0 counts as 1 and values above MaxSensitivity
// as MaxSensitivity.
func Threshold(sensitivity uint8) uint16 {
	if sensitivity < 1 {
		sensitivity = 1
	}
	if sensitivity > MaxSensitivity {
		sensitivity = MaxSensitivity
	}
	return uint16(FullScale - int(sensitivity)*FullScale/(MaxSensitivity+1))
}

// NewShotDetector creates a converter that emits a Shot on every rising crossing of
// Threshold(sensitivity). Crossings within holdoff of the previous shot are echoes and
// are ignored.
func NewShotDetector(sensitivity uint8, holdoff time.Duration) Converter {
	threshold := Threshold(sensitivity)
	logger := log.WithComponent("detector")

	return func(in <-chan RawSample) <-chan Shot {
		out := make(chan Shot, 16)

		go func() {
			defer close(out)

			armed := true
			var last time.Time
			haveLast := false

			for raw := range in {
				if raw.Level < threshold {
					armed = true
					continue
				}
				if !armed {
					continue
				}
				armed = false
				if haveLast && raw.Timestamp.Sub(last) < holdoff {
					continue
				}
				last = raw.Timestamp
				haveLast = true

				select {
				case out <- Shot{Timestamp: raw.Timestamp, Level: raw.Level}:
				case <-time.After(time.Second):
					logger.Warn().Msg("shot channel full, dropping shot")
				}
			}
		}()

		return out
	}
}
