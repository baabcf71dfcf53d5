// Package settings reads and writes the shot timer parameters in the bracket record format
//
//	[g_delay_time=11]
//	[g_beep_vol=10]
//
// Bytes outside a record are ignored, names match exactly and values are unsigned 8-bit
// decimals.
package settings

// DefaultPath is where the settings file lives on the card.
const DefaultPath = "ShotTimer/settings.st"

// RandomDelay is the DelayTime value that selects a random 1-4 second start delay.
const RandomDelay = 11

// Settings holds the user-tunable parameters of the timer.
type Settings struct {
	DelayTime    uint8 // start delay in seconds, RandomDelay for random
	BeepVolume   uint8 // 0 (mute) to 10
	Sensitivity  uint8 // 1 (least) to 20
	SampleWindow uint8 // microphone peak-to-peak window in milliseconds
}

// Default returns the compiled-in parameters.
func Default() Settings {
	return Settings{
		DelayTime:    RandomDelay,
		BeepVolume:   10,
		Sensitivity:  1,
		SampleWindow: 50,
	}
}

// Field binds a record name to one Settings member.
type Field struct {
	Name        string
	Description string
	Min, Max    uint8 // accepted by the menus; records may carry any 8-bit value
	Ptr         func(*Settings) *uint8
}

// Fields is the ordered set of persisted parameters. Records are written in this order.
var Fields = []Field{
	{
		Name:        "g_delay_time",
		Description: "Start delay (s), 11 = random",
		Min:         0,
		Max:         RandomDelay,
		Ptr:         func(s *Settings) *uint8 { return &s.DelayTime },
	},
	{
		Name:        "g_beep_vol",
		Description: "Beep volume",
		Min:         0,
		Max:         10,
		Ptr:         func(s *Settings) *uint8 { return &s.BeepVolume },
	},
	{
		Name:        "g_sensitivity",
		Description: "Sensitivity",
		Min:         1,
		Max:         20,
		Ptr:         func(s *Settings) *uint8 { return &s.Sensitivity },
	},
	{
		Name:        "g_sample_window",
		Description: "Sample window (ms)",
		Min:         1,
		Max:         255,
		Ptr:         func(s *Settings) *uint8 { return &s.SampleWindow },
	},
}

// Lookup returns the field named name.
func Lookup(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
