// Package timer runs a shot string: arm, start delay, beep, record shots until stopped.
package timer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/itohio/goshot/pkg/detector"
	"github.com/itohio/goshot/pkg/display"
	"github.com/itohio/goshot/pkg/settings"
	"github.com/rs/zerolog"
)

// MaxShots is the number of shots recorded per string.
const MaxShots = 100

const (
	minRandomDelay = 1000 * time.Millisecond
	maxRandomDelay = 4000 * time.Millisecond
)

// State of the timer.
type State int

const (
	Idle State = iota
	Delay
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Delay:
		return "delay"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// ShotRecord is one recorded shot.
type ShotRecord struct {
	Number  int           // 1-based
	Elapsed time.Duration // since the beep
	Split   time.Duration // since the previous shot, or the beep for the first one
	Level   uint16
}

// Snapshot is the timer state handed to update callbacks.
type Snapshot struct {
	State   State
	Elapsed time.Duration
	Shots   []ShotRecord
}

// Timer is the shot timer main loop. Start and Stop may be called from any goroutine;
// Run owns the display and the sensor.
type Timer struct {
	settings *settings.Settings
	source   detector.Source
	display  display.Display
	refresh  time.Duration
	logger   zerolog.Logger

	now        func() time.Time
	after      func(time.Duration) <-chan time.Time
	randomWait func() time.Duration

	wake chan struct{}

	mu      sync.RWMutex
	active  settings.Settings
	state   State
	beepAt  time.Time
	started time.Time
	stopped time.Time
	shots   []ShotRecord
	review  int

	callbacks []func(Snapshot)
	cbMu      sync.RWMutex
}

// Option configures a Timer.
type Option func(*Timer)

// WithRefresh sets the live elapsed time refresh period.
func WithRefresh(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.refresh = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Timer) { t.logger = logger }
}

// WithClock replaces the wall clock and the delay timer.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(t *Timer) {
		t.now = now
		t.after = after
	}
}

// WithRandomDelay replaces the random start delay generator.
func WithRandomDelay(fn func() time.Duration) Option {
	return func(t *Timer) { t.randomWait = fn }
}

// New creates a timer. s is copied at every Start, so edits apply to the next string.
// source may be nil when there is no sensor to beep.
func New(s *settings.Settings, source detector.Source, d display.Display, opts ...Option) *Timer {
	t := &Timer{
		settings: s,
		source:   source,
		display:  d,
		refresh:  50 * time.Millisecond,
		logger:   zerolog.Nop(),
		now:      time.Now,
		after:    time.After,
		randomWait: func() time.Duration {
			return minRandomDelay + rand.N(maxRandomDelay-minRandomDelay+time.Millisecond)
		},
		wake:   make(chan struct{}, 1),
		shots:  make([]ShotRecord, 0, MaxShots),
		review: -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartDelay returns the delay before the beep for s.
func (t *Timer) StartDelay(s settings.Settings) time.Duration {
	if s.DelayTime >= settings.RandomDelay {
		return t.randomWait()
	}
	return time.Duration(s.DelayTime) * time.Second
}

// Start arms the timer and clears the previous string.
func (t *Timer) Start() error {
	s := *t.settings

	t.mu.Lock()
	if t.state != Idle {
		t.mu.Unlock()
		return fmt.Errorf("timer is %s", t.state)
	}
	delay := t.StartDelay(s)
	t.active = s
	t.state = Delay
	t.beepAt = t.now().Add(delay)
	t.started = time.Time{}
	t.stopped = time.Time{}
	t.shots = t.shots[:0]
	t.review = -1
	t.mu.Unlock()

	t.logger.Info().Dur("delay", delay).Msg("armed")

	if t.source != nil && t.source.IsConnected() {
		if err := t.source.SetSampleWindow(s.SampleWindow); err != nil {
			t.logger.Warn().Err(err).Msg("failed to set sample window")
		}
	}

	if err := t.showStandby(); err != nil {
		t.logger.Warn().Err(err).Msg("display")
	}

	t.signal()
	t.notify()
	return nil
}

// Stop ends the string, or cancels a pending start.
func (t *Timer) Stop() {
	t.mu.Lock()
	prev := t.state
	if prev == Running {
		t.stopped = t.now()
	}
	t.state = Idle
	t.mu.Unlock()

	if prev == Idle {
		return
	}
	t.logger.Info().Int("shots", t.ShotCount()).Msg("stopped")

	if err := t.showStopped(); err != nil {
		t.logger.Warn().Err(err).Msg("display")
	}
	t.signal()
	t.notify()
}

// State returns the current state.
func (t *Timer) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Elapsed returns the time since the beep, frozen once stopped.
func (t *Timer) Elapsed() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.elapsedLocked()
}

func (t *Timer) elapsedLocked() time.Duration {
	switch {
	case t.started.IsZero():
		return 0
	case t.state == Running:
		return t.now().Sub(t.started)
	case t.state == Idle && !t.stopped.IsZero():
		return t.stopped.Sub(t.started)
	default:
		return 0
	}
}

// Shots returns a copy of the recorded shots.
func (t *Timer) Shots() []ShotRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]ShotRecord(nil), t.shots...)
}

// ShotCount returns the number of recorded shots.
func (t *Timer) ShotCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.shots)
}

// OnUpdate registers a callback invoked after every state change and recorded shot.
// The callback should return quickly.
func (t *Timer) OnUpdate(callback func(Snapshot)) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.callbacks = append(t.callbacks, callback)
}

// Run drives the timer until ctx is done. Shots arriving outside a running string are
// ignored; a closed shots channel is not an error.
func (t *Timer) Run(ctx context.Context, shots <-chan detector.Shot) error {
	ticker := time.NewTicker(t.refresh)
	defer ticker.Stop()

	if err := t.showReady(); err != nil {
		t.logger.Warn().Err(err).Msg("display")
	}

	for {
		var beep <-chan time.Time
		t.mu.RLock()
		if t.state == Delay {
			beep = t.after(t.beepAt.Sub(t.now()))
		}
		t.mu.RUnlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.wake:
		case <-beep:
			t.fire()
		case shot, ok := <-shots:
			if !ok {
				shots = nil
				continue
			}
			t.record(shot)
		case <-ticker.C:
			t.tick()
		}
	}
}

func (t *Timer) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// fire sounds the beep and starts the clock.
func (t *Timer) fire() {
	t.mu.Lock()
	if t.state != Delay {
		t.mu.Unlock()
		return
	}
	t.state = Running
	t.started = t.now()
	t.stopped = time.Time{}
	volume := t.active.BeepVolume
	t.mu.Unlock()

	if t.source != nil {
		if err := t.source.Beep(volume); err != nil {
			t.logger.Warn().Err(err).Msg("failed to beep")
		}
	}
	t.logger.Debug().Msg("beep")

	if err := t.showRunning(); err != nil {
		t.logger.Warn().Err(err).Msg("display")
	}
	t.notify()
}

func (t *Timer) record(shot detector.Shot) {
	t.mu.Lock()
	if t.state != Running || shot.Timestamp.Before(t.started) {
		t.mu.Unlock()
		return
	}
	if len(t.shots) >= MaxShots {
		t.mu.Unlock()
		t.logger.Warn().Int("max", MaxShots).Msg("shot string full, ignoring shot")
		return
	}

	elapsed := shot.Timestamp.Sub(t.started)
	split := elapsed
	if n := len(t.shots); n > 0 {
		split = elapsed - t.shots[n-1].Elapsed
	}
	rec := ShotRecord{Number: len(t.shots) + 1, Elapsed: elapsed, Split: split, Level: shot.Level}
	t.shots = append(t.shots, rec)
	t.mu.Unlock()

	t.logger.Debug().Int("shot", rec.Number).Dur("elapsed", elapsed).Dur("split", split).Msg("shot")

	if err := t.showShot(rec); err != nil {
		t.logger.Warn().Err(err).Msg("display")
	}
	t.notify()
}

func (t *Timer) tick() {
	t.mu.RLock()
	running := t.state == Running
	elapsed := t.elapsedLocked()
	t.mu.RUnlock()

	if !running {
		return
	}
	if err := t.showElapsed(elapsed); err != nil {
		t.logger.Warn().Err(err).Msg("display")
	}
}

func (t *Timer) notify() {
	t.mu.RLock()
	snap := Snapshot{
		State:   t.state,
		Elapsed: t.elapsedLocked(),
		Shots:   append([]ShotRecord(nil), t.shots...),
	}
	t.mu.RUnlock()

	t.cbMu.RLock()
	callbacks := make([]func(Snapshot), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(snap)
		}
	}
}
