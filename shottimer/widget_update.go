package main

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/itohio/goshot/pkg/timer"
)

// UpdateWidgetOnMainThread schedules a widget update function to run on the main Fyne thread.
// Fyne widgets cannot be updated directly from goroutines.
// The callback should copy data quickly and return as fast as possible.
func UpdateWidgetOnMainThread(callback func()) {
	if callback == nil {
		return
	}
	fyne.Do(callback)
}

// updateInterval limits snapshot forwarding to ~60 FPS.
const updateInterval = 16 * time.Millisecond

// snapshotThrottle drops snapshots that only advance the elapsed time faster than the UI can draw.
// State changes and new shots always pass.
type snapshotThrottle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	state    timer.State
	shots    int
	now      func() time.Time
}

func newSnapshotThrottle(interval time.Duration) *snapshotThrottle {
	return &snapshotThrottle{interval: interval, now: time.Now, shots: -1}
}

// Allow reports whether snap should be forwarded.
func (t *snapshotThrottle) Allow(snap timer.Snapshot) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	changed := snap.State != t.state || len(snap.Shots) != t.shots
	if !changed && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	t.state = snap.State
	t.shots = len(snap.Shots)
	return true
}
