package timer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/itohio/goshot/pkg/display"
)

// 16x2 layout:
//
//	Shot #03  00.412
//	Time   00:02.913
const (
	shotLabelCol  = 0
	shotNumberCol = 6
	splitCol      = 10
	splitWidth    = 6
	timeLabelCol  = 0
	timeCol       = 7
	timeWidth     = 9
)

// millis converts d to whole milliseconds for the display.
func millis(d time.Duration) uint32 {
	ms := d.Milliseconds()
	if ms < 0 {
		return 0
	}
	if ms > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(ms)
}

func (t *Timer) showReady() error {
	return errors.Join(
		t.display.Clear(),
		t.display.SetBacklight(display.White),
		t.display.Render("Shot Timer", 0, 0),
		t.display.Render("READY", 1, 0),
	)
}

func (t *Timer) showStandby() error {
	return errors.Join(
		t.display.Clear(),
		t.display.SetBacklight(display.Yellow),
		t.display.Render("STANDBY", 0, 0),
	)
}

func (t *Timer) showRunning() error {
	return errors.Join(
		t.display.Clear(),
		t.display.SetBacklight(display.Green),
		t.showShotLine(0, 0),
		t.showTimeLine(0),
	)
}

func (t *Timer) showShot(rec ShotRecord) error {
	return errors.Join(
		t.showShotLine(rec.Number, rec.Split),
		t.showTimeLine(rec.Elapsed),
	)
}

func (t *Timer) showElapsed(elapsed time.Duration) error {
	return display.PrintTime(t.display, 1, timeCol, millis(elapsed), timeWidth)
}

func (t *Timer) showStopped() error {
	return errors.Join(
		t.display.SetBacklight(display.Teal),
		t.showElapsed(t.Elapsed()),
	)
}

func (t *Timer) showShotLine(number int, split time.Duration) error {
	return errors.Join(
		t.display.Render("Shot #", 0, shotLabelCol),
		display.PrintNumber(t.display, 0, shotNumberCol, uint32(number), 2),
		t.display.Render("  ", 0, shotNumberCol+2),
		display.PrintTime(t.display, 0, splitCol, millis(split), splitWidth),
	)
}

func (t *Timer) showTimeLine(elapsed time.Duration) error {
	return errors.Join(
		t.display.Render("Time   ", 1, timeLabelCol),
		t.showElapsed(elapsed),
	)
}

// Review shows shot number n (1-based) of the last string.
func (t *Timer) Review(n int) error {
	t.mu.Lock()
	if t.state != Idle {
		t.mu.Unlock()
		return fmt.Errorf("timer is %s", t.state)
	}
	if n < 1 || n > len(t.shots) {
		t.mu.Unlock()
		return fmt.Errorf("no shot #%d", n)
	}
	rec := t.shots[n-1]
	t.review = n - 1
	t.mu.Unlock()

	return errors.Join(
		t.display.Clear(),
		t.display.SetBacklight(display.Blue),
		t.showShot(rec),
	)
}

// ReviewNext shows the shot after the one under review, wrapping around.
func (t *Timer) ReviewNext() error {
	return t.reviewStep(1)
}

// ReviewPrev shows the shot before the one under review, wrapping around.
func (t *Timer) ReviewPrev() error {
	return t.reviewStep(-1)
}

func (t *Timer) reviewStep(step int) error {
	t.mu.RLock()
	count := len(t.shots)
	cur := t.review
	t.mu.RUnlock()

	if count == 0 {
		return fmt.Errorf("no shots")
	}
	if cur < 0 {
		if step > 0 {
			cur = -1
		} else {
			cur = 0
		}
	}
	next := ((cur+step)%count + count) % count
	return t.Review(next + 1)
}
