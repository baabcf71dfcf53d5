package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goshot/pkg/detector"
	"github.com/itohio/goshot/pkg/timer"
)

// handleReview steps through the recorded shots on the display.
func handleReview(state *appState, step int) {
	if state.chain == nil {
		return
	}

	var err error
	if step < 0 {
		err = state.chain.timer.ReviewPrev()
	} else {
		err = state.chain.timer.ReviewNext()
	}
	if err != nil {
		state.logger.Debug().Err(err).Msg("review unavailable")
	}
}

// createShotList creates the list of recorded shots. Selecting a row shows it on the display.
func createShotList(state *appState) fyne.CanvasObject {
	state.shotList = widget.NewList(
		func() int {
			return len(state.shots)
		},
		func() fyne.CanvasObject {
			label := widget.NewLabel("Shot #00  split 00.000  total 00:00.000")
			label.TextStyle = fyne.TextStyle{Monospace: true}
			return label
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(state.shots) {
				return
			}
			obj.(*widget.Label).SetText(formatShot(state.shots[id]))
		},
	)
	state.shotList.OnSelected = func(id widget.ListItemID) {
		if state.chain == nil || id < 0 || id >= len(state.shots) {
			return
		}
		if err := state.chain.timer.Review(state.shots[id].Number); err != nil {
			state.logger.Debug().Err(err).Int("shot", state.shots[id].Number).Msg("review unavailable")
		}
	}
	return state.shotList
}

// formatShot renders one shot record for the list.
func formatShot(rec timer.ShotRecord) string {
	split := rec.Split.Milliseconds()
	total := rec.Elapsed.Milliseconds()
	return fmt.Sprintf("Shot #%02d  split %02d.%03d  total %02d:%02d.%03d",
		rec.Number,
		split/1000%100, split%1000,
		total/60000%100, total/1000%60, total%1000)
}

// updateShotList replaces the list content. Only refreshes when the shot count changed.
func updateShotList(state *appState, shots []timer.ShotRecord) {
	if len(shots) == len(state.shots) && (len(shots) == 0 || shots[len(shots)-1] == state.shots[len(state.shots)-1]) {
		return
	}
	state.shots = shots
	state.shotList.UnselectAll()
	state.shotList.Refresh()
	if len(shots) > 0 {
		state.shotList.ScrollToBottom()
	}
}

// updateButtonStates enables the controls that apply to the current timer state.
func updateButtonStates(state *appState, s timer.State) {
	connected := state.chain != nil

	if connected {
		state.connectBtn.Importance = widget.HighImportance
	} else {
		state.connectBtn.Importance = widget.MediumImportance
	}
	state.connectBtn.Refresh()

	setEnabled(state.startBtn, connected && s == timer.Idle)
	setEnabled(state.stopBtn, connected && s != timer.Idle)
	setEnabled(state.prevBtn, connected && s == timer.Idle)
	setEnabled(state.nextBtn, connected && s == timer.Idle)

	mocked := false
	if connected {
		_, mocked = state.chain.source.(*detector.Mock)
	}
	setEnabled(state.triggerBtn, mocked)
}

func setEnabled(btn *widget.Button, enabled bool) {
	if enabled {
		btn.Enable()
	} else {
		btn.Disable()
	}
}
