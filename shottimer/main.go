package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goshot/pkg/config"
	"github.com/itohio/goshot/pkg/detector"
	"github.com/itohio/goshot/pkg/display"
	"github.com/itohio/goshot/pkg/lcd"
	"github.com/itohio/goshot/pkg/log"
	"github.com/itohio/goshot/pkg/settings"
	"github.com/itohio/goshot/pkg/storage"
	"github.com/itohio/goshot/pkg/timer"
	"github.com/rs/zerolog"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Detector serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		dirFlag    = flag.String("dir", "", "Settings medium directory override (mounted SD card)")
		mockFlag   = flag.Bool("mock", false, "Use mocked detector instead of serial port")
		debugFlag  = flag.Bool("debug", false, "Verbose logging with file:line")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *portFlag != "" {
		cfg.Serial.DetectorPort = *portFlag
	}
	if *dirFlag != "" {
		cfg.Storage.Dir = *dirFlag
	}
	if *debugFlag {
		cfg.Log.Level = "debug"
		cfg.Log.Verbose = true
	}

	log.Configure(log.Config{Level: cfg.Log.Level, Console: cfg.Log.Console, Verbose: cfg.Log.Verbose})
	logger := log.WithComponent("shottimer")

	application := app.NewWithID("com.itohio.goshot")

	window := application.NewWindow("Shot Timer")
	window.Resize(fyne.NewSize(640, 480))
	window.CenterOnScreen()

	medium := storage.NewDir(cfg.Storage.Dir, log.WithComponent("storage"))

	state := &appState{
		cfg:      cfg,
		cfgPath:  *configFlag,
		logger:   logger,
		medium:   medium,
		store:    settings.NewStore(medium, cfg.Storage.SettingsPath, log.WithComponent("settings")),
		settings: settings.Default(),
		window:   window,
		useMock:  *mockFlag || cfg.Serial.DetectorPort == "",
		lcd:      lcd.New(cfg.Display.Rows, cfg.Display.Cols),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state.loadSettings(ctx, true)
	state.watchSettings(ctx)

	toolbar := createToolbar(state)
	shots := createShotList(state)

	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		container.NewVSplit(container.NewCenter(state.lcd), shots),
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		closeTimerChain(state.chain)
		state.chain = nil
		if state.serialDisplay != nil {
			state.serialDisplay.Close()
		}
	})
	window.ShowAndRun()
}

// timerChain tracks the components of a connected timer for graceful shutdown.
type timerChain struct {
	source detector.Source
	timer  *timer.Timer
	cancel context.CancelFunc
	done   chan struct{} // Closed when the timer loop exits
}

// appState holds the application state. It is only touched from the Fyne main thread.
type appState struct {
	cfg      *config.Config
	cfgPath  string
	logger   zerolog.Logger
	medium   *storage.Dir
	store    *settings.Store
	settings settings.Settings
	window   fyne.Window
	useMock  bool

	lcd           *lcd.LCD
	serialDisplay *display.Serial
	chain         *timerChain // Current timer chain (nil if not connected)

	connectBtn *widget.Button
	startBtn   *widget.Button
	stopBtn    *widget.Button
	triggerBtn *widget.Button
	prevBtn    *widget.Button
	nextBtn    *widget.Button
	shotList   *widget.List
	shots      []timer.ShotRecord
}

// createToolbar creates the application toolbar with Connect, Settings, Start/Stop and review buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	state.connectBtn = widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	state.startBtn = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), func() {
		handleStart(state)
	})
	state.stopBtn = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), func() {
		handleStop(state)
	})
	// Fires a simulated shot on the mocked detector
	state.triggerBtn = widget.NewButtonWithIcon("", theme.MediaRecordIcon(), func() {
		if state.chain == nil {
			return
		}
		if m, ok := state.chain.source.(*detector.Mock); ok {
			m.Trigger()
		}
	})

	state.prevBtn = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
		handleReview(state, -1)
	})
	state.nextBtn = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
		handleReview(state, 1)
	})

	updateButtonStates(state, timer.Idle)

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(state.connectBtn, settingsBtn, state.startBtn, state.stopBtn, state.triggerBtn),
		container.NewHBox(state.prevBtn, state.nextBtn),
		nil,
	)
}

// loadSettings reads the settings file. The initial load creates the file from the current
// values when it is missing; later loads keep the current values.
func (state *appState) loadSettings(ctx context.Context, initial bool) {
	s := settings.Default()
	report, err := state.store.Load(ctx, &s)
	if err != nil {
		if !errors.Is(err, storage.ErrUnavailable) {
			state.logger.Error().Err(err).Msg("failed to load settings")
			return
		}
		if !initial {
			state.logger.Warn().Err(err).Msg("settings unavailable, keeping current settings")
			return
		}
		state.logger.Warn().Err(err).Msg("settings unavailable, writing current settings")
		if err := state.store.Save(ctx, state.settings); err != nil {
			state.logger.Warn().Err(err).Msg("failed to write settings")
		}
		return
	}
	state.logger.Info().
		Int("applied", report.Applied).
		Int("warnings", len(report.Warnings)).
		Msg("settings loaded")
	applySettings(state, s)
}

// watchSettings reloads the settings whenever the file is changed outside the app.
func (state *appState) watchSettings(ctx context.Context) {
	events, err := state.medium.Watch(ctx, state.store.Path())
	if err != nil {
		state.logger.Warn().Err(err).Msg("settings hot reload disabled")
		return
	}
	go func() {
		for range events {
			fyne.Do(func() {
				state.loadSettings(ctx, false)
			})
		}
	}()
}

// settingsChange is what a connected chain has to do for new settings to take effect.
type settingsChange struct {
	rebuild bool // the shot detector captures its threshold when the chain is built
	window  bool
}

func compareSettings(old, updated settings.Settings) settingsChange {
	return settingsChange{
		rebuild: old.Sensitivity != updated.Sensitivity,
		window:  old.SampleWindow != updated.SampleWindow,
	}
}

// applySettings makes updated the current settings and brings a connected chain in line.
func applySettings(state *appState, updated settings.Settings) {
	change := compareSettings(state.settings, updated)
	state.settings = updated
	if state.chain == nil {
		return
	}

	switch {
	case change.rebuild:
		state.logger.Info().Uint8("sensitivity", updated.Sensitivity).Msg("reconnecting for new sensitivity")
		handleConnect(state)
		handleConnect(state)
	case change.window:
		if err := state.chain.source.SetSampleWindow(updated.SampleWindow); err != nil {
			state.logger.Warn().Err(err).Msg("failed to set sample window")
		}
	}
}

// closeTimerChain gracefully closes the timer chain.
func closeTimerChain(chain *timerChain) {
	if chain == nil {
		return
	}

	// Closing the source closes the sample and shot channels
	if chain.source != nil {
		chain.source.Close()
	}

	chain.cancel()
	<-chain.done
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.chain != nil {
		closeTimerChain(state.chain)
		state.chain = nil
		updateButtonStates(state, timer.Idle)
		state.logger.Info().Msg("disconnected")
		return
	}

	chain, err := startTimerChain(state)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.chain = chain
	updateButtonStates(state, timer.Idle)
}

// startTimerChain connects the detector and starts the timer loop.
func startTimerChain(state *appState) (*timerChain, error) {
	var source detector.Source
	if state.useMock {
		mockCfg := state.cfg.Mock
		source = detector.NewMock(&mockCfg)
		state.logger.Info().Msg("using mocked detector")
	} else {
		source = detector.NewSerial(state.cfg.Serial.DetectorPort, state.cfg.Serial.BaudRate,
			state.cfg.Detector.BufferSize, log.WithComponent("detector"))
	}

	if err := source.Connect(); err != nil {
		if state.useMock {
			return nil, fmt.Errorf("failed to connect to mocked detector: %w", err)
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.DetectorPort, err)
	}
	if err := source.SetSampleWindow(state.settings.SampleWindow); err != nil {
		state.logger.Warn().Err(err).Msg("failed to set sample window")
	}

	disp := display.Tee{state.lcd}
	if state.cfg.Serial.DisplayPort != "" {
		if state.serialDisplay == nil {
			sd, err := display.OpenSerial(state.cfg.Serial.DisplayPort, state.cfg.Serial.DisplayBaudRate,
				state.cfg.Display.Rows, state.cfg.Display.Cols)
			if err != nil {
				state.logger.Warn().Err(err).Msg("external display unavailable")
			} else {
				state.serialDisplay = sd
			}
		}
		if state.serialDisplay != nil {
			disp = append(disp, state.serialDisplay)
		}
	}

	t := timer.New(&state.settings, source, disp,
		timer.WithRefresh(state.cfg.Display.Refresh),
		timer.WithLogger(log.WithComponent("timer")),
	)
	throttle := newSnapshotThrottle(updateInterval)
	t.OnUpdate(func(snap timer.Snapshot) {
		if !throttle.Allow(snap) {
			return
		}
		UpdateWidgetOnMainThread(func() {
			updateShotList(state, snap.Shots)
			updateButtonStates(state, snap.State)
		})
	})

	shots := detector.NewShotDetector(state.settings.Sensitivity, state.cfg.Detector.Holdoff)(source.Samples())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.Run(ctx, shots)
	}()

	state.logger.Info().Bool("mock", state.useMock).Msg("connected")
	return &timerChain{source: source, timer: t, cancel: cancel, done: done}, nil
}

// handleStart arms the timer.
func handleStart(state *appState) {
	if state.chain == nil {
		return
	}
	if err := state.chain.timer.Start(); err != nil {
		dialog.ShowError(err, state.window)
	}
}

// handleStop ends the current string.
func handleStop(state *appState) {
	if state.chain == nil {
		return
	}
	state.chain.timer.Stop()
}
