package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goshot/pkg/detector"
	"github.com/itohio/goshot/pkg/settings"
	"github.com/itohio/goshot/pkg/storage"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createTimerTab(state),
		createSerialTab(state),
		createStorageTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// rangeValidator accepts decimal values within the menu limits of a field.
func rangeValidator(f settings.Field) fyne.StringValidator {
	return func(text string) error {
		v, err := strconv.ParseUint(strings.TrimSpace(text), 10, 8)
		if err != nil {
			return fmt.Errorf("%s must be a number", f.Name)
		}
		if uint8(v) < f.Min || uint8(v) > f.Max {
			return fmt.Errorf("%s must be between %d and %d", f.Name, f.Min, f.Max)
		}
		return nil
	}
}

// createTimerTab edits the persisted timer settings and writes them to the medium.
func createTimerTab(state *appState) *container.TabItem {
	entries := make([]*widget.Entry, len(settings.Fields))
	items := make([]*widget.FormItem, len(settings.Fields))
	for i, f := range settings.Fields {
		entry := widget.NewEntry()
		entry.SetText(strconv.Itoa(int(*f.Ptr(&state.settings))))
		entry.Validator = rangeValidator(f)
		entries[i] = entry
		items[i] = &widget.FormItem{Text: f.Name, Widget: entry, HintText: f.Description}
	}

	form := &widget.Form{
		Items: items,
		OnSubmit: func() {
			updated := state.settings
			for i, f := range settings.Fields {
				if err := settings.Apply(&updated, f.Name, strings.TrimSpace(entries[i].Text)); err != nil {
					dialog.ShowError(err, state.window)
					return
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := state.store.Save(ctx, updated); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save settings: %w", err), state.window)
				return
			}

			state.logger.Info().Interface("settings", updated).Msg("settings saved")
			applySettings(state, updated)
		},
	}

	return container.NewTabItem("Timer", form)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := detector.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	} else {
		state.logger.Warn().Err(err).Msg("failed to list serial ports")
	}

	newPortSelect := func(current string) *widget.Select {
		options := append([]string{}, portOptions...)
		selected := current
		found := false
		for _, opt := range options {
			if portMap[opt] == current {
				selected = opt
				found = true
				break
			}
		}
		if !found && current != "" {
			options = append(options, current)
		}
		sel := widget.NewSelect(options, nil)
		if selected != "" {
			sel.SetSelected(selected)
		}
		return sel
	}
	portName := func(sel *widget.Select) string {
		if p, ok := portMap[sel.Selected]; ok {
			return p
		}
		return sel.Selected
	}

	detectorSelect := newPortSelect(state.cfg.Serial.DetectorPort)
	displaySelect := newPortSelect(state.cfg.Serial.DisplayPort)
	mockCheck := widget.NewCheck("", nil)
	mockCheck.SetChecked(state.useMock)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Detector Port", Widget: detectorSelect},
			{Text: "Display Port", Widget: displaySelect, HintText: "Optional external character display"},
			{Text: "Mocked Detector", Widget: mockCheck},
		},
		OnSubmit: func() {
			detectorPort := portName(detectorSelect)
			displayPort := portName(displaySelect)

			changed := state.cfg.Serial.DetectorPort != detectorPort ||
				state.cfg.Serial.DisplayPort != displayPort ||
				state.useMock != mockCheck.Checked
			wasConnected := state.chain != nil

			state.cfg.Serial.DetectorPort = detectorPort
			state.cfg.Serial.DisplayPort = displayPort
			state.useMock = mockCheck.Checked || detectorPort == ""
			if err := state.cfg.Save(state.cfgPath); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
				return
			}

			if !changed {
				return
			}
			if wasConnected {
				handleConnect(state)
			}
			if state.serialDisplay != nil {
				state.serialDisplay.Close()
				state.serialDisplay = nil
			}
			if wasConnected {
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createStorageTab shows the medium report and lets the user reformat the settings file.
func createStorageTab(state *appState) *container.TabItem {
	report := widget.NewLabel("")
	report.TextStyle = fyne.TextStyle{Monospace: true}

	refresh := func() {
		info, err := storage.Check(state.medium, state.logger)
		report.SetText(describeMedium(state.medium.Root(), info, err))
	}
	refresh()

	rewrite := widget.NewButton("Rewrite settings", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := state.store.Save(ctx, state.settings); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save settings: %w", err), state.window)
		}
		refresh()
	})

	content := container.NewBorder(
		nil,
		container.NewHBox(widget.NewButton("Refresh", refresh), rewrite),
		nil,
		nil,
		container.NewVScroll(report),
	)
	return container.NewTabItem("SD Card", content)
}

// describeMedium formats a medium report the way the device prints it on its console.
func describeMedium(root string, info storage.Info, err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Medium: %s\n", root)
	if err != nil {
		fmt.Fprintf(&b, "Error: %v\n", err)
		if !info.Present {
			return b.String()
		}
	}
	fmt.Fprintf(&b, "Card type: %s\n", info.Card)
	if info.FATType != 0 {
		fmt.Fprintf(&b, "Volume type: FAT%d\n", info.FATType)
	}
	fmt.Fprintf(&b, "Clusters: %d\n", info.ClusterCount)
	fmt.Fprintf(&b, "Blocks x Cluster: %d\n", info.BlocksPerCluster)
	fmt.Fprintf(&b, "Volume size (Mb): %d\n", info.SizeBytes()/(1024*1024))
	b.WriteString("\nFiles found on the card (name and size in bytes):\n")
	for _, f := range info.Files {
		fmt.Fprintf(&b, "%-32s %d\n", f.Name, f.Size)
	}
	return b.String()
}

// createMockTab creates the Mock detector configuration tab.
func createMockTab(state *appState) *container.TabItem {
	noiseLevelEntry := widget.NewEntry()
	noiseLevelEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.NoiseLevel))

	shotLevelEntry := widget.NewEntry()
	shotLevelEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.ShotLevel))

	shotPeriodEntry := widget.NewEntry()
	shotPeriodEntry.SetText(state.cfg.Mock.ShotPeriod.String())

	shotDurationEntry := widget.NewEntry()
	shotDurationEntry.SetText(state.cfg.Mock.ShotDuration.String())

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(state.cfg.Mock.SampleRate.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Noise Level", Widget: noiseLevelEntry},
			{Text: "Shot Level", Widget: shotLevelEntry},
			{Text: "Shot Period", Widget: shotPeriodEntry},
			{Text: "Shot Duration", Widget: shotDurationEntry},
			{Text: "Sample Rate", Widget: sampleRateEntry},
		},
		OnSubmit: func() {
			if nl, err := strconv.ParseFloat(noiseLevelEntry.Text, 32); err == nil {
				state.cfg.Mock.NoiseLevel = float32(nl)
			}
			if sl, err := strconv.ParseFloat(shotLevelEntry.Text, 32); err == nil {
				state.cfg.Mock.ShotLevel = float32(sl)
			}
			if sp, err := time.ParseDuration(shotPeriodEntry.Text); err == nil {
				state.cfg.Mock.ShotPeriod = sp
			}
			if sd, err := time.ParseDuration(shotDurationEntry.Text); err == nil {
				state.cfg.Mock.ShotDuration = sd
			}
			if sr, err := time.ParseDuration(sampleRateEntry.Text); err == nil {
				state.cfg.Mock.SampleRate = sr
			}
			if err := state.cfg.Save(state.cfgPath); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
