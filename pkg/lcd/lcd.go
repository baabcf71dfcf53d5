package lcd

import (
	"fmt"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goshot/pkg/display"
)

var _ display.Display = (*LCD)(nil)

// LCD is a custom Fyne widget that emulates an RGB backlit character LCD.
// It implements display.Display and may be driven from any goroutine.
type LCD struct {
	widget.BaseWidget

	// Display memory (protected by mu)
	mu        sync.RWMutex
	grid      *display.Grid
	backlight display.Color

	textSize float32
}

// New creates a rows x cols LCD with a white backlight.
func New(rows, cols int) *LCD {
	l := &LCD{
		grid:      display.NewGrid(rows, cols),
		backlight: display.White,
		textSize:  28,
	}
	l.ExtendBaseWidget(l)
	return l
}

// Render writes text at row, col.
func (l *LCD) Render(text string, row, col int) error {
	l.mu.Lock()
	if row < 0 || row >= l.grid.Rows() {
		l.mu.Unlock()
		return fmt.Errorf("row %d out of range", row)
	}
	l.grid.Put(text, row, col)
	l.mu.Unlock()

	l.refresh()
	return nil
}

// Clear blanks the display.
func (l *LCD) Clear() error {
	l.mu.Lock()
	l.grid.Clear()
	l.mu.Unlock()

	l.refresh()
	return nil
}

// SetBacklight switches the backlight color.
func (l *LCD) SetBacklight(c display.Color) error {
	l.mu.Lock()
	l.backlight = c
	l.mu.Unlock()

	l.refresh()
	return nil
}

// Lines returns the current content.
func (l *LCD) Lines() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.grid.Lines()
}

// Backlight returns the current backlight color.
func (l *LCD) Backlight() display.Color {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.backlight
}

// refresh schedules a redraw on the Fyne main thread.
func (l *LCD) refresh() {
	fyne.Do(l.Refresh)
}

// CreateRenderer creates the widget renderer.
func (l *LCD) CreateRenderer() fyne.WidgetRenderer {
	l.mu.RLock()
	rows := l.grid.Rows()
	l.mu.RUnlock()

	bg := canvas.NewRectangle(BacklightColor(display.White))
	bg.CornerRadius = 6

	r := &lcdRenderer{
		lcd:     l,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
	for range rows {
		txt := canvas.NewText("", TextColor(display.White))
		txt.TextStyle = fyne.TextStyle{Monospace: true}
		txt.TextSize = l.textSize
		r.rows = append(r.rows, txt)
		r.objects = append(r.objects, txt)
	}
	r.Refresh()
	return r
}

// BacklightColor is the panel color for backlight c.
func BacklightColor(c display.Color) color.Color {
	switch c {
	case display.Red:
		return color.RGBA{R: 210, G: 50, B: 40, A: 255}
	case display.Green:
		return color.RGBA{R: 90, G: 190, B: 70, A: 255}
	case display.Yellow:
		return color.RGBA{R: 225, G: 205, B: 50, A: 255}
	case display.Blue:
		return color.RGBA{R: 50, G: 100, B: 220, A: 255}
	case display.Violet:
		return color.RGBA{R: 150, G: 70, B: 210, A: 255}
	case display.Teal:
		return color.RGBA{R: 40, G: 175, B: 175, A: 255}
	case display.White:
		return color.RGBA{R: 225, G: 235, B: 225, A: 255}
	default:
		return color.RGBA{R: 35, G: 40, B: 35, A: 255}
	}
}

// TextColor is the character color for backlight c.
func TextColor(c display.Color) color.Color {
	if c == display.Off {
		return color.RGBA{R: 80, G: 85, B: 80, A: 255}
	}
	return color.RGBA{R: 20, G: 25, B: 20, A: 255}
}
