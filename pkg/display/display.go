// Package display drives the character display of the timer.
package display

import (
	"github.com/itohio/goshot/pkg/legible"
)

const (
	// DefaultRows and DefaultCols describe a 16x2 character LCD.
	DefaultRows = 2
	DefaultCols = 16
)

// Color is a backlight color of an RGB character LCD. Each bit drives one LED.
type Color uint8

const (
	Off    Color = 0x0
	Red    Color = 0x1
	Green  Color = 0x2
	Yellow Color = 0x3
	Blue   Color = 0x4
	Violet Color = 0x5
	Teal   Color = 0x6
	White  Color = 0x7
)

func (c Color) String() string {
	switch c {
	case Off:
		return "off"
	case Red:
		return "red"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Blue:
		return "blue"
	case Violet:
		return "violet"
	case Teal:
		return "teal"
	case White:
		return "white"
	default:
		return "unknown"
	}
}

// Display is a character display.
type Display interface {
	// Render writes text starting at row, col. Text past the end of the row is clipped.
	Render(text string, row, col int) error
	// Clear blanks the display.
	Clear() error
	// SetBacklight switches the backlight color.
	SetBacklight(c Color) error
}

// PrintNumber renders value zero-padded to width characters at row, col.
func PrintNumber(d Display, row, col int, value uint32, width int) error {
	var txt legible.Text
	legible.ConvertNumber(&txt, value, width)
	return d.Render(txt.String(), row, col)
}

// PrintTime renders elapsedMs as the rightmost width characters of HH:MM:SS.mmm at row, col.
func PrintTime(d Display, row, col int, elapsedMs uint32, width int) error {
	var txt legible.Text
	legible.ConvertTime(&txt, elapsedMs, width)
	return d.Render(txt.String(), row, col)
}

// Ensure implementations satisfy Display.
var (
	_ Display = (*Mock)(nil)
	_ Display = (*Serial)(nil)
	_ Display = (*Terminal)(nil)
)
