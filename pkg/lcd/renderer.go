package lcd

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

const padding = 12

// lcdRenderer renders the LCD widget.
type lcdRenderer struct {
	lcd *LCD

	// Panel
	bg *canvas.Rectangle

	// One text per character row
	rows []*canvas.Text

	objects []fyne.CanvasObject
}

// cell returns the size of one character.
func (r *lcdRenderer) cell() fyne.Size {
	size := fyne.MeasureText("0", r.lcd.textSize, fyne.TextStyle{Monospace: true})
	return size
}

// MinSize returns the minimum size of the widget.
func (r *lcdRenderer) MinSize() fyne.Size {
	r.lcd.mu.RLock()
	rows, cols := r.lcd.grid.Rows(), r.lcd.grid.Cols()
	r.lcd.mu.RUnlock()

	cell := r.cell()
	return fyne.NewSize(cell.Width*float32(cols)+2*padding, cell.Height*float32(rows)+2*padding)
}

// Layout centers the character rows on the panel.
func (r *lcdRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)

	minSize := r.MinSize()
	x := (size.Width - minSize.Width) / 2
	y := (size.Height - minSize.Height) / 2
	cell := r.cell()
	for i, txt := range r.rows {
		txt.Move(fyne.NewPos(x+padding, y+padding+float32(i)*cell.Height))
		txt.Resize(fyne.NewSize(minSize.Width-2*padding, cell.Height))
	}
}

// Refresh copies the display memory into the canvas objects.
func (r *lcdRenderer) Refresh() {
	lines := r.lcd.Lines()
	backlight := r.lcd.Backlight()

	r.bg.FillColor = BacklightColor(backlight)
	r.bg.Refresh()

	fg := TextColor(backlight)
	for i, txt := range r.rows {
		if i < len(lines) {
			txt.Text = lines[i]
		}
		txt.Color = fg
		txt.Refresh()
	}
}

// Objects returns all canvas objects for rendering.
func (r *lcdRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *lcdRenderer) Destroy() {}
