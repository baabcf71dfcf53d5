package display

import (
	"fmt"
	"sync"
)

// Mock is an in-memory display. It keeps the grid and the backlight and counts renders.
type Mock struct {
	mu        sync.RWMutex
	grid      *Grid
	backlight Color
	renders   int
	onChange  func(lines []string, backlight Color)

	// Err, when set, is returned by every call.
	Err error
}

// NewMock creates a blank rows x cols display with a white backlight.
func NewMock(rows, cols int) *Mock {
	return &Mock{grid: NewGrid(rows, cols), backlight: White}
}

// OnChange registers a callback invoked after every change with a snapshot of the display.
func (m *Mock) OnChange(fn func(lines []string, backlight Color)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Render writes text at row, col.
func (m *Mock) Render(text string, row, col int) error {
	m.mu.Lock()
	if m.Err != nil {
		m.mu.Unlock()
		return m.Err
	}
	if row < 0 || row >= m.grid.Rows() {
		m.mu.Unlock()
		return fmt.Errorf("row %d out of range", row)
	}
	m.grid.Put(text, row, col)
	m.renders++
	m.mu.Unlock()

	m.notify()
	return nil
}

// Clear blanks the display.
func (m *Mock) Clear() error {
	m.mu.Lock()
	if m.Err != nil {
		m.mu.Unlock()
		return m.Err
	}
	m.grid.Clear()
	m.mu.Unlock()

	m.notify()
	return nil
}

// SetBacklight switches the backlight color.
func (m *Mock) SetBacklight(c Color) error {
	m.mu.Lock()
	if m.Err != nil {
		m.mu.Unlock()
		return m.Err
	}
	m.backlight = c
	m.mu.Unlock()

	m.notify()
	return nil
}

// Lines returns the current content.
func (m *Mock) Lines() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.grid.Lines()
}

// Row returns the current content of row.
func (m *Mock) Row(row int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.grid.Row(row)
}

// Backlight returns the current backlight color.
func (m *Mock) Backlight() Color {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backlight
}

// Renders returns the number of successful Render calls.
func (m *Mock) Renders() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.renders
}

func (m *Mock) notify() {
	m.mu.RLock()
	fn := m.onChange
	lines := m.grid.Lines()
	backlight := m.backlight
	m.mu.RUnlock()

	if fn != nil {
		fn(lines, backlight)
	}
}
