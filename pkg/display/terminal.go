package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// backlightColors maps backlight colors to terminal colors.
var backlightColors = map[Color]lipgloss.Color{
	Off:    lipgloss.Color("#414868"),
	Red:    lipgloss.Color("#f7768e"),
	Green:  lipgloss.Color("#9ece6a"),
	Yellow: lipgloss.Color("#e0af68"),
	Blue:   lipgloss.Color("#7aa2f7"),
	Violet: lipgloss.Color("#bb9af7"),
	Teal:   lipgloss.Color("#7dcfff"),
	White:  lipgloss.Color("#c0caf5"),
}

// Terminal draws the display as a framed box on a terminal. The frame takes the backlight color.
// Changes are buffered until Flush.
type Terminal struct {
	mu        sync.Mutex
	out       io.Writer
	grid      *Grid
	backlight Color
	dirty     bool
	height    int // lines drawn by the previous flush
}

// NewTerminal creates a rows x cols terminal display writing to out.
func NewTerminal(out io.Writer, rows, cols int) *Terminal {
	return &Terminal{out: out, grid: NewGrid(rows, cols), backlight: White, dirty: true}
}

// Render writes text at row, col.
func (t *Terminal) Render(text string, row, col int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if row < 0 || row >= t.grid.Rows() {
		return fmt.Errorf("row %d out of range", row)
	}
	t.grid.Put(text, row, col)
	t.dirty = true
	return nil
}

// Clear blanks the display.
func (t *Terminal) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.grid.Clear()
	t.dirty = true
	return nil
}

// SetBacklight switches the frame color.
func (t *Terminal) SetBacklight(c Color) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.backlight != c {
		t.backlight = c
		t.dirty = true
	}
	return nil
}

// View returns the framed display.
func (t *Terminal) View() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view()
}

func (t *Terminal) view() string {
	color, ok := backlightColors[t.backlight]
	if !ok {
		color = backlightColors[White]
	}
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(color).
		Padding(0, 1)
	status := lipgloss.NewStyle().Faint(true)

	lines := strings.Join(t.grid.Lines(), "\n")
	return lipgloss.JoinVertical(lipgloss.Left,
		panel.Render(lines),
		status.Render("backlight: "+t.backlight.String()),
	)
}

// Flush redraws the display in place when it changed since the previous flush.
func (t *Terminal) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dirty {
		return nil
	}

	var b strings.Builder
	if t.height > 0 {
		// Move back over the previous frame
		fmt.Fprintf(&b, "\x1b[%dA\r", t.height)
	}
	view := t.view()
	b.WriteString(view)
	b.WriteByte('\n')

	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return fmt.Errorf("failed to draw display: %w", err)
	}
	t.height = lipgloss.Height(view)
	t.dirty = false
	return nil
}
