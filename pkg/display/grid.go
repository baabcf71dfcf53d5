package display

// Grid is the character memory of a display.
type Grid struct {
	rows, cols int
	cells      []byte
}

// NewGrid creates a blank grid. Non-positive sizes fall back to 16x2.
func NewGrid(rows, cols int) *Grid {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	g := &Grid{rows: rows, cols: cols, cells: make([]byte, rows*cols)}
	g.Clear()
	return g
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Put writes text at row, col and returns the number of characters that fit. Writes
// outside the grid are dropped.
func (g *Grid) Put(text string, row, col int) int {
	if row < 0 || row >= g.rows || col >= g.cols {
		return 0
	}
	n := 0
	for i := 0; i < len(text); i++ {
		c := col + i
		if c < 0 {
			continue
		}
		if c >= g.cols {
			break
		}
		g.cells[row*g.cols+c] = printable(text[i])
		n++
	}
	return n
}

// Clear blanks all cells.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = ' '
	}
}

// Row returns the content of row.
func (g *Grid) Row(row int) string {
	if row < 0 || row >= g.rows {
		return ""
	}
	return string(g.cells[row*g.cols : (row+1)*g.cols])
}

// Lines returns every row.
func (g *Grid) Lines() []string {
	lines := make([]string, g.rows)
	for r := range lines {
		lines[r] = g.Row(r)
	}
	return lines
}

// printable maps bytes a character LCD cannot show to '?'.
func printable(c byte) byte {
	if c < 0x20 || c > 0x7e {
		return '?'
	}
	return c
}
