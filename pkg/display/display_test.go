package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_Put(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		row     int
		col     int
		wantN   int
		wantRow string
	}{
		{name: "start of row", text: "Shot #01", row: 0, col: 0, wantN: 8, wantRow: "Shot #01        "},
		{name: "clipped at end", text: "01:02:03.456", row: 0, col: 10, wantN: 6, wantRow: "          01:02:"},
		{name: "negative column", text: "abcdef", row: 0, col: -3, wantN: 3, wantRow: "def             "},
		{name: "row out of range", text: "x", row: 2, col: 0, wantN: 0, wantRow: "                "},
		{name: "unprintable", text: "a\nb", row: 0, col: 0, wantN: 3, wantRow: "a?b             "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(2, 16)
			n := g.Put(tt.text, tt.row, tt.col)
			assert.Equal(t, tt.wantN, n)
			assert.Equal(t, tt.wantRow, g.Row(0))
		})
	}
}

func TestGrid_Defaults(t *testing.T) {
	g := NewGrid(0, -1)
	assert.Equal(t, DefaultRows, g.Rows())
	assert.Equal(t, DefaultCols, g.Cols())
	assert.Len(t, g.Lines(), DefaultRows)
	assert.Equal(t, "", g.Row(5))
}

func TestPrintTime(t *testing.T) {
	m := NewMock(2, 16)
	require.NoError(t, PrintTime(m, 1, 4, 3723456, 12))
	assert.Equal(t, "    01:02:03.456", m.Row(1))

	require.NoError(t, PrintTime(m, 0, 0, 90000, 6))
	assert.Equal(t, "30.000          ", m.Row(0))
}

func TestPrintNumber(t *testing.T) {
	m := NewMock(2, 16)
	require.NoError(t, PrintNumber(m, 0, 6, 7, 2))
	assert.Equal(t, "      07        ", m.Row(0))
}

func TestMock(t *testing.T) {
	m := NewMock(2, 16)
	assert.Equal(t, White, m.Backlight())

	var calls int
	var last []string
	m.OnChange(func(lines []string, backlight Color) {
		calls++
		last = lines
	})

	require.NoError(t, m.Render("READY", 0, 0))
	require.NoError(t, m.SetBacklight(Green))
	assert.Equal(t, Green, m.Backlight())
	assert.Equal(t, 2, calls)
	assert.Equal(t, "READY           ", last[0])
	assert.Equal(t, 1, m.Renders())

	assert.Error(t, m.Render("x", 3, 0))

	require.NoError(t, m.Clear())
	assert.Equal(t, []string{"                ", "                "}, m.Lines())

	m.Err = errors.New("bus error")
	assert.Error(t, m.Render("x", 0, 0))
	assert.Error(t, m.Clear())
	assert.Error(t, m.SetBacklight(Red))
}

func TestColor_String(t *testing.T) {
	assert.Equal(t, "teal", Teal.String())
	assert.Equal(t, "violet", Violet.String())
	assert.Equal(t, "unknown", Color(9).String())
}

type bufConn struct {
	bytes.Buffer
	closed bool
	err    error
}

func (c *bufConn) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	return c.Buffer.Write(p)
}

func (c *bufConn) Close() error {
	c.closed = true
	return nil
}

func TestSerial_Commands(t *testing.T) {
	conn := &bufConn{}
	s := NewSerial(conn, 2, 16)

	require.NoError(t, s.Clear())
	require.NoError(t, s.SetBacklight(Teal))
	require.NoError(t, PrintTime(s, 1, 4, 3723456, 12))
	require.NoError(t, s.Render("Shot #01 split 00.250", 0, 0))

	want := "CLS\n" +
		"BKL,6\n" +
		"TXT,1,4,01:02:03.456\n" +
		"TXT,0,0,Shot #01 split 0\n"
	assert.Equal(t, want, conn.String())

	assert.Error(t, s.Render("x", 2, 0))
	assert.Error(t, s.Render("x", 0, 16))

	require.NoError(t, s.Close())
	assert.True(t, conn.closed)
}

func TestSerial_WriteError(t *testing.T) {
	conn := &bufConn{err: errors.New("unplugged")}
	s := NewSerial(conn, 0, 0)
	assert.Error(t, s.Render("x", 0, 0))
	assert.Error(t, s.Clear())
}

func TestTee(t *testing.T) {
	a := NewMock(2, 16)
	b := NewMock(2, 16)
	b.Err = errors.New("unplugged")
	tee := Tee{a, b}

	err := tee.Render("READY", 1, 0)
	assert.ErrorIs(t, err, b.Err)
	assert.Equal(t, "READY           ", a.Row(1))

	assert.Error(t, tee.SetBacklight(Violet))
	assert.Equal(t, Violet, a.Backlight())

	b.Err = nil
	require.NoError(t, tee.Clear())
	require.NoError(t, tee.Render("x", 0, 15))
	assert.Equal(t, a.Lines(), b.Lines())
}

func TestTerminal(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out, 2, 16)

	require.NoError(t, term.Render("READY", 1, 0))
	require.NoError(t, term.SetBacklight(Green))
	assert.Error(t, term.Render("x", 2, 0))

	view := term.View()
	assert.Contains(t, view, "READY           ")
	assert.Contains(t, view, "backlight: green")

	require.NoError(t, term.Flush())
	first := out.String()
	assert.Contains(t, first, "READY")
	assert.NotContains(t, first, "A\r", "first frame does not move the cursor")

	require.NoError(t, term.Flush())
	assert.Equal(t, first, out.String(), "unchanged display is not redrawn")

	require.NoError(t, term.SetBacklight(Green))
	require.NoError(t, term.Flush())
	assert.Equal(t, first, out.String(), "same backlight is not a change")

	require.NoError(t, term.Clear())
	require.NoError(t, term.Flush())
	assert.Contains(t, strings.TrimPrefix(out.String(), first), "\x1b[5A")
}
