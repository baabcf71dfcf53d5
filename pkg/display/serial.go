package display

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"go.bug.st/serial"
)

// Serial LCD backpack protocol. Every command is one line.
const (
	CmdText      = "TXT" // TXT,<row>,<col>,<text>
	CmdClear     = "CLS" // CLS
	CmdBacklight = "BKL" // BKL,<color>

	CommandTerminator = '\n'

	// DefaultBaudRate is the baud rate of the LCD backpack.
	DefaultBaudRate = 9600
)

// Serial drives a character LCD behind a serial backpack.
type Serial struct {
	mu   sync.Mutex
	conn io.WriteCloser
	rows int
	cols int
	buf  []byte
}

// OpenSerial opens port and returns a display of rows x cols characters.
func OpenSerial(port string, baudRate, rows, cols int) (*Serial, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	conn, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open display port %s: %w", port, err)
	}
	return NewSerial(conn, rows, cols), nil
}

// NewSerial wraps an open connection.
func NewSerial(conn io.WriteCloser, rows, cols int) *Serial {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	return &Serial{conn: conn, rows: rows, cols: cols, buf: make([]byte, 0, 64)}
}

// Render sends text for row, col, clipped to the row width.
func (s *Serial) Render(text string, row, col int) error {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		return fmt.Errorf("position %d,%d out of range", row, col)
	}
	if n := s.cols - col; len(text) > n {
		text = text[:n]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := append(s.buf[:0], CmdText...)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(row), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(col), 10)
	b = append(b, ',')
	for i := 0; i < len(text); i++ {
		b = append(b, printable(text[i]))
	}
	return s.send(b)
}

// Clear blanks the display.
func (s *Serial) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send(append(s.buf[:0], CmdClear...))
}

// SetBacklight switches the backlight color.
func (s *Serial) SetBacklight(c Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := append(s.buf[:0], CmdBacklight...)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(c), 10)
	return s.send(b)
}

// Close closes the connection.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

func (s *Serial) send(b []byte) error {
	b = append(b, CommandTerminator)
	s.buf = b[:0]
	if _, err := s.conn.Write(b); err != nil {
		return fmt.Errorf("failed to send display command: %w", err)
	}
	return nil
}
