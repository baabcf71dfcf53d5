//go:build windows

package storage

import (
	"bytes"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// bufferedWriter collects the content and writes it in one go on Close. renameio does not
// support Windows.
type bufferedWriter struct {
	path string
	buf  bytes.Buffer
}

func newReplacingWriter(path string, _ zerolog.Logger) (*bufferedWriter, error) {
	return &bufferedWriter{path: path}, nil
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *bufferedWriter) Close() error {
	if err := os.WriteFile(w.path, w.buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func volumeInfo(string, *Info) error {
	return fmt.Errorf("volume size not supported on windows")
}

// Abort drops the buffered content.
func (w *bufferedWriter) Abort() error {
	w.buf.Reset()
	return nil
}
