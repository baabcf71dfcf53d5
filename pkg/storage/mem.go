package storage

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Mem is an in-memory medium with SD card semantics: Create removes the old file first and
// the new content only appears on Close, so a failure in between loses the file.
type Mem struct {
	mu      sync.RWMutex
	files   map[string][]byte
	present bool
	card    CardType
	info    Info

	// FailOpen makes every Open and Create fail, as a card with a broken file system would.
	FailOpen bool
}

// NewMem creates an inserted, empty SDHC medium of the given size in blocks.
func NewMem(blocks uint32) *Mem {
	return &Mem{
		files:   make(map[string][]byte),
		present: true,
		card:    CardSDHC,
		info: Info{
			FATType:          32,
			BlocksPerCluster: 8,
			ClusterCount:     blocks / 8,
		},
	}
}

// SetPresent simulates inserting or ejecting the card.
func (m *Mem) SetPresent(present bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.present = present
}

// WriteFile stores data directly under name.
func (m *Mem) WriteFile(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = bytes.Clone(data)
}

// ReadFile returns a copy of name's content.
func (m *Mem) ReadFile(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[name]
	return bytes.Clone(data), ok
}

// Open opens name for reading.
func (m *Mem) Open(name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.usable(); err != nil {
		return nil, err
	}
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("open %s: file not found: %w", name, ErrUnavailable)
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(data))), nil
}

// Create removes name and returns a writer that stores it on Close.
func (m *Mem) Create(name string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable(); err != nil {
		return nil, err
	}
	delete(m.files, name)
	return &memFile{mem: m, name: name}, nil
}

// Remove deletes name.
func (m *Mem) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.present {
		return fmt.Errorf("remove %s: no card: %w", name, ErrUnavailable)
	}
	delete(m.files, name)
	return nil
}

// Info describes the simulated card.
func (m *Mem) Info() (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.present {
		return Info{}, fmt.Errorf("no card: %w", ErrUnavailable)
	}
	info := m.info
	info.Present = true
	info.Card = m.card
	info.Files = make([]FileInfo, 0, len(m.files))
	for name, data := range m.files {
		info.Files = append(info.Files, FileInfo{Name: name, Size: int64(len(data))})
	}
	sort.Slice(info.Files, func(i, j int) bool { return info.Files[i].Name < info.Files[j].Name })
	return info, nil
}

func (m *Mem) usable() error {
	if !m.present {
		return fmt.Errorf("no card: %w", ErrUnavailable)
	}
	if m.FailOpen {
		return fmt.Errorf("file system error: %w", ErrUnavailable)
	}
	return nil
}

type memFile struct {
	mem    *Mem
	name   string
	buf    bytes.Buffer
	closed bool
}

func (f *memFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, fmt.Errorf("write %s: file closed", f.name)
	}
	return f.buf.Write(p)
}

// Abort drops the written content. The old file is already gone.
func (f *memFile) Abort() error {
	f.closed = true
	return nil
}

func (f *memFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.mem.WriteFile(f.name, f.buf.Bytes())
	return nil
}
