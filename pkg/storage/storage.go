// Package storage abstracts the removable medium the settings file lives on.
package storage

import (
	"errors"
	"io"
)

// ErrUnavailable is returned when the medium is missing, unformatted or a file cannot be
// opened or created on it.
var ErrUnavailable = errors.New("storage unavailable")

// BlockSize is the size of an SD card block in bytes.
const BlockSize = 512

// Medium is a byte-stream store (SD card, host directory, memory).
type Medium interface {
	// Open opens name for reading.
	Open(name string) (io.ReadCloser, error)
	// Create opens name for writing. Written content replaces any existing file once the
	// returned writer is closed.
	Create(name string) (io.WriteCloser, error)
	// Remove deletes name. Removing a missing file is not an error.
	Remove(name string) error
	// Info describes the medium.
	Info() (Info, error)
}

// CardType identifies the card generation reported by the medium.
type CardType int

const (
	CardUnknown CardType = iota
	CardSD1
	CardSD2
	CardSDHC
)

func (c CardType) String() string {
	switch c {
	case CardSD1:
		return "SD1"
	case CardSD2:
		return "SD2"
	case CardSDHC:
		return "SDHC"
	default:
		return "Unknown"
	}
}

// FileInfo describes a single file on the medium.
type FileInfo struct {
	Name string
	Size int64
}

// Info describes a medium and its first volume.
type Info struct {
	Present          bool
	Card             CardType
	FATType          int // 12, 16, 32 or 0 when not FAT
	BlocksPerCluster uint32
	ClusterCount     uint32
	Files            []FileInfo
}

// SizeBytes returns the volume size.
func (i Info) SizeBytes() uint64 {
	return uint64(i.BlocksPerCluster) * uint64(i.ClusterCount) * BlockSize
}

// Ensure implementations satisfy Medium.
var (
	_ Medium = (*Dir)(nil)
	_ Medium = (*Mem)(nil)
)

// Aborter is implemented by writers returned from Create that can discard what was written
// instead of committing it.
type Aborter interface {
	Abort() error
}
