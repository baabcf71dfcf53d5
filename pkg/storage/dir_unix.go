//go:build !windows

package storage

import (
	"fmt"
	"math"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// pendingWriter writes to a temporary file that renameio syncs and renames over the target
// on Close, so a power loss leaves either the old or the new file.
type pendingWriter struct {
	*renameio.PendingFile
	logger zerolog.Logger
}

func newReplacingWriter(path string, logger zerolog.Logger) (*pendingWriter, error) {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return nil, err
	}
	return &pendingWriter{PendingFile: pending, logger: logger}, nil
}

func (w *pendingWriter) Close() error {
	if err := w.CloseAtomicallyReplace(); err != nil {
		if cerr := w.Cleanup(); cerr != nil {
			w.logger.Debug().Err(cerr).Msg("cleanup pending file")
		}
		return fmt.Errorf("atomically replace file: %w", err)
	}
	return nil
}

func volumeInfo(root string, info *Info) error {
	var st unix.Statfs_t
	if err := unix.Statfs(root, &st); err != nil {
		return fmt.Errorf("statfs %s: %w", root, err)
	}
	blockSize := uint64(st.Bsize)
	info.BlocksPerCluster = uint32(max(blockSize/BlockSize, 1))
	info.ClusterCount = uint32(min(uint64(st.Blocks), math.MaxUint32))
	return nil
}

// Abort discards the pending file and leaves the target untouched.
func (w *pendingWriter) Abort() error {
	return w.Cleanup()
}
