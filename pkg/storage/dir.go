package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Dir is a medium backed by a host directory, typically the mount point of the card.
type Dir struct {
	root   string
	logger zerolog.Logger
}

// NewDir creates a medium rooted at root.
func NewDir(root string, logger zerolog.Logger) *Dir {
	return &Dir{root: root, logger: logger}
}

// Root returns the directory the medium is rooted at.
func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) path(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(name))
}

// Open opens name for reading.
func (d *Dir) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(d.path(name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", name, err, ErrUnavailable)
	}
	return f, nil
}

// Create returns a writer that atomically replaces name when closed.
func (d *Dir) Create(name string) (io.WriteCloser, error) {
	target := d.path(name)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("create directory for %s: %v: %w", name, err, ErrUnavailable)
	}
	w, err := newReplacingWriter(target, d.logger)
	if err != nil {
		return nil, fmt.Errorf("create %s: %v: %w", name, err, ErrUnavailable)
	}
	return w, nil
}

// Remove deletes name.
func (d *Dir) Remove(name string) error {
	err := os.Remove(d.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Info describes the directory's volume and lists its files.
func (d *Dir) Info() (Info, error) {
	st, err := os.Stat(d.root)
	if err != nil || !st.IsDir() {
		return Info{}, fmt.Errorf("stat %s: %w", d.root, ErrUnavailable)
	}

	info := Info{Present: true, Card: CardUnknown}
	if err := volumeInfo(d.root, &info); err != nil {
		d.logger.Debug().Err(err).Str("root", d.root).Msg("volume size unavailable")
	}

	err = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		fi, err := entry.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		info.Files = append(info.Files, FileInfo{Name: filepath.ToSlash(rel), Size: fi.Size()})
		return nil
	})
	if err != nil {
		return info, fmt.Errorf("list %s: %w", d.root, err)
	}
	return info, nil
}

// Watch signals on the returned channel whenever name is written, replaced or removed by
// someone else. The channel is closed when ctx is done.
func (d *Dir) Watch(ctx context.Context, name string) (<-chan struct{}, error) {
	target := d.path(name)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors and renameio replace the file, so the directory is watched.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				d.logger.Warn().Err(err).Str("file", name).Msg("watch error")
			}
		}
	}()

	return out, nil
}
