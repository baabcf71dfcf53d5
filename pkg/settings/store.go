package settings

import (
	"context"
	"fmt"
	"io"

	"github.com/itohio/goshot/pkg/storage"
	"github.com/rs/zerolog"
)

// Store loads and saves Settings on a medium.
type Store struct {
	medium storage.Medium
	path   string
	logger zerolog.Logger
	opts   []Option
}

// NewStore creates a store for the file at path on medium. Empty path means DefaultPath.
func NewStore(medium storage.Medium, path string, logger zerolog.Logger, opts ...Option) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{
		medium: medium,
		path:   path,
		logger: logger,
		opts:   append([]Option{WithLogger(logger)}, opts...),
	}
}

// Path returns the settings file path on the medium.
func (st *Store) Path() string {
	return st.path
}

// Load applies the settings file to s. When the medium or the file is unavailable the
// error wraps storage.ErrUnavailable and s is untouched, so the caller keeps its defaults.
func (st *Store) Load(ctx context.Context, s *Settings) (Report, error) {
	f, err := st.medium.Open(st.path)
	if err != nil {
		st.logger.Error().Err(err).Str("path", st.path).Msg("error opening settings")
		return Report{}, fmt.Errorf("failed to open settings: %w", err)
	}
	defer f.Close()

	report, err := Decode(ctx, f, s, st.opts...)
	if err != nil {
		return report, fmt.Errorf("failed to load %s: %w", st.path, err)
	}
	st.logger.Info().
		Str("path", st.path).
		Int("applied", report.Applied).
		Int("warnings", len(report.Warnings)).
		Msg("settings loaded")
	return report, nil
}

// Save replaces the settings file with s.
func (st *Store) Save(ctx context.Context, s Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w, err := st.medium.Create(st.path)
	if err != nil {
		st.logger.Error().Err(err).Str("path", st.path).Msg("error creating settings")
		return fmt.Errorf("failed to create settings: %w", err)
	}

	if err := Encode(w, s); err != nil {
		st.discard(w)
		st.logger.Error().Err(err).Str("path", st.path).Msg("error writing settings")
		return fmt.Errorf("failed to save %s: %v: %w", st.path, err, storage.ErrUnavailable)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to save %s: %v: %w", st.path, err, storage.ErrUnavailable)
	}

	st.logger.Info().Str("path", st.path).Msg("settings saved")
	return nil
}

// discard releases a failed write. Media that cannot abort are only closed; whatever
// they committed is left for the next Save to replace.
func (st *Store) discard(w io.WriteCloser) {
	if a, ok := w.(storage.Aborter); ok {
		if err := a.Abort(); err != nil {
			st.logger.Debug().Err(err).Str("path", st.path).Msg("error aborting settings write")
		}
		return
	}
	if err := w.Close(); err != nil {
		st.logger.Debug().Err(err).Str("path", st.path).Msg("error closing settings after failed write")
	}
}
