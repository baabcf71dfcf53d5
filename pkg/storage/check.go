package storage

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Check logs a diagnostic report of the medium: presence, card type, volume type and size,
// and the files it holds. It returns the Info for callers that want to show it elsewhere.
func Check(m Medium, logger zerolog.Logger) (Info, error) {
	logger.Info().Msg("initializing card")

	info, err := m.Info()
	if err != nil {
		logger.Error().Err(err).Msg("card initialization failed, is a card inserted?")
		return info, err
	}
	if !info.Present {
		logger.Error().Msg("no card present")
		return info, fmt.Errorf("no card: %w", ErrUnavailable)
	}

	logger.Info().Stringer("card_type", info.Card).Msg("card present")
	if info.FATType != 0 {
		logger.Info().Int("fat_type", info.FATType).Msg("volume type")
	} else {
		logger.Warn().Msg("could not find FAT16/FAT32 partition")
	}

	size := info.SizeBytes()
	logger.Info().
		Uint64("bytes", size).
		Uint64("kbytes", size/1024).
		Uint64("mbytes", size/1024/1024).
		Msg("volume size")

	for _, f := range info.Files {
		logger.Info().Str("name", f.Name).Int64("size", f.Size).Msg("file")
	}

	return info, nil
}
