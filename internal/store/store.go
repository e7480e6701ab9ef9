package store

import (
	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/logger"
)

// Open returns the Store selected by cfg.Driver
func Open(cfg Config, log logger.Logger) (Store, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if cfg.Driver == DriverMemory {
		log.Warn().Msg("Using in-memory store, state will not survive restarts")
		return NewMemory(), nil
	}

	return NewSQLite(cfg, log)
}
