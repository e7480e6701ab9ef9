package history

import (
	"context"
	"encoding/json"
	"math"

	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/logger"
	"codeberg.org/mutker/wattd/internal/store"
)

// Key is the store key holding the consumption history
const Key = "@consumptionHistory"

// Repository round-trips a History through a store.Store as a JSON array
type Repository struct {
	store store.Store
	log   logger.Logger
}

func NewRepository(s store.Store, log logger.Logger) *Repository {
	return &Repository{store: s, log: log}
}

// Load returns the stored History. Absent, unreadable or corrupt data
// yields an empty History; the cause is logged and never returned.
func (r *Repository) Load(ctx context.Context, capacity int) *History {
	values, err := r.load(ctx)
	if err != nil {
		r.log.ErrorWithCode(toError(err)).Msg("Starting with empty history")
		return New(capacity)
	}

	h := FromValues(capacity, values)
	if len(values) > h.Len() {
		r.log.Warn().
			Int("stored", len(values)).
			Int("capacity", capacity).
			Msg("Stored history exceeds capacity, keeping newest entries")
	}
	return h
}

func (r *Repository) load(ctx context.Context) ([]float64, error) {
	errFactory := errors.New()

	raw, found, err := r.store.Get(ctx, Key)
	if err != nil {
		return nil, errFactory.Wrap(ErrLoadHistory, err)
	}
	if !found {
		return nil, nil
	}

	var values []float64
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, errFactory.Wrap(ErrCorruptHistory, err)
	}
	for i, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errFactory.WithData(ErrCorruptHistory, struct {
				Index int
				Value float64
			}{
				Index: i,
				Value: v,
			})
		}
	}
	return values, nil
}

// Save overwrites the durable copy with h
func (r *Repository) Save(ctx context.Context, h *History) error {
	return r.SaveValues(ctx, h.Values())
}

// SaveValues overwrites the durable copy with values, oldest first
func (r *Repository) SaveValues(ctx context.Context, values []float64) error {
	errFactory := errors.New()

	if values == nil {
		values = []float64{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return errFactory.Wrap(ErrEncodeHistory, err)
	}
	if err := r.store.Set(ctx, Key, string(raw)); err != nil {
		return errFactory.Wrap(ErrSaveHistory, err)
	}
	return nil
}

func toError(err error) errors.Error {
	var e errors.Error
	if errors.As(err, &e) {
		return e
	}
	return errors.New().Wrap(errors.ErrInternal, err)
}
