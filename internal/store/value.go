package store

import (
	"context"
	"encoding/json"
	"sync"

	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/logger"
)

// Value is one slice of long-lived state persisted as JSON under a fixed
// key. Every Update writes through to the Store.
type Value[T any] struct {
	store Store
	key   string
	def   func() T
	log   logger.Logger

	mu  sync.Mutex
	cur T
}

// NewValue binds key in s. def builds the value used when nothing valid is
// stored.
func NewValue[T any](s Store, key string, def func() T, log logger.Logger) *Value[T] {
	return &Value[T]{
		store: s,
		key:   key,
		def:   def,
		log:   log,
		cur:   def(),
	}
}

// Load replaces the in-memory value with the stored one. Missing or
// undecodable data falls back to the default and is not an error.
func (v *Value[T]) Load(ctx context.Context) T {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cur = v.def()

	raw, found, err := v.store.Get(ctx, v.key)
	if err != nil {
		v.log.Warn().Err(err).Str("key", v.key).Msg("Failed to load value, using default")
		return v.cur
	}
	if !found {
		return v.cur
	}

	var decoded T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		v.log.Warn().Err(err).Str("key", v.key).Msg("Discarding corrupt stored value")
		return v.cur
	}

	v.cur = decoded
	return v.cur
}

// Get returns the current value. Reference types must not be mutated by
// the caller; use Update.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Update applies fn and persists the result. The in-memory value is kept
// even if persisting fails; the error is returned for logging.
func (v *Value[T]) Update(ctx context.Context, fn func(T) T) (T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cur = fn(v.cur)

	raw, err := json.Marshal(v.cur)
	if err != nil {
		return v.cur, errors.New().Wrap(ErrEncodeValue, err)
	}
	if err := v.store.Set(ctx, v.key, string(raw)); err != nil {
		return v.cur, err
	}
	return v.cur, nil
}

// Reset removes the stored value and restores the default
func (v *Value[T]) Reset(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cur = v.def()
	return v.store.Remove(ctx, v.key)
}
