package store_test

import (
	"context"
	"testing"

	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/logger"
	"codeberg.org/mutker/wattd/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settings struct {
	EnergyLimit  float64 `json:"energyLimit"`
	BillingCycle int     `json:"billCycle"`
}

func defaultSettings() settings { return settings{BillingCycle: 4} }

type failingStore struct {
	store.Store
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New().New(store.ErrStorageAccess)
}

func TestValueDefaults(t *testing.T) {
	ctx := context.Background()
	v := store.NewValue(store.NewMemory(), "@settings", defaultSettings, logger.Nop())

	assert.Equal(t, defaultSettings(), v.Get())
	assert.Equal(t, defaultSettings(), v.Load(ctx))
}

func TestValueWriteThrough(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	v := store.NewValue(s, "@settings", defaultSettings, logger.Nop())

	got, err := v.Update(ctx, func(cur settings) settings {
		cur.EnergyLimit = 120
		return cur
	})
	require.NoError(t, err)
	assert.Equal(t, settings{EnergyLimit: 120, BillingCycle: 4}, got)

	raw, found, err := s.Get(ctx, "@settings")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"energyLimit":120,"billCycle":4}`, raw)

	reloaded := store.NewValue(s, "@settings", defaultSettings, logger.Nop())
	assert.Equal(t, got, reloaded.Load(ctx))
}

func TestValueCorruptFallsBack(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Set(ctx, "@settings", "{not json"))

	v := store.NewValue(s, "@settings", defaultSettings, logger.Nop())
	assert.Equal(t, defaultSettings(), v.Load(ctx))
}

func TestValueKeepsMemoryOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	v := store.NewValue[settings](failingStore{store.NewMemory()}, "@settings", defaultSettings, logger.Nop())

	got, err := v.Update(ctx, func(cur settings) settings {
		cur.BillingCycle = 2
		return cur
	})
	require.Error(t, err)
	assert.Equal(t, 2, got.BillingCycle)
	assert.Equal(t, 2, v.Get().BillingCycle)
}

func TestValueReset(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	v := store.NewValue(s, "@settings", defaultSettings, logger.Nop())

	_, err := v.Update(ctx, func(cur settings) settings { cur.EnergyLimit = 1; return cur })
	require.NoError(t, err)
	require.NoError(t, v.Reset(ctx))

	assert.Equal(t, defaultSettings(), v.Get())
	_, found, err := s.Get(ctx, "@settings")
	require.NoError(t, err)
	assert.False(t, found)
}
