package household_test

import (
	"context"
	"testing"

	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/household"
	"codeberg.org/mutker/wattd/internal/logger"
	"codeberg.org/mutker/wattd/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	store.Store
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New().New(store.ErrStorageAccess)
}

func testRooms() []household.Room {
	return []household.Room{
		{Name: "living", Devices: []household.Device{{Name: "TV", Load: 0.4}, {Name: "Lamp", Load: 0.1}}},
		{Name: "garage", Devices: []household.Device{{Name: "EV Charger", Load: 2.5}}},
	}
}

func newHousehold(t *testing.T, s store.Store) *household.Household {
	t.Helper()
	h, err := household.New(testRooms(), 1.5, s, logger.Nop())
	require.NoError(t, err)
	return h
}

func TestReadingIsBaseLoadWhenAllOff(t *testing.T) {
	h := newHousehold(t, store.NewMemory())
	assert.InDelta(t, 1.5, h.Reading(), 1e-9)
	assert.InDelta(t, 1.5, h.BaseLoad(), 1e-9)
}

func TestSetAndToggle(t *testing.T) {
	ctx := context.Background()
	h := newHousehold(t, store.NewMemory())

	require.NoError(t, h.Set(ctx, "living", "TV", true))
	on, err := h.Toggle(ctx, "garage", "EV Charger")
	require.NoError(t, err)
	assert.True(t, on)
	assert.InDelta(t, 1.5+0.4+2.5, h.Reading(), 1e-9)

	on, err = h.Toggle(ctx, "garage", "EV Charger")
	require.NoError(t, err)
	assert.False(t, on)
	assert.InDelta(t, 1.9, h.Reading(), 1e-9)

	totals := h.RoomTotals()
	assert.InDelta(t, 0.4, totals["living"], 1e-9)
	assert.InDelta(t, 0, totals["garage"], 1e-9)
}

func TestRoomsSnapshot(t *testing.T) {
	ctx := context.Background()
	h := newHousehold(t, store.NewMemory())
	require.NoError(t, h.Set(ctx, "living", "Lamp", true))

	rooms := h.Rooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, "living", rooms[0].Name)
	assert.False(t, rooms[0].Devices[0].On)
	assert.True(t, rooms[0].Devices[1].On)
	assert.InDelta(t, 0.1, rooms[0].Total, 1e-9)
	assert.Equal(t, []string{"garage", "living"}, h.RoomNames())
}

func TestUnknownRoomAndDevice(t *testing.T) {
	ctx := context.Background()
	h := newHousehold(t, store.NewMemory())

	err := h.Set(ctx, "attic", "TV", true)
	assert.True(t, errors.Is(err, errors.New().New(household.ErrUnknownRoom)))

	_, err = h.Toggle(ctx, "living", "Toaster")
	assert.Equal(t, household.ErrUnknownDevice, errors.CodeOf(err))
}

func TestStatePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	h := newHousehold(t, s)
	require.NoError(t, h.Set(ctx, "garage", "EV Charger", true))

	raw, found, err := s.Get(ctx, household.StateKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"garage":{"EV Charger":true}}`, raw)

	restored := newHousehold(t, s)
	assert.InDelta(t, 1.5, restored.Reading(), 1e-9)
	restored.Load(ctx)
	assert.InDelta(t, 4.0, restored.Reading(), 1e-9)
}

func TestLoadIgnoresStaleAndCorruptState(t *testing.T) {
	ctx := context.Background()

	s := store.NewMemory()
	require.NoError(t, s.Set(ctx, household.StateKey, `{"attic":{"Heater":true},"living":{"Gone":true,"TV":true}}`))
	h := newHousehold(t, s)
	h.Load(ctx)
	assert.InDelta(t, 1.9, h.Reading(), 1e-9)

	require.NoError(t, s.Set(ctx, household.StateKey, `{not json`))
	h = newHousehold(t, s)
	h.Load(ctx)
	assert.InDelta(t, 1.5, h.Reading(), 1e-9)
}

func TestPersistFailureStillSwitches(t *testing.T) {
	h := newHousehold(t, failingStore{Store: store.NewMemory()})

	err := h.Set(context.Background(), "living", "TV", true)
	assert.Equal(t, household.ErrPersistState, errors.CodeOf(err))
	assert.InDelta(t, 1.9, h.Reading(), 1e-9)
}

func TestNewRejectsInvalidCatalog(t *testing.T) {
	s := store.NewMemory()
	tests := []struct {
		name  string
		rooms []household.Room
		base  float64
	}{
		{"negative base", testRooms(), -1},
		{"empty room name", []household.Room{{Name: ""}}, 0},
		{"duplicate room", []household.Room{{Name: "a"}, {Name: "a"}}, 0},
		{"duplicate device", []household.Room{{Name: "a", Devices: []household.Device{{Name: "x"}, {Name: "x"}}}}, 0},
		{"negative load", []household.Room{{Name: "a", Devices: []household.Device{{Name: "x", Load: -0.1}}}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := household.New(tt.rooms, tt.base, s, logger.Nop())
			assert.Equal(t, household.ErrInvalidRoom, errors.CodeOf(err))
		})
	}
}

func TestDefaultRooms(t *testing.T) {
	rooms := household.DefaultRooms()
	require.Len(t, rooms, 4)

	h, err := household.New(rooms, 0, store.NewMemory(), logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"garage", "kitchen", "laundry", "living"}, h.RoomNames())

	rooms[0].Devices[0].Load = 99
	assert.NotEqual(t, 99.0, household.DefaultRooms()[0].Devices[0].Load)
}

func TestReadingSumsInCatalogOrder(t *testing.T) {
	ctx := context.Background()
	rooms := []household.Room{
		{Name: "a", Devices: []household.Device{{Name: "x", Load: 0.1}, {Name: "y", Load: 0.2}}},
		{Name: "b", Devices: []household.Device{{Name: "z", Load: 0.3}}},
		{Name: "c", Devices: []household.Device{{Name: "w", Load: 0.7}}},
	}
	h, err := household.New(rooms, 0, store.NewMemory(), logger.Nop())
	require.NoError(t, err)
	for _, sw := range [][2]string{{"a", "x"}, {"a", "y"}, {"b", "z"}, {"c", "w"}} {
		require.NoError(t, h.Set(ctx, sw[0], sw[1], true))
	}

	want := 0.0
	for _, load := range []float64{0.1, 0.2, 0.3, 0.7} {
		want += load
	}
	for i := 0; i < 50; i++ {
		assert.Equal(t, want, h.Reading())
	}
}
