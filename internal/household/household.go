// Package household models rooms of switchable devices and the
// instantaneous consumption they add up to.
package household

import (
	"context"
	"math"
	"sort"

	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/logger"
	"codeberg.org/mutker/wattd/internal/store"
)

// StateKey is the store key holding device switch state
const StateKey = "@runningDevices"

type Device struct {
	Name string  `json:"name"`
	Load float64 `json:"load"`
}

type Room struct {
	Name    string   `json:"name"`
	Devices []Device `json:"devices"`
}

// DeviceState is a device together with its switch position
type DeviceState struct {
	Device
	On bool `json:"on"`
}

// RoomState is a room snapshot with the load of its switched-on devices
type RoomState struct {
	Name    string        `json:"name"`
	Devices []DeviceState `json:"devices"`
	Total   float64       `json:"total"`
}

// switches maps room name to device name to switch position
type switches map[string]map[string]bool

// Household totals the load of switched-on devices across rooms. Switch
// positions persist in the store and are written through on every change.
type Household struct {
	rooms    []Room
	index    map[string]map[string]float64
	baseLoad float64
	state    *store.Value[switches]
	log      logger.Logger
}

// New builds a Household over rooms; baseLoad is added to every reading.
// Rooms and device names must be unique and loads non-negative.
func New(rooms []Room, baseLoad float64, s store.Store, log logger.Logger) (*Household, error) {
	errFactory := errors.New()

	if baseLoad < 0 || math.IsNaN(baseLoad) {
		return nil, errFactory.WithData(ErrInvalidRoom, struct {
			Field string
			Value float64
		}{
			Field: "base_load",
			Value: baseLoad,
		})
	}

	index := make(map[string]map[string]float64, len(rooms))
	for _, r := range rooms {
		if r.Name == "" {
			return nil, errFactory.WithMessage(ErrInvalidRoom, "room name is empty")
		}
		if _, dup := index[r.Name]; dup {
			return nil, errFactory.WithData(ErrInvalidRoom, r.Name)
		}
		devices := make(map[string]float64, len(r.Devices))
		for _, d := range r.Devices {
			if _, dup := devices[d.Name]; dup || d.Name == "" || d.Load < 0 {
				return nil, errFactory.WithData(ErrInvalidRoom, struct {
					Room   string
					Device string
				}{
					Room:   r.Name,
					Device: d.Name,
				})
			}
			devices[d.Name] = d.Load
		}
		index[r.Name] = devices
	}

	return &Household{
		rooms:    rooms,
		index:    index,
		baseLoad: baseLoad,
		state:    store.NewValue(s, StateKey, func() switches { return switches{} }, log),
		log:      log,
	}, nil
}

// Load restores switch positions. Entries for rooms or devices that no
// longer exist are ignored.
func (h *Household) Load(ctx context.Context) {
	loaded := h.state.Load(ctx)

	on := 0
	for room, devices := range loaded {
		for device, v := range devices {
			if _, ok := h.index[room][device]; ok && v {
				on++
			}
		}
	}

	h.log.Debug().Int("switched_on", on).Msg("Restored device state")
}

// Reading returns the current instantaneous consumption: the base load
// plus every switched-on device, summed in catalog order so equal states
// always yield the same float.
func (h *Household) Reading() float64 {
	sw := h.state.Get()

	total := h.baseLoad
	for _, r := range h.rooms {
		for _, d := range r.Devices {
			if sw[r.Name][d.Name] {
				total += d.Load
			}
		}
	}
	return total
}

// BaseLoad returns the constant load included in every reading
func (h *Household) BaseLoad() float64 {
	return h.baseLoad
}

// Set switches a device on or off and persists the new state. A persist
// failure is returned but the switch still takes effect.
func (h *Household) Set(ctx context.Context, room, device string, on bool) error {
	if err := h.lookup(room, device); err != nil {
		return err
	}

	_, err := h.state.Update(ctx, func(cur switches) switches {
		next := cur.clone()
		if next[room] == nil {
			next[room] = make(map[string]bool)
		}
		next[room][device] = on
		return next
	})
	if err != nil {
		return errors.New().Wrap(ErrPersistState, err)
	}
	return nil
}

// Toggle flips a device and returns its new position
func (h *Household) Toggle(ctx context.Context, room, device string) (bool, error) {
	if err := h.lookup(room, device); err != nil {
		return false, err
	}

	var on bool
	_, err := h.state.Update(ctx, func(cur switches) switches {
		next := cur.clone()
		if next[room] == nil {
			next[room] = make(map[string]bool)
		}
		on = !next[room][device]
		next[room][device] = on
		return next
	})
	if err != nil {
		return on, errors.New().Wrap(ErrPersistState, err)
	}
	return on, nil
}

// Rooms returns every room in catalog order with its current total
func (h *Household) Rooms() []RoomState {
	sw := h.state.Get()

	out := make([]RoomState, 0, len(h.rooms))
	for _, r := range h.rooms {
		rs := RoomState{Name: r.Name, Devices: make([]DeviceState, 0, len(r.Devices))}
		for _, d := range r.Devices {
			on := sw[r.Name][d.Name]
			rs.Devices = append(rs.Devices, DeviceState{Device: d, On: on})
			if on {
				rs.Total += d.Load
			}
		}
		out = append(out, rs)
	}
	return out
}

// RoomTotals returns the switched-on load per room
func (h *Household) RoomTotals() map[string]float64 {
	totals := make(map[string]float64, len(h.rooms))
	for _, r := range h.Rooms() {
		totals[r.Name] = r.Total
	}
	return totals
}

// RoomNames returns the room names sorted alphabetically
func (h *Household) RoomNames() []string {
	names := make([]string, 0, len(h.index))
	for name := range h.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Household) lookup(room, device string) error {
	errFactory := errors.New()

	devices, ok := h.index[room]
	if !ok {
		return errFactory.WithData(ErrUnknownRoom, room)
	}
	if _, ok := devices[device]; !ok {
		return errFactory.WithData(ErrUnknownDevice, struct {
			Room   string
			Device string
		}{
			Room:   room,
			Device: device,
		})
	}
	return nil
}

func (s switches) clone() switches {
	out := make(switches, len(s))
	for room, devices := range s {
		m := make(map[string]bool, len(devices))
		for k, v := range devices {
			m[k] = v
		}
		out[room] = m
	}
	return out
}
