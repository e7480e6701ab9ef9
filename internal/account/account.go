// Package account holds the household profile and the energy budget, and
// prices the consumption history against them.
package account

import (
	"context"
	"math"
	"strings"
	"time"

	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/logger"
	"codeberg.org/mutker/wattd/internal/store"
)

const (
	ProfileKey  = "@profileData"
	BudgetKey   = "@energyBudget"
	FirstUseKey = "@isFirstUse"

	// DefaultPrice is the rate in $/kWh used when the profile sets none
	DefaultPrice = 0.25
)

type Profile struct {
	Rooms       int                 `json:"rooms"`
	Occupants   int                 `json:"occupants"`
	RoomNames   []string            `json:"roomNames"`
	Devices     map[string][]string `json:"devices"`
	EnergyPrice float64             `json:"energyPrice"`
}

// Budget is a spending limit in dollars for every billing cycle
type Budget struct {
	Limit      float64 `json:"limit"`
	CycleWeeks int     `json:"cycleWeeks"`
}

// IsSet reports whether a budget has been configured
func (b Budget) IsSet() bool {
	return b.Limit > 0 && b.CycleWeeks > 0
}

type Account struct {
	store        store.Store
	profile      *store.Value[Profile]
	budget       *store.Value[Budget]
	defaultPrice float64
	period       time.Duration
	log          logger.Logger
}

// New binds the profile and budget to s. defaultPrice applies when the
// profile has no energy price; period is the length of one history entry.
func New(s store.Store, defaultPrice float64, period time.Duration, log logger.Logger) (*Account, error) {
	if defaultPrice < 0 || math.IsNaN(defaultPrice) || math.IsInf(defaultPrice, 0) || period <= 0 {
		return nil, errors.New().WithData(ErrInvalidOptions, struct {
			DefaultPrice float64
			Period       time.Duration
		}{
			DefaultPrice: defaultPrice,
			Period:       period,
		})
	}

	return &Account{
		store:        s,
		profile:      store.NewValue(s, ProfileKey, emptyProfile, log),
		budget:       store.NewValue(s, BudgetKey, func() Budget { return Budget{} }, log),
		defaultPrice: defaultPrice,
		period:       period,
		log:          log,
	}, nil
}

// Load restores the profile and budget. On the first run against a store
// any leftover budget is cleared and the store is marked as used.
func (a *Account) Load(ctx context.Context) {
	_, used, err := a.store.Get(ctx, FirstUseKey)
	switch {
	case err != nil:
		a.log.Warn().Err(err).Msg("Failed to read first-use marker")
	case !used:
		if err := a.budget.Reset(ctx); err != nil {
			a.log.Warn().Err(err).Msg("Failed to clear budget on first use")
		}
		if err := a.store.Set(ctx, FirstUseKey, "false"); err != nil {
			a.log.Warn().Err(err).Msg("Failed to record first use")
		}
		a.log.Info().Msg("First use, budget cleared")
	}

	p := a.profile.Load(ctx)
	b := a.budget.Load(ctx)

	a.log.Debug().
		Int("occupants", p.Occupants).
		Int("room_names", len(p.RoomNames)).
		Bool("budget_set", b.IsSet()).
		Msg("Restored account")
}

// Profile returns a copy of the current profile
func (a *Account) Profile() Profile {
	return a.profile.Get().clone()
}

// SetProfile validates and stores p. Empty room names are dropped. A
// persist failure is returned but the new profile still takes effect.
func (a *Account) SetProfile(ctx context.Context, p Profile) (Profile, error) {
	errFactory := errors.New()

	if err := p.validate(); err != nil {
		return a.Profile(), err
	}
	next := p.normalize()

	_, err := a.profile.Update(ctx, func(Profile) Profile { return next })
	if err != nil {
		return next.clone(), errFactory.Wrap(ErrPersist, err)
	}
	return next.clone(), nil
}

func (a *Account) Budget() Budget {
	return a.budget.Get()
}

// SetBudget validates and stores b. A persist failure is returned but the
// budget still takes effect.
func (a *Account) SetBudget(ctx context.Context, b Budget) (Budget, error) {
	errFactory := errors.New()

	if b.Limit <= 0 || math.IsNaN(b.Limit) || math.IsInf(b.Limit, 0) || b.CycleWeeks < 1 {
		return a.Budget(), errFactory.WithData(ErrInvalidBudget, b)
	}

	_, err := a.budget.Update(ctx, func(Budget) Budget { return b })
	if err != nil {
		return b, errFactory.Wrap(ErrPersist, err)
	}
	return b, nil
}

// ClearBudget removes the stored budget
func (a *Account) ClearBudget(ctx context.Context) error {
	if err := a.budget.Reset(ctx); err != nil {
		return errors.New().Wrap(ErrPersist, err)
	}
	return nil
}

// Price returns the effective rate in $/kWh
func (a *Account) Price() float64 {
	if p := a.profile.Get().EnergyPrice; p > 0 {
		return p
	}
	return a.defaultPrice
}

// Spending prices values, a history of period averages in kW
func (a *Account) Spending(values []float64) Spending {
	return Summarize(values, a.period, a.Price(), a.Budget())
}

func emptyProfile() Profile {
	return Profile{RoomNames: []string{}, Devices: map[string][]string{}}
}

func (p Profile) validate() error {
	errFactory := errors.New()

	invalid := func(field string, value any) error {
		return errFactory.WithData(ErrInvalidProfile, struct {
			Field string
			Value any
		}{
			Field: field,
			Value: value,
		})
	}

	if p.Rooms < 0 {
		return invalid("rooms", p.Rooms)
	}
	if p.Occupants < 0 {
		return invalid("occupants", p.Occupants)
	}
	if p.EnergyPrice < 0 || math.IsNaN(p.EnergyPrice) || math.IsInf(p.EnergyPrice, 0) {
		return invalid("energyPrice", p.EnergyPrice)
	}
	for area := range p.Devices {
		if strings.TrimSpace(area) == "" {
			return invalid("devices", area)
		}
	}
	return nil
}

func (p Profile) normalize() Profile {
	out := Profile{
		Rooms:       p.Rooms,
		Occupants:   p.Occupants,
		EnergyPrice: p.EnergyPrice,
		RoomNames:   make([]string, 0, len(p.RoomNames)),
		Devices:     make(map[string][]string, len(p.Devices)),
	}
	for _, name := range p.RoomNames {
		if name = strings.TrimSpace(name); name != "" {
			out.RoomNames = append(out.RoomNames, name)
		}
	}
	for area, devices := range p.Devices {
		out.Devices[area] = append([]string{}, devices...)
	}
	return out
}

func (p Profile) clone() Profile {
	out := p
	out.RoomNames = append([]string{}, p.RoomNames...)
	out.Devices = make(map[string][]string, len(p.Devices))
	for area, devices := range p.Devices {
		out.Devices[area] = append([]string{}, devices...)
	}
	return out
}
