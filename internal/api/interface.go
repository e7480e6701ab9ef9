package api

import (
	"context"

	"codeberg.org/mutker/wattd/internal/account"
	"codeberg.org/mutker/wattd/internal/aggregator"
	"codeberg.org/mutker/wattd/internal/household"
)

// Aggregator is the read side of the sampling pipeline
type Aggregator interface {
	Snapshot() aggregator.Snapshot
}

// Household exposes room state and device switching
type Household interface {
	Reading() float64
	Rooms() []household.RoomState
	RoomTotals() map[string]float64
	Set(ctx context.Context, room, device string, on bool) error
	Toggle(ctx context.Context, room, device string) (bool, error)
}

// Account exposes the profile, the budget and spending over history
type Account interface {
	Profile() account.Profile
	SetProfile(ctx context.Context, p account.Profile) (account.Profile, error)
	Budget() account.Budget
	SetBudget(ctx context.Context, b account.Budget) (account.Budget, error)
	ClearBudget(ctx context.Context) error
	Spending(values []float64) account.Spending
}
