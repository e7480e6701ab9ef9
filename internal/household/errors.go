package household

import "codeberg.org/mutker/wattd/internal/errors"

const (
	ErrUnknownRoom   = errors.ErrorCode("household_unknown_room")
	ErrUnknownDevice = errors.ErrorCode("household_unknown_device")
	ErrInvalidRoom   = errors.ErrorCode("household_invalid_room")
	ErrPersistState  = errors.ErrorCode("household_persist_state_failed")
)

func init() {
	errors.RegisterMessages(map[errors.ErrorCode]string{
		ErrUnknownRoom:   "Unknown room",
		ErrUnknownDevice: "Unknown device",
		ErrInvalidRoom:   "Invalid room definition",
		ErrPersistState:  "Failed to persist device state",
	})
}
