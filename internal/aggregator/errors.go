package aggregator

import "codeberg.org/mutker/wattd/internal/errors"

const (
	ErrInvalidOptions = errors.ErrorCode("aggregator_invalid_options")
	ErrStopped        = errors.ErrorCode("aggregator_stopped")
)

func init() {
	errors.RegisterMessages(map[errors.ErrorCode]string{
		ErrInvalidOptions: "Invalid aggregator options",
		ErrStopped:        "Aggregator is stopped",
	})
}
