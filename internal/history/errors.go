package history

import "codeberg.org/mutker/wattd/internal/errors"

const (
	ErrCorruptHistory = errors.ErrorCode("history_corrupt")
	ErrEncodeHistory  = errors.ErrorCode("history_encode_failed")
	ErrLoadHistory    = errors.ErrorCode("history_load_failed")
	ErrSaveHistory    = errors.ErrorCode("history_save_failed")
)

func init() {
	errors.RegisterMessages(map[errors.ErrorCode]string{
		ErrCorruptHistory: "Stored history is corrupt",
		ErrEncodeHistory:  "Failed to encode history",
		ErrLoadHistory:    "Failed to load history",
		ErrSaveHistory:    "Failed to save history",
	})
}
