package api

import "codeberg.org/mutker/wattd/internal/errors"

const (
	ErrInvalidBody = errors.ErrorCode("api_invalid_body")
)

func init() {
	errors.RegisterMessages(map[errors.ErrorCode]string{
		ErrInvalidBody: "Malformed request body",
	})
}
