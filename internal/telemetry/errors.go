package telemetry

import "codeberg.org/mutker/wattd/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")
	ErrInvalidURL    = errors.ErrorCode("telemetry_invalid_url")

	// Delivery Errors
	ErrEncodePayload = errors.ErrorCode("telemetry_encode_payload_failed")
	ErrRequest       = errors.ErrorCode("telemetry_request_failed")
	ErrStatus        = errors.ErrorCode("telemetry_unexpected_status")
	ErrResponseBody  = errors.ErrorCode("telemetry_malformed_response")
)

func init() {
	errors.RegisterMessages(map[errors.ErrorCode]string{
		ErrInvalidConfig: "Invalid collector configuration",
		ErrInvalidURL:    "Invalid collector URL",
		ErrEncodePayload: "Failed to encode payload",
		ErrRequest:       "Collector request failed",
		ErrStatus:        "Collector returned an unexpected status",
		ErrResponseBody:  "Collector response is not JSON",
	})
}
