package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Lifecycle errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"
)

func init() {
	RegisterMessages(map[ErrorCode]string{
		ErrInternal:        "Internal error occurred",
		ErrInvalidArgument: "Invalid argument provided",
		ErrAlreadyRunning:  "Another instance is already running",
		ErrInvalidConfig:   "Invalid configuration",
		ErrReadConfig:      "Failed to read config file",
		ErrBindFlags:       "Failed to bind flags",
		ErrInvalidInterval: "Invalid interval value",
		ErrInvalidLogLevel: "Invalid log level",
		ErrInitFailed:      "Initialization failed",
		ErrShutdownFailed:  "Shutdown failed",
		ErrOperationFailed: "Operation failed",
		ErrTimeout:         "Operation timed out",
	})
}
