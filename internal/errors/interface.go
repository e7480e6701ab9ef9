package errors

// ErrorCode is a stable machine-readable identifier, also reported to API
// clients
type ErrorCode string

// Coder is implemented by anything carrying an ErrorCode
type Coder interface {
	Code() ErrorCode
}

// Error is a coded error with an optional message, payload and cause. Two
// Errors match under Is when their codes are equal.
type Error interface {
	error
	Coder
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory creates coded errors
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
