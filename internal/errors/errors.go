package errors

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Basic error check functions from standard library
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

var (
	messagesMu sync.RWMutex
	messages   = make(map[ErrorCode]string)
)

// RegisterMessages adds human-readable text for codes. Packages call it
// from init; a later registration for the same code replaces the earlier.
func RegisterMessages(m map[ErrorCode]string) {
	messagesMu.Lock()
	defer messagesMu.Unlock()

	for code, msg := range m {
		messages[code] = msg
	}
}

// GetErrorMessage returns the registered text for code, or the code itself
func GetErrorMessage(code ErrorCode) string {
	messagesMu.RLock()
	defer messagesMu.RUnlock()

	if msg, ok := messages[code]; ok {
		return msg
	}
	return string(code)
}

// codedError renders as "message (data): cause", each part optional
// except the message, which falls back to the registered text.
type codedError struct {
	code    ErrorCode
	message string
	cause   error
	data    any
}

func (e *codedError) Error() string {
	var b strings.Builder

	if e.message != "" {
		b.WriteString(e.message)
	} else {
		b.WriteString(GetErrorMessage(e.code))
	}
	if e.data != nil {
		fmt.Fprintf(&b, " (%+v)", e.data)
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}

	return b.String()
}

func (e *codedError) Code() ErrorCode {
	return e.code
}

func (e *codedError) WithMessage(msg string) Error {
	c := *e
	c.message = msg
	return &c
}

func (e *codedError) WithData(data any) Error {
	c := *e
	c.data = data
	return &c
}

func (e *codedError) GetData() any {
	return e.data
}

func (e *codedError) Unwrap() error {
	return e.cause
}

// Is matches any coded target with the same code
func (e *codedError) Is(target error) bool {
	var t Coder
	if errors.As(target, &t) {
		return t.Code() == e.code
	}
	return false
}

type factory struct{}

func (factory) New(code ErrorCode) Error {
	return &codedError{code: code}
}

func (factory) Wrap(code ErrorCode, err error) Error {
	return &codedError{code: code, cause: err}
}

func (factory) WithMessage(code ErrorCode, msg string) Error {
	return &codedError{code: code, message: msg}
}

func (factory) WithData(code ErrorCode, data any) Error {
	return &codedError{code: code, data: data}
}

// New returns the Factory every package builds its errors with
func New() Factory {
	return factory{}
}

// CodeOf returns the code of the first coded error in err's chain, or
// ErrInternal if there is none.
func CodeOf(err error) ErrorCode {
	var e Coder
	if errors.As(err, &e) {
		return e.Code()
	}
	return ErrInternal
}
