package logger

import (
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/wattd/internal/errors"
	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

type zlogger struct {
	zl zerolog.Logger
}

// Init initializes the package logger with the given level name
func Init(level string, isService bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	log = zerolog.New(output).With().Timestamp().Logger()
	SetLogLevel(lvl)

	return nil
}

// ParseLevel maps a configured level name to a LogLevel
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, errors.New().WithData(errors.ErrInvalidLogLevel, level)
	}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

// Default returns the package logger as an injectable Logger
func Default() Logger {
	return &zlogger{zl: log}
}

// New returns a Logger writing JSON lines to w
func New(w io.Writer) Logger {
	return &zlogger{zl: zerolog.New(w).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything
func Nop() Logger {
	return &zlogger{zl: zerolog.Nop()}
}

// Writer returns an io.Writer that logs each write at info level
func Writer() io.Writer {
	return log.Level(zerolog.InfoLevel)
}

func (l *zlogger) Debug() *LogEvent { return &LogEvent{l.zl.Debug()} }
func (l *zlogger) Info() *LogEvent  { return &LogEvent{l.zl.Info()} }
func (l *zlogger) Warn() *LogEvent  { return &LogEvent{l.zl.Warn()} }
func (l *zlogger) Error() *LogEvent { return &LogEvent{l.zl.Error()} }

func (l *zlogger) ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{l.zl.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

func (l *zlogger) With(component string) Logger {
	return &zlogger{zl: l.zl.With().Str("component", component).Logger()}
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return Default().ErrorWithCode(err)
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}
