package logger_test

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"debug":   logger.DebugLevel,
		"INFO":    logger.InfoLevel,
		"":        logger.InfoLevel,
		"warning": logger.WarnLevel,
		"warn":    logger.WarnLevel,
		"error":   logger.ErrorLevel,
	}
	for in, want := range tests {
		got, err := logger.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := logger.ParseLevel("loud")
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidLogLevel, errors.CodeOf(err))
}

func TestComponentAndCode(t *testing.T) {
	logger.SetLogLevel(logger.DebugLevel)
	defer logger.SetLogLevel(logger.InfoLevel)

	var buf bytes.Buffer
	log := logger.New(&buf).With("aggregator")
	log.ErrorWithCode(errors.New().Wrap(errors.ErrOperationFailed, io.EOF)).Msg("save failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "aggregator", line["component"])
	assert.Equal(t, string(errors.ErrOperationFailed), line["error_code"])
	assert.Equal(t, "EOF", line["error"])
	assert.Equal(t, "save failed", line["message"])
}
