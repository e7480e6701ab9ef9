package telemetry_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/mutker/wattd/internal/clock"
	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/logger"
	"codeberg.org/mutker/wattd/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newForwarder(t *testing.T, url string, clk clock.Clock) telemetry.Forwarder {
	t.Helper()
	fwd, err := telemetry.NewForwarder(telemetry.Config{URL: url, Timeout: time.Second}, nil, clk, logger.Nop())
	require.NoError(t, err)
	return fwd
}

func TestForwardDelivered(t *testing.T) {
	var got map[string]any
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api", r.URL.Path)
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	at := time.Date(2024, 3, 1, 21, 5, 9, 0, time.Local)
	fwd := newForwarder(t, srv.URL+"/api", clock.NewFake(at))

	outcome, err := fwd.Forward(context.Background(), 2.35)
	require.NoError(t, err)
	assert.Equal(t, telemetry.Delivered, outcome)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "21:05:09", got["current_time"])
	assert.Equal(t, 2.35, got["Global_active_power"])
	assert.Len(t, got, 2)
}

func TestForwardFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    errors.ErrorCode
	}{
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			code:    telemetry.ErrStatus,
		},
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) { http.NotFound(w, nil) },
			code:    telemetry.ErrStatus,
		},
		{
			name:    "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("<html>")) },
			code:    telemetry.ErrResponseBody,
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, _ *http.Request) {},
			code:    telemetry.ErrResponseBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			outcome, err := newForwarder(t, srv.URL, clock.Real()).Forward(context.Background(), 1)
			require.Error(t, err)
			assert.Equal(t, telemetry.Failed, outcome)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestForwardNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	outcome, err := newForwarder(t, url, clock.Real()).Forward(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, telemetry.Failed, outcome)
	assert.Equal(t, telemetry.ErrRequest, errors.CodeOf(err))
}

func TestForwardSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	outcome, _ := newForwarder(t, srv.URL, clock.Real()).Forward(context.Background(), 1)
	assert.Equal(t, telemetry.Failed, outcome)
	assert.Equal(t, int32(1), calls.Load())
}

func TestForwardTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	fwd, err := telemetry.NewForwarder(telemetry.Config{URL: srv.URL, Timeout: 50 * time.Millisecond},
		nil, clock.Real(), logger.Nop())
	require.NoError(t, err)

	outcome, err := fwd.Forward(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, telemetry.Failed, outcome)
}

func TestDisabledForwarder(t *testing.T) {
	fwd, err := telemetry.NewForwarder(telemetry.DefaultConfig(), nil, clock.Real(), logger.Nop())
	require.NoError(t, err)

	outcome, err := fwd.Forward(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, telemetry.Disabled, outcome)
}

func TestInvalidURL(t *testing.T) {
	for _, url := range []string{"ftp://collector/api", "not a url", "http://"} {
		_, err := telemetry.NewForwarder(telemetry.Config{URL: url, Timeout: time.Second}, nil, clock.Real(), logger.Nop())
		assert.Error(t, err, url)
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "delivered", telemetry.Delivered.String())
	assert.Equal(t, "failed", telemetry.Failed.String())
	assert.Equal(t, "disabled", telemetry.Disabled.String())
}
