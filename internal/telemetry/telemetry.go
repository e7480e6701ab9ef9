package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"codeberg.org/mutker/wattd/internal/clock"
	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/logger"
)

const maxResponseBytes = 1 << 20

type client struct {
	cfg    Config
	http   *http.Client
	clock  clock.Clock
	logger logger.Logger
}

type noopForwarder struct{}

// NewForwarder returns an HTTP forwarder for cfg, or a no-op forwarder
// when no URL is configured. httpClient may be nil.
func NewForwarder(cfg Config, httpClient *http.Client, clk clock.Clock, log logger.Logger) (Forwarder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled() {
		log.Debug().Msg("Collector URL not set, forwarding disabled")
		return noopForwarder{}, nil
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	log.Debug().
		Str("url", cfg.URL).
		Dur("timeout", cfg.Timeout).
		Msg("Collector forwarder initialized")

	return &client{
		cfg:    cfg,
		http:   httpClient,
		clock:  clk,
		logger: log,
	}, nil
}

// NewPayload builds the collector body for average at time now
func NewPayload(now time.Time, average float64) Payload {
	return Payload{
		CurrentTime:       now.Format(TimeLayout),
		GlobalActivePower: average,
	}
}

func (c *client) Forward(ctx context.Context, average float64) (Outcome, error) {
	errFactory := errors.New()

	payload := NewPayload(c.clock.Now().Local(), average)
	body, err := json.Marshal(payload)
	if err != nil {
		return Failed, errFactory.Wrap(ErrEncodePayload, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return Failed, errFactory.Wrap(ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().RawJSON("payload", body).Msg("Forwarding average to collector")

	resp, err := c.http.Do(req)
	if err != nil {
		return Failed, errFactory.Wrap(ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return Failed, errFactory.WithData(ErrStatus, resp.StatusCode)
	}

	var result json.RawMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return Failed, errFactory.Wrap(ErrResponseBody, err)
	}

	c.logger.Debug().RawJSON("response", result).Msg("Collector response")
	return Delivered, nil
}

// Noop returns a Forwarder that never sends anything
func Noop() Forwarder {
	return noopForwarder{}
}

func (noopForwarder) Forward(context.Context, float64) (Outcome, error) {
	return Disabled, nil
}
