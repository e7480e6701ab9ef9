package telemetry

import (
	"net/url"
	"time"

	"codeberg.org/mutker/wattd/internal/errors"
)

const (
	defaultTimeout = 10 * time.Second
	// TimeLayout renders local wall time as HH:mm:ss, 24-hour
	TimeLayout = "15:04:05"
)

type Config struct {
	URL     string
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout: defaultTimeout,
	}
}

// Enabled reports whether a collector endpoint is configured
func (c Config) Enabled() bool {
	return c.URL != ""
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if !c.Enabled() {
		return nil
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return errFactory.Wrap(ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return errFactory.WithData(ErrInvalidURL, c.URL)
	}
	if c.Timeout <= 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Field string
			Value time.Duration
		}{
			Field: "timeout",
			Value: c.Timeout,
		})
	}
	return nil
}
