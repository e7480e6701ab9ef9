package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/wattd/internal/account"
	"codeberg.org/mutker/wattd/internal/aggregator"
	"codeberg.org/mutker/wattd/internal/api"
	"codeberg.org/mutker/wattd/internal/clock"
	"codeberg.org/mutker/wattd/internal/config"
	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/history"
	"codeberg.org/mutker/wattd/internal/household"
	"codeberg.org/mutker/wattd/internal/logger"
	"codeberg.org/mutker/wattd/internal/metrics"
	"codeberg.org/mutker/wattd/internal/pid"
	"codeberg.org/mutker/wattd/internal/store"
	"codeberg.org/mutker/wattd/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

var (
	cfg   *config.Config
	db    store.Store
	house *household.Household
	agg   *aggregator.Aggregator
	srv   *http.Server
)

func init() {
	var err error
	cfg, err = config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(cfg.PIDDir); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(cfg.PIDDir); err != nil {
			logger.Error().Err(err).Msg("Failed to remove PID file")
		}
	}()

	logConfig(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx); err != nil {
		logger.Error().Err(err).Msg("Error in main loop")
	}
	cleanup()
}

func run(ctx context.Context) error {
	log := logger.Default()
	errFactory := errors.New()

	var err error
	db, err = store.Open(store.Config{
		Driver: cfg.StoreDriver,
		DBPath: cfg.StorePath,
	}, log.With("store"))
	if err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	house, err = household.New(household.DefaultRooms(), cfg.BaseLoad, db, log.With("household"))
	if err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}
	house.Load(ctx)

	acct, err := account.New(db, cfg.EnergyPrice, cfg.AggregationPeriod, log.With("account"))
	if err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}
	acct.Load(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.New(reg)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	clk := clock.Real()
	forwarder, err := telemetry.NewForwarder(telemetry.Config{
		URL:     cfg.CollectorURL,
		Timeout: cfg.CollectorTimeout,
	}, nil, clk, log.With("telemetry"))
	if err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	agg, err = aggregator.New(aggregator.Options{
		Source:         house,
		Repository:     history.NewRepository(db, log.With("history")),
		Forwarder:      forwarder,
		Clock:          clk,
		Recorder:       recorder,
		Logger:         log.With("aggregator"),
		SampleInterval: cfg.SampleInterval,
		Period:         cfg.AggregationPeriod,
		Capacity:       cfg.HistoryCapacity,
	})
	if err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}
	if err := agg.Start(ctx); err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	serveErr := make(chan error, 1)
	if cfg.Listen != "" {
		ln, err := net.Listen("tcp", cfg.Listen)
		if err != nil {
			return errFactory.Wrap(errors.ErrInitFailed, err)
		}

		srv = &http.Server{
			Handler: api.NewRouter(api.Options{
				Aggregator: agg,
				Household:  house,
				Account:    acct,
				Gatherer:   reg,
				AccessLog:  logger.Writer(),
				Logger:     log.With("api"),
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
				serveErr <- err
			}
		}()
		logger.Info().Str("listen", ln.Addr().String()).Msg("API listening")
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-serveErr:
		return errFactory.Wrap(errors.ErrOperationFailed, err)
	}
}

func logConfig(p config.Provider) {
	collector := p.GetCollectorURL()
	if collector == "" {
		collector = "disabled"
	}
	logger.Info().
		Str("log_level", p.GetLogLevel()).
		Dur("sample_interval", p.GetSampleInterval()).
		Dur("aggregation_period", p.GetAggregationPeriod()).
		Int("history_capacity", p.GetHistoryCapacity()).
		Str("collector", collector).
		Msg("Starting wattd")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal")
	cancel()
}

func cleanup() {
	errFactory := errors.New()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.ErrorWithCode(errFactory.Wrap(errors.ErrShutdownFailed, err)).Msg("Failed to shut down API server")
		}
	}
	if agg != nil {
		agg.Stop()
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.ErrorWithCode(errFactory.Wrap(errors.ErrShutdownFailed, err)).Msg("Failed to close store")
		}
	}
	logger.Info().Msg("Exiting...")
}
