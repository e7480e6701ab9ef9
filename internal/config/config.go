package config

import (
	"fmt"
	"os"
	"time"

	"codeberg.org/mutker/wattd/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel          = string(LogLevelInfo)
	DefaultSampleInterval    = time.Second
	DefaultAggregationPeriod = time.Hour
	DefaultHistoryCapacity   = 24
	DefaultBaseLoad          = 1.5
	DefaultEnergyPrice       = 0.25
	DefaultCollectorTimeout  = 10 * time.Second
	DefaultStoreDriver       = "sqlite"
	DefaultStorePath         = "/var/lib/wattd/wattd.db"
	DefaultListen            = "127.0.0.1:8080"

	defaultEnvPrefix  = "WATTD"
	defaultConfigName = "wattd"
	defaultConfigDir  = "/etc"
)

type Config struct {
	LogLevel          string        `mapstructure:"log_level"`
	SampleInterval    time.Duration `mapstructure:"sample_interval"`
	AggregationPeriod time.Duration `mapstructure:"aggregation_period"`
	HistoryCapacity   int           `mapstructure:"history_capacity"`
	BaseLoad          float64       `mapstructure:"base_load"`
	EnergyPrice       float64       `mapstructure:"energy_price"`
	CollectorURL      string        `mapstructure:"collector_url"`
	CollectorTimeout  time.Duration `mapstructure:"collector_timeout"`
	StoreDriver       string        `mapstructure:"store_driver"`
	StorePath         string        `mapstructure:"store_path"`
	Listen            string        `mapstructure:"listen"`
	PIDDir            string        `mapstructure:"pid_dir"`
}

type validationError struct {
	field  string
	value  interface{}
	reason string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("%s: %v (%s)", e.field, e.value, e.reason)
}

func (e *validationError) Field() string      { return e.field }
func (e *validationError) Value() interface{} { return e.value }
func (e *validationError) Reason() string     { return e.reason }

// Load reads defaults, the config file, WATTD_* environment variables and
// args, in increasing order of precedence.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{
		configPath: os.Getenv(defaultEnvPrefix + "_CONFIG"),
		envPrefix:  defaultEnvPrefix,
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	fs := pflag.NewFlagSet("wattd", pflag.ContinueOnError)
	configFlag := fs.String("config", "", "Path to the configuration file")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Duration("sample-interval", DefaultSampleInterval, "Time between readings")
	fs.Duration("aggregation-period", DefaultAggregationPeriod, "Length of one history period")
	fs.Int("history-capacity", DefaultHistoryCapacity, "Number of period averages to retain")
	fs.Float64("base-load", DefaultBaseLoad, "Constant load added to every reading")
	fs.Float64("energy-price", DefaultEnergyPrice, "Price in $/kWh when the profile sets none")
	fs.String("collector-url", "", "Remote collector endpoint; empty disables forwarding")
	fs.Duration("collector-timeout", DefaultCollectorTimeout, "Timeout for one forward")
	fs.String("store-driver", DefaultStoreDriver, "Persistent store driver (sqlite, memory)")
	fs.String("store-path", DefaultStorePath, "Path to the sqlite database")
	fs.String("listen", DefaultListen, "HTTP listen address; empty disables the API")
	fs.String("pid-dir", os.TempDir(), "Directory for the PID file")

	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	for _, key := range keys {
		if err := v.BindPFlag(key, fs.Lookup(flagName(key))); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetEnvPrefix(o.envPrefix)
	v.AutomaticEnv()

	if *configFlag != "" {
		o.configPath = *configFlag
	}

	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("toml")
		v.AddConfigPath(defaultConfigDir)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var keys = []string{
	"log_level",
	"sample_interval",
	"aggregation_period",
	"history_capacity",
	"base_load",
	"energy_price",
	"collector_url",
	"collector_timeout",
	"store_driver",
	"store_path",
	"listen",
	"pid_dir",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("sample_interval", DefaultSampleInterval)
	v.SetDefault("aggregation_period", DefaultAggregationPeriod)
	v.SetDefault("history_capacity", DefaultHistoryCapacity)
	v.SetDefault("base_load", DefaultBaseLoad)
	v.SetDefault("energy_price", DefaultEnergyPrice)
	v.SetDefault("collector_url", "")
	v.SetDefault("collector_timeout", DefaultCollectorTimeout)
	v.SetDefault("store_driver", DefaultStoreDriver)
	v.SetDefault("store_path", DefaultStorePath)
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("pid_dir", os.TempDir())
}

func flagName(key string) string {
	b := []byte(key)
	for i := range b {
		if b[i] == '_' {
			b[i] = '-'
		}
	}
	return string(b)
}

// Validate checks the loaded values for consistency
func (c *Config) Validate() error {
	errFactory := errors.New()

	invalid := func(code errors.ErrorCode, field string, value interface{}, reason string) error {
		return errFactory.Wrap(code, &validationError{field: field, value: value, reason: reason})
	}

	if !LogLevel(c.LogLevel).IsValid() {
		return invalid(errors.ErrInvalidLogLevel, "log_level", c.LogLevel, "unknown level")
	}
	if c.SampleInterval <= 0 {
		return invalid(errors.ErrInvalidInterval, "sample_interval", c.SampleInterval, "must be positive")
	}
	if c.AggregationPeriod < c.SampleInterval {
		return invalid(errors.ErrInvalidInterval, "aggregation_period", c.AggregationPeriod,
			"must not be shorter than sample_interval")
	}
	if c.HistoryCapacity < 1 {
		return invalid(errors.ErrInvalidConfig, "history_capacity", c.HistoryCapacity, "must be at least 1")
	}
	if c.BaseLoad < 0 {
		return invalid(errors.ErrInvalidConfig, "base_load", c.BaseLoad, "must not be negative")
	}
	if c.EnergyPrice < 0 {
		return invalid(errors.ErrInvalidConfig, "energy_price", c.EnergyPrice, "must not be negative")
	}
	if c.CollectorURL != "" && c.CollectorTimeout <= 0 {
		return invalid(errors.ErrInvalidInterval, "collector_timeout", c.CollectorTimeout, "must be positive")
	}
	switch c.StoreDriver {
	case "memory":
	case "sqlite":
		if c.StorePath == "" {
			return invalid(errors.ErrInvalidConfig, "store_path", c.StorePath, "required for sqlite")
		}
	default:
		return invalid(errors.ErrInvalidConfig, "store_driver", c.StoreDriver, "unknown driver")
	}

	return nil
}

func (c *Config) GetSampleInterval() time.Duration    { return c.SampleInterval }
func (c *Config) GetAggregationPeriod() time.Duration { return c.AggregationPeriod }
func (c *Config) GetHistoryCapacity() int             { return c.HistoryCapacity }
func (c *Config) GetCollectorURL() string             { return c.CollectorURL }
func (c *Config) GetLogLevel() string                 { return c.LogLevel }

var _ Provider = (*Config)(nil)
