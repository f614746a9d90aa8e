// Package config loads the furry-store configuration through viper.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/odvcencio/furry-store/crosstab"
	"github.com/odvcencio/furry-store/logging"
	"github.com/odvcencio/furry-store/storage"
)

// EnvPrefix prefixes every environment variable, e.g. FURRYSTORE_LOG_LEVEL.
const EnvPrefix = "FURRYSTORE"

// Config is the full configuration.
type Config struct {
	// Origin overrides the generated page origin.
	Origin   string          `mapstructure:"origin"`
	Storage  StorageConfig   `mapstructure:"storage"`
	CrossTab crosstab.Config `mapstructure:"crosstab"`
	Log      LogConfig       `mapstructure:"log"`
	Metrics  MetricsConfig   `mapstructure:"metrics"`
	// Timeout bounds each storage call.
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig configures the two storage areas.
type StorageConfig struct {
	Local   storage.Config `mapstructure:"local"`
	Session storage.Config `mapstructure:"session"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the metrics endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
	Path string `mapstructure:"path"`
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers default values on v. Every key gets one so that
// environment variables reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("origin", "")
	for _, area := range []string{"local", "session"} {
		v.SetDefault("storage."+area+".driver", storage.DriverMemory)
		v.SetDefault("storage."+area+".dir", "")
		v.SetDefault("storage."+area+".url", "")
		v.SetDefault("storage."+area+".prefix", "")
		v.SetDefault("storage."+area+".quota", 0)
	}
	v.SetDefault("crosstab.driver", crosstab.DriverNone)
	v.SetDefault("crosstab.url", "")
	v.SetDefault("crosstab.channel", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatJSON)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("timeout", 5*time.Second)
}

// Load reads file when set and decodes v into a Config.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", file)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var err error
	err = multierr.Append(err, validateStorage("storage.local", c.Storage.Local))
	err = multierr.Append(err, validateStorage("storage.session", c.Storage.Session))

	switch c.CrossTab.Driver {
	case "", crosstab.DriverNone:
	case crosstab.DriverRedis, crosstab.DriverNATS:
		if c.CrossTab.URL == "" {
			err = multierr.Append(err, errors.Errorf("crosstab.url is required for driver %q", c.CrossTab.Driver))
		}
	case crosstab.DriverWatch:
		if c.Storage.Local.Driver != storage.DriverFile {
			err = multierr.Append(err, errors.New("crosstab driver watch needs storage.local.driver file"))
		}
	default:
		err = multierr.Append(err, errors.Wrap(crosstab.ErrUnknownDriver, c.CrossTab.Driver))
	}

	if _, lerr := zapcore.ParseLevel(c.Log.Level); lerr != nil {
		err = multierr.Append(err, errors.Wrap(lerr, "log.level"))
	}
	switch c.Log.Format {
	case "", logging.FormatJSON, logging.FormatConsole:
	default:
		err = multierr.Append(err, errors.Wrap(logging.ErrUnknownFormat, c.Log.Format))
	}
	if c.Timeout < 0 {
		err = multierr.Append(err, errors.New("timeout must not be negative"))
	}
	return err
}

func validateStorage(name string, c storage.Config) error {
	switch c.Driver {
	case "", storage.DriverMemory:
		if c.Quota < 0 {
			return errors.Errorf("%s.quota must not be negative", name)
		}
		return nil
	case storage.DriverFile:
		if c.Dir == "" {
			return errors.Errorf("%s.dir is required for driver file", name)
		}
		return nil
	case storage.DriverBlob, storage.DriverSQLite, storage.DriverRedis:
		if c.URL == "" {
			return errors.Errorf("%s.url is required for driver %s", name, c.Driver)
		}
		return nil
	default:
		return errors.Wrapf(storage.ErrUnknownDriver, "%s: %s", name, c.Driver)
	}
}
