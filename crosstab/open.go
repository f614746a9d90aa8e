package crosstab

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Driver names accepted by Open.
const (
	DriverNone  = "none"
	DriverRedis = "redis"
	DriverNATS  = "nats"
	// DriverWatch watches a file storage directory; it is built by the
	// caller that owns the storage, not by Open.
	DriverWatch = "watch"
)

// ErrUnknownDriver is returned by Open for an unsupported driver.
var ErrUnknownDriver = errors.New("unknown crosstab driver")

// Config selects a Channel.
type Config struct {
	Driver  string `mapstructure:"driver"`
	URL     string `mapstructure:"url"`
	Channel string `mapstructure:"channel"`
}

// Open builds the Channel described by cfg.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Channel, error) {
	switch cfg.Driver {
	case "", DriverNone, DriverWatch:
		return Nop{}, nil
	case DriverRedis:
		return NewRedis(ctx, cfg.URL, cfg.Channel, logger)
	case DriverNATS:
		return NewNATS(cfg.URL, cfg.Channel, logger)
	default:
		return nil, errors.Wrap(ErrUnknownDriver, cfg.Driver)
	}
}
