package storage

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverBlob   = "blob"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config selects and parameterizes a Storage.
type Config struct {
	// Driver is one of the Driver* names.
	Driver string `mapstructure:"driver"`
	// Dir is the directory of the file driver.
	Dir string `mapstructure:"dir"`
	// URL is the bucket URL (blob), DSN (sqlite) or address (redis).
	URL string `mapstructure:"url"`
	// Prefix is the key prefix (blob) or hash name (redis).
	Prefix string `mapstructure:"prefix"`
	// Quota caps the memory driver in bytes.
	Quota int `mapstructure:"quota"`
}

// Open builds the Storage described by cfg.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Storage, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(cfg.Quota), nil
	case DriverFile:
		return NewFile(cfg.Dir, logger)
	case DriverBlob:
		return NewBlob(ctx, cfg.URL, cfg.Prefix)
	case DriverSQLite:
		return NewSQLite(ctx, cfg.URL)
	case DriverRedis:
		return NewRedis(ctx, cfg.URL, cfg.Prefix)
	default:
		return nil, errors.Wrap(ErrUnknownDriver, cfg.Driver)
	}
}
