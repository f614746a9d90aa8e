// Package storage provides the persistent key/value stores behind the
// persistent backend. Keys and values are plain strings.
package storage

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrQuotaExceeded is returned when a write would exceed the store capacity.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrClosed is returned for operations on a closed store.
	ErrClosed = errors.New("storage closed")
	// ErrUnknownDriver is returned by Open for an unsupported driver.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Storage is a string key/value store.
// Implementations must be safe for concurrent use.
type Storage interface {
	// GetItem returns the value for key and whether it exists.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem stores value under key.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Keys lists all stored keys in ascending order.
	Keys(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
