// Package crosstab carries key-only change notices between execution
// contexts that share a persistent store. Delivery is best effort: notices
// may be delayed, duplicated or lost, and arrive on a transport goroutine.
package crosstab

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrClosed is returned when using a closed channel.
var ErrClosed = errors.New("crosstab channel closed")

// Notice says that Key changed in Area. Origin identifies the sender so
// receivers can drop their own notices.
type Notice struct {
	Area   string `json:"area"`
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// Channel broadcasts notices to other contexts and delivers theirs.
type Channel interface {
	Broadcast(ctx context.Context, n Notice) error
	// Listen delivers every received notice to fn until stop is called or
	// ctx ends. fn may run on any goroutine.
	Listen(ctx context.Context, fn func(Notice)) (stop func(), err error)
	Close() error
}

// Encode renders a notice for the wire.
func Encode(n Notice) ([]byte, error) {
	return json.Marshal(n)
}

// Decode parses a wire notice.
func Decode(data []byte) (Notice, error) {
	var n Notice
	if err := json.Unmarshal(data, &n); err != nil {
		return Notice{}, errors.Wrap(err, "decode notice")
	}
	return n, nil
}

// Nop drops every broadcast and never delivers.
type Nop struct{}

func (Nop) Broadcast(context.Context, Notice) error { return nil }

func (Nop) Listen(context.Context, func(Notice)) (func(), error) {
	return func() {}, nil
}

func (Nop) Close() error { return nil }
