package crosstab

import (
	"context"

	"github.com/odvcencio/furry-store/storage"
)

// WatchOrigin marks notices synthesized from storage file events.
const WatchOrigin = "fs"

// Watch turns changes to a shared storage directory into notices for one
// area. The write itself is the broadcast, so Broadcast does nothing.
type Watch struct {
	file *storage.File
	area string
}

// NewWatch watches file on behalf of area.
func NewWatch(file *storage.File, area string) *Watch {
	return &Watch{file: file, area: area}
}

func (w *Watch) Broadcast(context.Context, Notice) error {
	return nil
}

func (w *Watch) Listen(ctx context.Context, fn func(Notice)) (func(), error) {
	if fn == nil {
		return func() {}, nil
	}
	return w.file.Watch(ctx, func(key string) {
		fn(Notice{Area: w.area, Key: key, Origin: WatchOrigin})
	})
}

func (w *Watch) Close() error {
	return nil
}
