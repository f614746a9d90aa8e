// Package persist binds keys of a persistent key/value store to
// synchronized stores. Values are stored as JSON text.
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/odvcencio/furry-store/bus"
	"github.com/odvcencio/furry-store/crosstab"
	"github.com/odvcencio/furry-store/metrics"
	"github.com/odvcencio/furry-store/state"
	"github.com/odvcencio/furry-store/storage"
)

// Area names and their bridging event names. Each area publishes on its
// own event name so notices never cross between areas.
const (
	LocalName    = "local"
	LocalEvent   = "localstorage"
	SessionName  = "session"
	SessionEvent = "sessionstorage"
)

const defaultTimeout = 5 * time.Second

// ErrStarted is returned when starting an area twice.
var ErrStarted = errors.New("area already started")

// Bus is the notification bus an area publishes on. Relay delivers notices
// that came from another execution context.
type Bus interface {
	bus.Bus
	Relay(scope any, key string)
}

// AreaConfig configures an Area.
type AreaConfig struct {
	Name      string
	EventType string
	Storage   storage.Storage
	// Channel links other execution contexts; nil disables the bridge.
	Channel crosstab.Channel
	Bus     Bus
	// Origin identifies this execution context on the channel.
	Origin string
	Logger *zap.Logger
	// Timeout bounds each storage call. Zero means five seconds.
	Timeout time.Duration
}

// Area is one named persistent store type shared by all stores on it.
type Area struct {
	name      string
	eventType string
	storage   storage.Storage
	channel   crosstab.Channel
	bus       Bus
	origin    string
	logger    *zap.Logger
	timeout   time.Duration

	mu   sync.Mutex
	stop func()
}

// NewArea builds an area. A nil bus gets a private bus.Local.
func NewArea(cfg AreaConfig) *Area {
	a := &Area{
		name:      cfg.Name,
		eventType: cfg.EventType,
		storage:   cfg.Storage,
		channel:   cfg.Channel,
		bus:       cfg.Bus,
		origin:    cfg.Origin,
		logger:    cfg.Logger,
		timeout:   cfg.Timeout,
	}
	if a.eventType == "" {
		a.eventType = a.name + "storage"
	}
	if a.channel == nil {
		a.channel = crosstab.Nop{}
	}
	if a.bus == nil {
		a.bus = bus.NewLocal()
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	a.logger = a.logger.With(zap.String("area", a.name))
	return a
}

// Name returns the area name.
func (a *Area) Name() string { return a.name }

// EventType returns the bridging event name; it is also the bus scope.
func (a *Area) EventType() string { return a.eventType }

// Storage returns the underlying store.
func (a *Area) Storage() storage.Storage { return a.storage }

// Channel returns the cross-context channel.
func (a *Area) Channel() crosstab.Channel { return a.channel }

// Bus returns the notification bus.
func (a *Area) Bus() Bus { return a.bus }

// Keys lists stored keys.
func (a *Area) Keys(ctx context.Context) ([]string, error) {
	return a.storage.Keys(ctx)
}

// Start relays notices from other execution contexts onto the bus. Each
// relay is handed to sched, so subscribers run on the scheduler's goroutine;
// a nil sched relays on the channel goroutine.
func (a *Area) Start(ctx context.Context, sched state.Scheduler) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		return ErrStarted
	}
	stop, err := a.channel.Listen(ctx, func(n crosstab.Notice) {
		if n.Area != a.eventType || n.Origin == a.origin {
			return
		}
		metrics.CrossTabReceived.WithLabelValues(a.name).Inc()
		key := n.Key
		relay := func() { a.bus.Relay(a.eventType, key) }
		if sched == nil {
			relay()
			return
		}
		sched.Schedule(relay)
	})
	if err != nil {
		return errors.Wrapf(err, "listen for %s notices", a.name)
	}
	a.stop = stop
	a.logger.Debug("cross-context bridge started", zap.String("origin", a.origin))
	return nil
}

// Stop ends the bridge started by Start.
func (a *Area) Stop() {
	a.mu.Lock()
	stop := a.stop
	a.stop = nil
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Close stops the bridge and closes the storage. The channel belongs to
// whoever supplied it.
func (a *Area) Close() error {
	a.Stop()
	return a.storage.Close()
}

func (a *Area) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}

// broadcast tells other contexts that key changed. Failures are logged only;
// cross-context delivery is best effort.
func (a *Area) broadcast(key string) {
	ctx, cancel := a.context()
	defer cancel()
	err := a.channel.Broadcast(ctx, crosstab.Notice{Area: a.eventType, Key: key, Origin: a.origin})
	if err != nil {
		metrics.CrossTabBroadcastFailed.WithLabelValues(a.name).Inc()
		a.logger.Warn("cross-context broadcast failed", zap.String("key", key), zap.Error(err))
	}
}
