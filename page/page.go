// Package page assembles one execution context: a document, a notification
// bus, the local and session storage areas, and the loop that runs their
// subscribers.
package page

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/odvcencio/furry-store/bus"
	"github.com/odvcencio/furry-store/crosstab"
	"github.com/odvcencio/furry-store/cssvar"
	"github.com/odvcencio/furry-store/dom"
	"github.com/odvcencio/furry-store/persist"
	"github.com/odvcencio/furry-store/runtime"
	"github.com/odvcencio/furry-store/storage"
	"github.com/odvcencio/furry-store/syncstore"
)

// Options configures a Page.
type Options struct {
	// Origin identifies the page on cross-context channels. Empty means a
	// new ULID.
	Origin string
	// Markup is the initial document. Empty means an empty document.
	Markup string
	// LocalStorage and SessionStorage back the two areas. Nil means a
	// private in-memory store.
	LocalStorage   storage.Storage
	SessionStorage storage.Storage
	// Channel links this page to other pages. Nil disables the bridge.
	// The page does not close it.
	Channel crosstab.Channel
	// WatchLocal bridges the local area by watching its directory instead
	// of Channel. LocalStorage must be a *storage.File.
	WatchLocal bool
	// Timeout bounds each storage call.
	Timeout time.Duration
	Logger  *zap.Logger
	Loop    runtime.LoopConfig
}

// Page is one execution context.
type Page struct {
	origin  string
	doc     *dom.Document
	bus     *bus.Local
	local   *persist.Area
	session *persist.Area
	loop    *runtime.Loop
	logger  *zap.Logger
	owned   []crosstab.Channel
}

// New builds a page from opts.
func New(opts Options) (*Page, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origin := opts.Origin
	if origin == "" {
		origin = NewOrigin()
	}
	doc := dom.New()
	if opts.Markup != "" {
		parsed, err := dom.ParseString(opts.Markup)
		if err != nil {
			return nil, errors.Wrap(err, "parse page markup")
		}
		doc = parsed
	}
	localStorage := opts.LocalStorage
	if localStorage == nil {
		localStorage = storage.NewMemory(0)
	}
	sessionStorage := opts.SessionStorage
	if sessionStorage == nil {
		sessionStorage = storage.NewMemory(0)
	}

	p := &Page{
		origin: origin,
		doc:    doc,
		bus:    bus.NewLocal(),
		logger: logger.With(zap.String("origin", origin)),
	}

	localChannel := opts.Channel
	if opts.WatchLocal {
		file, ok := localStorage.(*storage.File)
		if !ok {
			return nil, errors.Errorf("watching the local area needs file storage, got %T", localStorage)
		}
		watch := crosstab.NewWatch(file, persist.LocalEvent)
		p.owned = append(p.owned, watch)
		localChannel = watch
	}

	p.local = persist.NewArea(persist.AreaConfig{
		Name:      persist.LocalName,
		EventType: persist.LocalEvent,
		Storage:   localStorage,
		Channel:   localChannel,
		Bus:       p.bus,
		Origin:    origin,
		Logger:    p.logger,
		Timeout:   opts.Timeout,
	})
	p.session = persist.NewArea(persist.AreaConfig{
		Name:      persist.SessionName,
		EventType: persist.SessionEvent,
		Storage:   sessionStorage,
		Channel:   opts.Channel,
		Bus:       p.bus,
		Origin:    origin,
		Logger:    p.logger,
		Timeout:   opts.Timeout,
	})

	loopCfg := opts.Loop
	if loopCfg.Logger == nil {
		loopCfg.Logger = p.logger
	}
	p.loop = runtime.NewLoop(loopCfg)
	return p, nil
}

// NewOrigin returns a fresh page origin.
func NewOrigin() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Origin returns the page origin.
func (p *Page) Origin() string { return p.origin }

// Document returns the page document.
func (p *Page) Document() *dom.Document { return p.doc }

// Bus returns the page notification bus.
func (p *Page) Bus() *bus.Local { return p.bus }

// Local returns the local storage area.
func (p *Page) Local() *persist.Area { return p.local }

// Session returns the session storage area.
func (p *Page) Session() *persist.Area { return p.session }

// Loop returns the page loop.
func (p *Page) Loop() *runtime.Loop { return p.loop }

// Logger returns the page logger.
func (p *Page) Logger() *zap.Logger { return p.logger }

// Run bridges both areas onto the loop and runs the loop until ctx ends or
// the loop quits.
func (p *Page) Run(ctx context.Context) error {
	sched := p.loop.StateScheduler()
	if err := p.local.Start(ctx, sched); err != nil {
		return err
	}
	defer p.local.Stop()
	if err := p.session.Start(ctx, sched); err != nil {
		return err
	}
	defer p.session.Stop()
	p.logger.Debug("page running")
	return p.loop.Run(ctx)
}

// Close releases both areas and the channels the page built.
func (p *Page) Close() error {
	err := multierr.Combine(p.local.Close(), p.session.Close())
	for _, ch := range p.owned {
		err = multierr.Append(err, ch.Close())
	}
	return err
}

// CSSVariable binds a custom style property of the page document.
func (p *Page) CSSVariable(key string, initial syncstore.Initial[string], scope cssvar.Scope) *cssvar.Store {
	return cssvar.New(p.doc, p.bus, key, initial, scope)
}

// LocalStore binds key of the local area.
func LocalStore[T any](p *Page, key string, initial syncstore.Initial[T]) *persist.Store[T] {
	return persist.New[T](p.local, key, initial)
}

// SessionStore binds key of the session area.
func SessionStore[T any](p *Page, key string, initial syncstore.Initial[T]) *persist.Store[T] {
	return persist.New[T](p.session, key, initial)
}
