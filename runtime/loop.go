// Package runtime runs the single UI goroutine that owns widgets and store
// subscribers. Other goroutines reach it by posting messages.
package runtime

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/odvcencio/furry-store/crosstab"
	"github.com/odvcencio/furry-store/state"
)

// ErrRunning is returned by Run when the loop is already running.
var ErrRunning = errors.New("loop already running")

const (
	defaultMessageBuffer = 128
	defaultFlushRounds   = 16
	defaultWidth         = 80
	defaultHeight        = 24
)

// UpdateFunc handles a message and returns true if a render is needed.
type UpdateFunc func(loop *Loop, msg Message) bool

// CommandHandler handles commands the loop does not know.
// Return true if the command requires a render.
type CommandHandler func(cmd Command) bool

// Renderer receives the buffer after each render pass that changed it.
type Renderer func(buf *Buffer)

// LoopConfig configures a Loop.
type LoopConfig struct {
	Root           Widget
	Update         UpdateFunc
	CommandHandler CommandHandler
	Renderer       Renderer
	Width          int
	Height         int
	MessageBuffer  int
	TickRate       time.Duration
	StateQueue     *state.Queue
	FlushPolicy    QueueFlushPolicy
	// MaxFlushRounds bounds how many times one flush re-runs callbacks
	// scheduled by other callbacks. Zero means 16.
	MaxFlushRounds int
	Logger         *zap.Logger
}

// Loop owns the UI goroutine: it drains posted messages, flushes the state
// queue and renders the widget tree.
type Loop struct {
	root           Widget
	update         UpdateFunc
	commandHandler CommandHandler
	renderer       Renderer
	buffer         *Buffer
	messages       chan Message
	tickRate       time.Duration
	stateQueue     *state.Queue
	queueScheduler *QueueScheduler
	flushPolicy    QueueFlushPolicy
	flushRounds    int
	invalidator    *Invalidator
	logger         *zap.Logger

	mu             sync.Mutex
	taskCtx        context.Context
	taskCancel     context.CancelFunc
	pendingEffects []Effect

	running bool
	frames  int
}

// NewLoop creates a Loop from config.
func NewLoop(cfg LoopConfig) *Loop {
	bufferSize := cfg.MessageBuffer
	if bufferSize <= 0 {
		bufferSize = defaultMessageBuffer
	}
	queue := cfg.StateQueue
	if queue == nil {
		queue = state.NewQueue()
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	l := &Loop{
		root:           cfg.Root,
		update:         cfg.Update,
		commandHandler: cfg.CommandHandler,
		renderer:       cfg.Renderer,
		buffer:         NewBuffer(w, h),
		messages:       make(chan Message, bufferSize),
		tickRate:       cfg.TickRate,
		stateQueue:     queue,
		flushPolicy:    cfg.FlushPolicy,
		flushRounds:    cfg.MaxFlushRounds,
		logger:         cfg.Logger,
	}
	if l.flushRounds <= 0 {
		l.flushRounds = defaultFlushRounds
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	l.queueScheduler = NewQueueScheduler(queue, l.tryPost)
	l.invalidator = NewInvalidator(l.tryPost)
	return l
}

// StateQueue returns the loop's state queue.
func (l *Loop) StateQueue() *state.Queue {
	if l == nil {
		return nil
	}
	return l.stateQueue
}

// StateScheduler returns a scheduler whose callbacks run on the loop
// goroutine.
func (l *Loop) StateScheduler() state.Scheduler {
	if l == nil || l.queueScheduler == nil {
		return nil
	}
	return l.queueScheduler
}

// InvalidateScheduler returns a scheduler that invalidates the render pass.
func (l *Loop) InvalidateScheduler() state.Scheduler {
	if l == nil || l.invalidator == nil {
		return nil
	}
	return l.invalidator
}

// Invalidate requests a render pass.
func (l *Loop) Invalidate() {
	if l == nil || l.invalidator == nil {
		return
	}
	l.invalidator.Invalidate()
}

// Buffer returns the last rendered buffer. Only the loop goroutine may use
// it while Run is active.
func (l *Loop) Buffer() *Buffer {
	return l.buffer
}

// PostQueueFlush requests a state queue flush.
func (l *Loop) PostQueueFlush() {
	l.Post(QueueFlushMsg{})
}

// Quit asks a running loop to return.
func (l *Loop) Quit() {
	l.Post(QuitMsg{})
}

// Spawn starts an effect using the loop task context.
// If Run has not started, the effect is queued until start.
func (l *Loop) Spawn(effect Effect) {
	if l == nil || effect.Run == nil {
		return
	}
	l.mu.Lock()
	if l.taskCtx == nil {
		l.pendingEffects = append(l.pendingEffects, effect)
		l.mu.Unlock()
		return
	}
	ctx := l.taskCtx
	l.mu.Unlock()
	go effect.Run(ctx, l.tryPost)
}

// After schedules a delayed message using the loop task context.
func (l *Loop) After(delay time.Duration, msg Message) {
	l.Spawn(After(delay, msg))
}

// Every schedules a recurring message using the loop task context.
func (l *Loop) Every(interval time.Duration, fn func(time.Time) Message) {
	l.Spawn(Every(interval, fn))
}

// Listen bridges notices from ch into the loop as NoticeMsg.
func (l *Loop) Listen(ch crosstab.Channel, accept func(crosstab.Notice) bool) {
	l.Spawn(Listen(ch, accept))
}

// SetRoot swaps the root widget. Call it before Run or from the loop
// goroutine.
func (l *Loop) SetRoot(root Widget) {
	if l.running && l.root != nil {
		UnmountTree(l.root)
		UnbindTree(l.root)
	}
	l.root = root
	if l.running && root != nil {
		BindTree(root, l.Services())
		MountTree(root)
		l.buffer.MarkAllDirty()
	}
}

// Post sends a message to the loop without blocking; a full queue drops it.
func (l *Loop) Post(msg Message) {
	_ = l.tryPost(msg)
}

// TryPost sends a message to the loop without blocking.
func (l *Loop) TryPost(msg Message) bool {
	return l.tryPost(msg)
}

func (l *Loop) tryPost(msg Message) bool {
	if l == nil || l.messages == nil || msg == nil {
		return false
	}
	select {
	case l.messages <- msg:
		return true
	default:
		return false
	}
}

// Run processes messages until Quit or context cancellation. It returns
// nil after Quit and the context error after cancellation.
func (l *Loop) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if l.running {
		return ErrRunning
	}
	taskCtx, taskCancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.taskCtx = taskCtx
	l.taskCancel = taskCancel
	l.mu.Unlock()
	defer func() {
		taskCancel()
		l.mu.Lock()
		l.taskCtx = nil
		l.taskCancel = nil
		l.mu.Unlock()
	}()

	if l.update == nil {
		l.update = DefaultUpdate
	}
	l.running = true
	defer func() { l.running = false }()

	if l.root != nil {
		root := l.root
		BindTree(root, l.Services())
		MountTree(root)
		defer func() {
			UnmountTree(root)
			UnbindTree(root)
		}()
	}
	l.startPendingEffects()
	l.buffer.MarkAllDirty()
	l.render()

	var ticks <-chan time.Time
	if l.tickRate > 0 {
		ticker := time.NewTicker(l.tickRate)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		var msg Message
		dirty := false
		select {
		case <-ctx.Done():
			l.cancelTasks()
			return ctx.Err()
		case msg = <-l.messages:
		case now := <-ticks:
			msg = TickMsg{Time: now}
		}

		if _, ok := msg.(QuitMsg); ok {
			l.cancelTasks()
			return nil
		}
		if l.update(l, msg) {
			dirty = true
		}
		if l.flushQueueIfNeeded(msg) {
			dirty = true
		}
		if _, ok := msg.(InvalidateMsg); ok {
			l.invalidator.resetPending()
		}
		if dirty {
			l.render()
		}
	}
}

// DefaultUpdate handles the loop's own messages.
func DefaultUpdate(loop *Loop, msg Message) bool {
	if loop == nil {
		return false
	}
	switch m := msg.(type) {
	case ResizeMsg:
		loop.buffer.Resize(m.Width, m.Height)
		return true
	case InvalidateMsg:
		return true
	case ErrorMsg:
		loop.logger.Warn("background effect failed", zap.Error(m.Err))
		return false
	default:
		return false
	}
}

// ExecuteCommand runs a command through the loop handler.
func (l *Loop) ExecuteCommand(cmd Command) bool {
	if l == nil {
		return false
	}
	return l.handleCommand(cmd)
}

func (l *Loop) handleCommand(cmd Command) bool {
	switch c := cmd.(type) {
	case Quit:
		l.Post(QuitMsg{})
		return false
	case Refresh:
		l.buffer.MarkAllDirty()
		return true
	case SendMsg:
		if c.Message != nil {
			l.Post(c.Message)
		}
		return false
	case Effect:
		l.Spawn(c)
		return false
	default:
		if l.commandHandler != nil {
			return l.commandHandler(cmd)
		}
		return false
	}
}

// Frames reports how many render passes reached the renderer.
func (l *Loop) Frames() int {
	return l.frames
}

func (l *Loop) render() {
	if l.root == nil {
		return
	}
	w, h := l.buffer.Size()
	next := NewBuffer(w, h)
	l.root.Render(RenderContext{Buffer: next, Bounds: Rect{Width: w, Height: h}})
	changed := l.buffer.IsDirty() || !slices.Equal(next.cells, l.buffer.cells)
	next.ClearDirty()
	l.buffer = next
	if !changed {
		return
	}
	l.frames++
	if l.renderer != nil {
		l.renderer(next)
	}
}

func (l *Loop) cancelTasks() {
	l.mu.Lock()
	cancel := l.taskCancel
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (l *Loop) startPendingEffects() {
	l.mu.Lock()
	effects := l.pendingEffects
	l.pendingEffects = nil
	ctx := l.taskCtx
	l.mu.Unlock()
	for _, effect := range effects {
		go effect.Run(ctx, l.tryPost)
	}
}

func (l *Loop) flushQueueIfNeeded(msg Message) bool {
	if l.stateQueue == nil || !shouldFlushQueue(l.flushPolicy, msg) {
		return false
	}
	if l.queueScheduler != nil {
		l.queueScheduler.resetPending()
	}
	return l.stateQueue.Drain(l.flushRounds) > 0
}
