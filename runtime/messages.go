package runtime

import (
	"time"

	"github.com/odvcencio/furry-store/crosstab"
)

// Message represents an event flowing into the loop.
// Messages come from timers, channels, or background goroutines.
type Message interface {
	isMessage()
}

// ResizeMsg changes the size of the render buffer.
type ResizeMsg struct {
	Width  int
	Height int
}

func (ResizeMsg) isMessage() {}

// TickMsg is sent on each tick when a tick rate is configured.
type TickMsg struct {
	Time time.Time
}

func (TickMsg) isMessage() {}

// QueueFlushMsg triggers a state queue flush in the update loop.
type QueueFlushMsg struct{}

func (QueueFlushMsg) isMessage() {}

// InvalidateMsg requests a render pass.
type InvalidateMsg struct{}

func (InvalidateMsg) isMessage() {}

// NoticeMsg carries a notice received from another execution context.
type NoticeMsg struct {
	Notice crosstab.Notice
}

func (NoticeMsg) isMessage() {}

// QuitMsg stops the loop.
type QuitMsg struct{}

func (QuitMsg) isMessage() {}

// ErrorMsg reports a failure from a background effect.
type ErrorMsg struct {
	Err error
}

func (ErrorMsg) isMessage() {}
