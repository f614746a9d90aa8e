package runtime

import "context"

// Command represents an action emitted by widgets or update handlers.
type Command interface {
	Command()
}

// PostFunc sends a message into the loop.
// It returns false when the message queue is full.
type PostFunc func(Message) bool

// Quit signals the loop should exit.
type Quit struct{}

func (Quit) Command() {}

// Refresh forces the next render to reach the renderer.
type Refresh struct{}

func (Refresh) Command() {}

// SendMsg posts a message into the loop.
type SendMsg struct {
	Message Message
}

func (SendMsg) Command() {}

// Send wraps a message in a SendMsg command.
func Send(msg Message) Command {
	return SendMsg{Message: msg}
}

// Effect runs work in a background goroutine.
// Use the provided context for cancellation and PostFunc to emit messages.
type Effect struct {
	Run func(ctx context.Context, post PostFunc)
}

func (Effect) Command() {}
