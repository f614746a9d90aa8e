package runtime

import (
	"context"
	"time"

	"github.com/odvcencio/furry-store/crosstab"
)

// After posts a message after a delay.
func After(delay time.Duration, msg Message) Effect {
	return Effect{
		Run: func(ctx context.Context, post PostFunc) {
			if msg == nil || post == nil || delay <= 0 {
				if msg != nil && post != nil && delay <= 0 {
					post(msg)
				}
				return
			}
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				post(msg)
			}
		},
	}
}

// Every posts messages on a fixed interval.
// Returning nil from fn skips posting.
func Every(interval time.Duration, fn func(time.Time) Message) Effect {
	return Effect{
		Run: func(ctx context.Context, post PostFunc) {
			if interval <= 0 || fn == nil || post == nil {
				return
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case now := <-ticker.C:
					if msg := fn(now); msg != nil {
						post(msg)
					}
				}
			}
		},
	}
}

// Listen posts a NoticeMsg for every notice received on ch until the
// context ends. Notices rejected by accept are dropped; a nil accept keeps
// all of them. A failed subscription is posted as an ErrorMsg.
func Listen(ch crosstab.Channel, accept func(crosstab.Notice) bool) Effect {
	return Effect{
		Run: func(ctx context.Context, post PostFunc) {
			if ch == nil || post == nil {
				return
			}
			stop, err := ch.Listen(ctx, func(n crosstab.Notice) {
				if accept != nil && !accept(n) {
					return
				}
				post(NoticeMsg{Notice: n})
			})
			if err != nil {
				post(ErrorMsg{Err: err})
				return
			}
			defer stop()
			<-ctx.Done()
		},
	}
}
