package crosstab

import (
	"context"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NATS sends notices on a NATS subject.
type NATS struct {
	conn    *nats.Conn
	subject string
	owned   bool
	logger  *zap.Logger
}

// NewNATS connects to url.
func NewNATS(url, subject string, logger *zap.Logger) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("furry-store"))
	if err != nil {
		return nil, errors.Wrapf(err, "connect nats %s", url)
	}
	n := NewNATSFromConn(conn, subject, logger)
	n.owned = true
	return n, nil
}

// NewNATSFromConn uses an existing connection. Close leaves it open.
func NewNATSFromConn(conn *nats.Conn, subject string, logger *zap.Logger) *NATS {
	if subject == "" {
		subject = "furrystore.notices"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATS{conn: conn, subject: subject, logger: logger}
}

func (n *NATS) Broadcast(_ context.Context, notice Notice) error {
	data, err := Encode(notice)
	if err != nil {
		return err
	}
	return n.conn.Publish(n.subject, data)
}

func (n *NATS) Listen(ctx context.Context, fn func(Notice)) (func(), error) {
	if fn == nil {
		return func() {}, nil
	}
	sub, err := n.conn.Subscribe(n.subject, func(msg *nats.Msg) {
		notice, err := Decode(msg.Data)
		if err != nil {
			n.logger.Debug("dropping malformed notice", zap.String("subject", n.subject), zap.Error(err))
			return
		}
		fn(notice)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe %s", n.subject)
	}
	if err := n.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, errors.Wrap(err, "flush nats subscription")
	}

	stopped := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			_ = sub.Unsubscribe()
			close(stopped)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-stopped:
		}
	}()
	return stop, nil
}

func (n *NATS) Close() error {
	if n.owned {
		n.conn.Close()
	}
	return nil
}
