package probe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Interactive is a long-lived probe connection driven by user input.
// A background receiver delivers every inbound message through the
// onMessage callback until the connection ends.
type Interactive struct {
	conn   *websocket.Conn
	target Target
	logger *zap.Logger

	writeMu sync.Mutex // serializes data writes; the receiver owns reads
	pong    chan time.Time
	done    chan struct{}
	once    sync.Once

	sent     int64
	received int64
}

// DialInteractive connects and starts the receiver goroutine.
func DialInteractive(ctx context.Context, target Target, logger *zap.Logger, onMessage func(string)) (*Interactive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dialCtx, cancel := context.WithTimeout(ctx, target.Timeout)
	defer cancel()

	conn, err := dial(dialCtx, target)
	if err != nil {
		return nil, err
	}

	it := &Interactive{
		conn:   conn,
		target: target,
		logger: logger,
		pong:   make(chan time.Time, 1),
		done:   make(chan struct{}),
	}
	conn.SetPongHandler(func(string) error {
		select {
		case it.pong <- time.Now():
		default:
		}
		return nil
	})

	go it.readLoop(onMessage)
	return it, nil
}

func (it *Interactive) readLoop(onMessage func(string)) {
	defer close(it.done)
	for {
		_, msg, err := it.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				it.logger.Debug("receiver stopped", zap.Error(err))
			}
			return
		}
		atomic.AddInt64(&it.received, 1)
		onMessage(string(msg))
	}
}

// Send writes one text message.
func (it *Interactive) Send(text string) error {
	it.writeMu.Lock()
	defer it.writeMu.Unlock()

	it.conn.SetWriteDeadline(time.Now().Add(it.target.Timeout))
	if err := it.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return ClassifyAwait(err)
	}
	atomic.AddInt64(&it.sent, 1)
	return nil
}

// Ping measures one ping/pong round-trip. The receiver loop must be
// alive to observe the pong.
func (it *Interactive) Ping() (time.Duration, error) {
	start := time.Now()
	if err := it.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(it.target.Timeout)); err != nil {
		return 0, ClassifyAwait(err)
	}

	select {
	case at := <-it.pong:
		return at.Sub(start), nil
	case <-time.After(it.target.Timeout):
		return 0, &Error{Kind: KindResponseTimeout, Cause: fmt.Errorf("no pong within %s", it.target.Timeout)}
	case <-it.done:
		return 0, &Error{Kind: KindClosedUnexpectedly, Cause: errors.New("connection closed while waiting for pong")}
	}
}

// Counts returns messages sent and received so far.
func (it *Interactive) Counts() (sent, received int64) {
	return atomic.LoadInt64(&it.sent), atomic.LoadInt64(&it.received)
}

// Done is closed once the receiver loop exits.
func (it *Interactive) Done() <-chan struct{} {
	return it.done
}

// Close ends the session gracefully. Safe to call more than once.
func (it *Interactive) Close() {
	it.once.Do(func() {
		closeGracefully(it.conn)
	})
}
