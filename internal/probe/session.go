package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Session performs single probe attempts against one target. It holds
// no per-attempt state, so one Session may run attempts concurrently.
type Session struct {
	target Target
	tmpl   *PayloadTemplate // nil when the payload is static
	logger *zap.Logger
}

func NewSession(target Target, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{target: target, logger: logger}
	if target.SkipTLSVerify {
		logger.Warn("TLS certificate verification disabled", zap.String("uri", target.URI))
	}
	if HasTemplate(target.Payload) {
		tmpl, err := ParsePayload(target.Payload)
		if err != nil {
			return nil, err
		}
		s.tmpl = tmpl
	}
	return s, nil
}

// Run performs exactly one attempt: connect, probe, close. With a
// payload configured it sends the payload and waits for one reply;
// without one it measures a ping/pong round-trip. The connection is
// closed on every exit path. Failures are reported in the outcome,
// never panicked or retried.
func (s *Session) Run(ctx context.Context, seq int) (o Outcome) {
	o.Seq = seq
	o.Start = time.Now()
	defer func() {
		o.Duration = time.Since(o.Start)
	}()

	dialCtx, cancel := context.WithTimeout(ctx, s.target.Timeout)
	defer cancel()

	conn, err := dial(dialCtx, s.target)
	if err != nil {
		o.Err = err
		s.logger.Debug("dial failed",
			zap.String("uri", s.target.URI),
			zap.Int("seq", seq),
			zap.Error(err))
		return o
	}
	o.Connected = true
	defer closeGracefully(conn)

	s.logger.Debug("connected", zap.String("uri", s.target.URI), zap.Int("seq", seq))

	if s.target.Payload == "" {
		o.PingRTT, o.Err = s.ping(conn)
		return o
	}

	payload := s.target.Payload
	if s.tmpl != nil {
		payload, err = s.tmpl.Render(seq)
		if err != nil {
			o.Err = Configf("render payload: %v", err)
			return o
		}
	}

	sendAt := time.Now()
	conn.SetWriteDeadline(time.Now().Add(s.target.Timeout))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		o.Err = ClassifyAwait(err)
		return o
	}
	o.Sent = 1

	conn.SetReadDeadline(time.Now().Add(s.target.Timeout))
	_, reply, err := conn.ReadMessage()
	if err != nil {
		o.Err = ClassifyAwait(err)
		return o
	}
	o.Received = 1
	o.MessageOK = true
	o.MessageRTT = time.Since(sendAt)

	s.logger.Debug("reply received",
		zap.Int("seq", seq),
		zap.Duration("rtt", o.MessageRTT),
		zap.Int("bytes", len(reply)))
	return o
}

// ping measures one ping/pong round-trip. Pong frames are only
// delivered while a read is in flight, so the handler poisons the read
// deadline to break the pending ReadMessage as soon as the pong lands.
func (s *Session) ping(conn *websocket.Conn) (time.Duration, error) {
	pong := make(chan time.Time, 1)
	conn.SetPongHandler(func(string) error {
		select {
		case pong <- time.Now():
		default:
		}
		conn.SetReadDeadline(time.Now())
		return nil
	})

	start := time.Now()
	conn.SetWriteDeadline(time.Now().Add(s.target.Timeout))
	if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		return 0, ClassifyAwait(err)
	}

	conn.SetReadDeadline(time.Now().Add(s.target.Timeout))
	var readErr error
	for readErr == nil {
		// Data frames arriving before the pong are drained and dropped.
		_, _, readErr = conn.ReadMessage()
	}

	select {
	case at := <-pong:
		return at.Sub(start), nil
	default:
	}

	cerr := ClassifyAwait(readErr)
	if cerr.Kind == KindResponseTimeout {
		return 0, &Error{Kind: KindResponseTimeout, Cause: fmt.Errorf("no pong within %s", s.target.Timeout)}
	}
	return 0, cerr
}

// dial opens one WebSocket connection to the target.
func dial(ctx context.Context, target Target) (*websocket.Conn, error) {
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: target.Timeout,
	}
	if target.SkipTLSVerify {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	conn, resp, err := dialer.DialContext(ctx, target.URI, headerOf(target.Headers))
	if err != nil {
		return nil, ClassifyDial(err, resp)
	}
	return conn, nil
}

func headerOf(m map[string]string) http.Header {
	if len(m) == 0 {
		return nil
	}
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}

// closeGracefully attempts a close handshake before tearing down the
// connection. Errors are ignored: the outcome is already decided by
// the time we get here.
func closeGracefully(conn *websocket.Conn) {
	deadline := time.Now().Add(time.Second)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	conn.Close()
}
