package probe

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/gorilla/websocket"
)

// Kind classifies attempt failures. Every failed attempt carries exactly
// one kind; nothing outside this file inspects transport error types.
type Kind int

const (
	KindConfiguration Kind = iota
	KindConnectTimeout
	KindHandshakeRejected
	KindResponseTimeout
	KindClosedUnexpectedly
	KindTransport
	KindUnclassified
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindConnectTimeout:
		return "connect timeout"
	case KindHandshakeRejected:
		return "handshake rejected"
	case KindResponseTimeout:
		return "response timeout"
	case KindClosedUnexpectedly:
		return "connection closed unexpectedly"
	case KindTransport:
		return "transport error"
	default:
		return "unclassified error"
	}
}

// MarshalText makes kinds appear by name in JSON exports and map keys.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names MarshalText produces, so exported
// run records can be read back.
func (k *Kind) UnmarshalText(text []byte) error {
	name := string(text)
	for _, kind := range Kinds() {
		if kind.String() == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown failure kind %q", name)
}

// Kinds lists all failure kinds in reporting order.
func Kinds() []Kind {
	return []Kind{
		KindConfiguration,
		KindConnectTimeout,
		KindHandshakeRejected,
		KindResponseTimeout,
		KindClosedUnexpectedly,
		KindTransport,
		KindUnclassified,
	}
}

// Error is a classified attempt failure.
type Error struct {
	Kind   Kind
	Status int // HTTP status for rejected handshakes, 0 otherwise
	Cause  error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %v", e.Kind, e.Status, e.Cause)
	}
	if e.Cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Configf builds a configuration-kind error. Configuration problems are
// the only errors that abort a run instead of being folded into it.
func Configf(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Cause: fmt.Errorf(format, args...)}
}

// KindOf extracts the kind from a classified error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnclassified
}

// ClassifyDial translates a failed connection attempt. resp is the
// handshake response gorilla hands back alongside ErrBadHandshake and
// may be nil.
func ClassifyDial(err error, resp *http.Response) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, websocket.ErrBadHandshake):
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return &Error{Kind: KindHandshakeRejected, Status: status, Cause: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return &Error{Kind: KindConnectTimeout, Cause: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindConnectTimeout, Cause: err}
	case isNetworkErr(err):
		return &Error{Kind: KindTransport, Cause: err}
	default:
		return &Error{Kind: KindUnclassified, Cause: err}
	}
}

// ClassifyAwait translates errors from the exchange phase, after the
// connection is up: writes, reads and the wait for a reply or pong.
func ClassifyAwait(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		return &Error{Kind: KindResponseTimeout, Cause: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindResponseTimeout, Cause: err}
	case isClosedErr(err):
		return &Error{Kind: KindClosedUnexpectedly, Cause: err}
	case isNetworkErr(err):
		return &Error{Kind: KindTransport, Cause: err}
	default:
		return &Error{Kind: KindUnclassified, Cause: err}
	}
}

// isClosedErr matches the ways a peer can vanish mid-conversation: a
// close frame while a reply is awaited, an abrupt TCP teardown, or a
// locally closed connection.
func isClosedErr(err error) bool {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return true
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed)
}

func isNetworkErr(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var unknownAuth x509.UnknownAuthorityError
	if errors.As(err, &unknownAuth) {
		return true
	}
	var hostnameErr x509.HostnameError
	return errors.As(err, &hostnameErr)
}
