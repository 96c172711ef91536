package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDial(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		resp   *http.Response
		want   Kind
		status int
	}{
		{
			name:   "bad handshake carries status",
			err:    websocket.ErrBadHandshake,
			resp:   &http.Response{StatusCode: http.StatusForbidden},
			want:   KindHandshakeRejected,
			status: http.StatusForbidden,
		},
		{
			name: "bad handshake without response",
			err:  websocket.ErrBadHandshake,
			want: KindHandshakeRejected,
		},
		{
			name: "context deadline",
			err:  context.DeadlineExceeded,
			want: KindConnectTimeout,
		},
		{
			name: "socket deadline",
			err:  &net.OpError{Op: "dial", Err: os.ErrDeadlineExceeded},
			want: KindConnectTimeout,
		},
		{
			name: "refused connection",
			err:  &net.OpError{Op: "dial", Err: errors.New("connection refused")},
			want: KindTransport,
		},
		{
			name: "dns failure",
			err:  &net.DNSError{Err: "no such host", Name: "nowhere.invalid"},
			want: KindTransport,
		},
		{
			name: "anything else",
			err:  errors.New("weird"),
			want: KindUnclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyDial(tt.err, tt.resp)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, tt.status, got.Status)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyAwait(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"read deadline", os.ErrDeadlineExceeded, KindResponseTimeout},
		{"wrapped read deadline", &net.OpError{Op: "read", Err: os.ErrDeadlineExceeded}, KindResponseTimeout},
		{"close frame", &websocket.CloseError{Code: websocket.CloseAbnormalClosure}, KindClosedUnexpectedly},
		{"eof", io.EOF, KindClosedUnexpectedly},
		{"unexpected eof", io.ErrUnexpectedEOF, KindClosedUnexpectedly},
		{"locally closed", net.ErrClosed, KindClosedUnexpectedly},
		{"reset", &net.OpError{Op: "read", Err: errors.New("connection reset by peer")}, KindTransport},
		{"anything else", errors.New("odd"), KindUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAwait(tt.err).Kind)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindHandshakeRejected, Status: 403, Cause: websocket.ErrBadHandshake}
	assert.Contains(t, err.Error(), "handshake rejected")
	assert.Contains(t, err.Error(), "HTTP 403")

	bare := &Error{Kind: KindTransport}
	assert.Equal(t, "transport error", bare.Error())
}

func TestConfigf(t *testing.T) {
	err := Configf("count must be positive, got %d", -1)
	assert.Equal(t, KindConfiguration, KindOf(err))
	assert.Contains(t, err.Error(), "got -1")

	var pe *Error
	require.True(t, errors.As(err, &pe))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindResponseTimeout, KindOf(&Error{Kind: KindResponseTimeout}))
	assert.Equal(t, KindUnclassified, KindOf(errors.New("raw")))
}

func TestKindTextRoundTrip(t *testing.T) {
	for _, kind := range Kinds() {
		text, err := kind.MarshalText()
		require.NoError(t, err)

		var back Kind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, kind, back)
	}

	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("no such kind")))
}
