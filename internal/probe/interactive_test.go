package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInteractiveSession(t *testing.T) {
	server := newDummyServer(t)

	received := make(chan string, 4)
	it, err := DialInteractive(context.Background(), newTarget(wsURL(server, "/echo"), ""), zap.NewNop(), func(msg string) {
		received <- msg
	})
	require.NoError(t, err)
	defer it.Close()

	require.NoError(t, it.Send("hello"))

	select {
	case msg := <-received:
		assert.Equal(t, "hello", msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no echo within deadline")
	}

	rtt, err := it.Ping()
	require.NoError(t, err)
	assert.Greater(t, rtt, time.Duration(0))

	sent, recv := it.Counts()
	assert.Equal(t, int64(1), sent)
	assert.Equal(t, int64(1), recv)

	it.Close()
	it.Close() // idempotent

	select {
	case <-it.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("receiver did not stop after close")
	}
}

func TestInteractiveDialFailure(t *testing.T) {
	server := newDummyServer(t)

	_, err := DialInteractive(context.Background(), newTarget(wsURL(server, "/reject"), ""), zap.NewNop(), func(string) {})
	require.Error(t, err)
	assert.Equal(t, KindHandshakeRejected, KindOf(err))
}

func TestInteractivePeerClose(t *testing.T) {
	server := newDummyServer(t)

	target := newTarget(wsURL(server, "/flaky"), "")

	// Flaky drops half its connections instead of echoing; retry until
	// we land on one it drops.
	for i := 0; i < 20; i++ {
		echoed := make(chan string, 1)
		it, err := DialInteractive(context.Background(), target, zap.NewNop(), func(msg string) {
			echoed <- msg
		})
		require.NoError(t, err)
		require.NoError(t, it.Send("flip"))

		select {
		case <-it.Done():
			it.Close()
			return // peer hung up without a close frame
		case <-echoed:
			it.Close() // survived the flip, try again
		case <-time.After(2 * time.Second):
			t.Fatal("flaky endpoint neither echoed nor dropped")
		}
	}
	t.Fatal("flaky endpoint never dropped a connection")
}
