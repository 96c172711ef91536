package dummy

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialEndpoint(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestEchoEndpoint(t *testing.T) {
	server := httptest.NewServer(Handler())
	t.Cleanup(server.Close)

	conn := dialEndpoint(t, server, "/echo")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("marco")))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "marco", string(msg))
}

func TestSilentEndpointNeverReplies(t *testing.T) {
	server := httptest.NewServer(Handler())
	t.Cleanup(server.Close)

	conn := dialEndpoint(t, server, "/silent")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("anyone home?")))

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, os.IsTimeout(err), "want a read deadline, got %v", err)
}

func TestRejectEndpoint(t *testing.T) {
	server := httptest.NewServer(Handler())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/reject")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, wsResp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/reject", nil)
	require.Error(t, err)
	require.NotNil(t, wsResp)
	assert.Equal(t, http.StatusForbidden, wsResp.StatusCode)
}
