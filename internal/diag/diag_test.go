package diag

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wsprobe/internal/probe"
)

func TestToHTTPURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/ws", ToHTTPURL("ws://localhost:8080/ws"))
	assert.Equal(t, "https://example.com/feed", ToHTTPURL("wss://example.com/feed"))
	assert.Equal(t, "http://already.plain", ToHTTPURL("http://already.plain"))
}

func TestProbeReportsServerDetails(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>hello</html>"))
	}))
	t.Cleanup(server.Close)

	target := probe.Target{
		URI:     "ws" + strings.TrimPrefix(server.URL, "http") + "/",
		Headers: map[string]string{"Authorization": "Bearer tok"},
		Timeout: 2 * time.Second,
	}

	var buf bytes.Buffer
	err := Probe(context.Background(), &buf, target, zap.NewNop())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "HTTP PROBE")
	assert.Contains(t, out, "200 OK")
	assert.Contains(t, out, "text/html")
	assert.Contains(t, out, "<html>hello</html>")
	assert.Contains(t, out, "plain HTTP")
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestProbeNothingListening(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	uri := "ws" + strings.TrimPrefix(server.URL, "http")
	server.Close()

	var buf bytes.Buffer
	err := Probe(context.Background(), &buf, probe.Target{URI: uri, Timeout: time.Second}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Nothing seems to be listening")
}

func TestProbeTruncatesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 5000))
	}))
	t.Cleanup(server.Close)

	var buf bytes.Buffer
	target := probe.Target{URI: "ws" + strings.TrimPrefix(server.URL, "http"), Timeout: time.Second}
	require.NoError(t, Probe(context.Background(), &buf, target, zap.NewNop()))

	assert.NotContains(t, buf.String(), strings.Repeat("x", bodyPreviewLimit+1))
}

func TestHints(t *testing.T) {
	assert.Contains(t, hint(http.StatusUnauthorized), "credentials")
	assert.Contains(t, hint(http.StatusForbidden), "credentials")
	assert.Contains(t, hint(http.StatusNotFound), "path")
	assert.Contains(t, hint(http.StatusUpgradeRequired), "upgrade")
	assert.Contains(t, hint(http.StatusOK), "plain HTTP")
	assert.Contains(t, hint(http.StatusInternalServerError), "500")
}
