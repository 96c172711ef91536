package dummy

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type ServerConfig struct {
	Port int
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler returns the endpoint mux so tests can mount it on an
// httptest server.
func Handler() http.Handler {
	mux := http.NewServeMux()

	// 1. Echo Endpoint (replies immediately, answers pings)
	mux.HandleFunc("/echo", echoHandler(nil))

	// 2. Slow Endpoint (1s-2s before each reply) - good for testing timeouts
	mux.HandleFunc("/slow", echoHandler(func() time.Duration {
		return time.Duration(rand.Intn(1000)+1000) * time.Millisecond
	}))

	// 3. Silent Endpoint (accepts the connection, never says anything)
	mux.HandleFunc("/silent", silentHandler)

	// 4. Flaky Endpoint (randomly drops the connection instead of replying)
	mux.HandleFunc("/flaky", flakyHandler)

	// 5. Reject Endpoint (plain HTTP 403, never upgrades)
	mux.HandleFunc("/reject", rejectHandler)

	return mux
}

// echoHandler upgrades and echoes every message, with an optional
// artificial delay before each reply. Pings are answered by gorilla's
// default handler while the read loop is blocked.
func echoHandler(delay func() time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if delay != nil {
				time.Sleep(delay())
			}
			if err := conn.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}
}

// silentHandler reads forever without ever writing back. The default
// ping handler would pong, so it is overridden too.
func silentHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetPingHandler(func(string) error { return nil })
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// flakyHandler echoes or drops the connection mid-conversation with a
// coin flip, without sending a close frame.
func flakyHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if rand.Float32() < 0.5 {
			return
		}
		if err := conn.WriteMessage(mt, msg); err != nil {
			return
		}
	}
}

func rejectHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "websocket upgrade refused", http.StatusForbidden)
}

func Start(cfg ServerConfig) {
	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("👻 Dummy WebSocket server running on ws://localhost%s\n", addr)
	fmt.Println("   Endpoints: /echo, /slow, /silent, /flaky, /reject")

	server := &http.Server{
		Addr:    addr,
		Handler: Handler(),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server failed: %v\n", err)
		}
	}()
}
