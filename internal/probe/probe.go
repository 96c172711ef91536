package probe

import (
	"encoding/json"
	"net/url"
	"time"
)

// Target describes one WebSocket endpoint to probe. It is immutable
// once handed to a Session.
type Target struct {
	URI           string
	Payload       string // empty = ping/pong health check only
	Headers       map[string]string
	Timeout       time.Duration // bounds both connect and response waits
	SkipTLSVerify bool
	Debug         bool
}

// Validate rejects targets that can never work, before any connection
// is attempted.
func (t Target) Validate() error {
	u, err := url.Parse(t.URI)
	if err != nil {
		return Configf("invalid URI %q: %v", t.URI, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return Configf("URI must use the ws:// or wss:// scheme, got %q", t.URI)
	}
	if u.Host == "" {
		return Configf("URI %q has no host", t.URI)
	}
	if t.Timeout <= 0 {
		return Configf("timeout must be positive, got %s", t.Timeout)
	}
	return nil
}

// ParseHeaders decodes the --headers value, a JSON object of handshake
// headers.
func ParseHeaders(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	headers := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &headers); err != nil {
		return nil, Configf("headers must be a JSON object of strings: %v", err)
	}
	return headers, nil
}

// Outcome is the record of one finished attempt. It is created exactly
// once per session run and never mutated afterwards.
type Outcome struct {
	Seq        int
	Start      time.Time
	Duration   time.Duration
	Connected  bool
	MessageOK  bool
	PingRTT    time.Duration // 0 when no ping was performed
	MessageRTT time.Duration // 0 when no reply arrived
	Sent       int
	Received   int
	Err        error // nil on success, *Error otherwise
}

// Success reports whether the attempt achieved its goal: connection
// established and, when a probe exchange was configured, completed in
// time.
func (o Outcome) Success() bool {
	return o.Connected && o.Err == nil
}
