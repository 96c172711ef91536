// Package diag answers the question "is anything listening there at
// all?" after a WebSocket connect fails, by probing the HTTP rendering
// of the same URI.
package diag

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"wsprobe/internal/probe"
)

const bodyPreviewLimit = 500

// ToHTTPURL maps a ws(s):// URI to its http(s):// equivalent.
func ToHTTPURL(uri string) string {
	switch {
	case strings.HasPrefix(uri, "wss://"):
		return "https://" + strings.TrimPrefix(uri, "wss://")
	case strings.HasPrefix(uri, "ws://"):
		return "http://" + strings.TrimPrefix(uri, "ws://")
	default:
		return uri
	}
}

// Probe issues a plain GET against the target's HTTP URL with the same
// headers, timeout and TLS settings as the failed probe, and prints
// what the server had to say. Its own failures are non-fatal.
func Probe(ctx context.Context, w io.Writer, target probe.Target, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpURL := ToHTTPURL(target.URI)

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if target.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	client := &http.Client{Timeout: target.Timeout, Transport: transport}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httpURL, nil)
	if err != nil {
		return err
	}
	for k, v := range target.Headers {
		req.Header.Set(k, v)
	}

	logger.Debug("http fallback probe", zap.String("url", httpURL))

	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(w, "\n🔍 HTTP PROBE (%s)\n", httpURL)
		fmt.Fprintf(w, "   No HTTP response either: %v\n", err)
		fmt.Fprintf(w, "   Nothing seems to be listening at this address.\n")
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, bodyPreviewLimit))

	fmt.Fprintf(w, "\n🔍 HTTP PROBE (%s)\n", httpURL)
	fmt.Fprintf(w, "   Status       : %s\n", resp.Status)
	fmt.Fprintf(w, "   Content-Type : %s\n", resp.Header.Get("Content-Type"))
	for _, h := range []string{"Upgrade", "Connection", "Sec-WebSocket-Version", "Server"} {
		if v := resp.Header.Get(h); v != "" {
			fmt.Fprintf(w, "   %-13s: %s\n", h, v)
		}
	}
	if len(body) > 0 {
		fmt.Fprintf(w, "   Body         : %s\n", strings.TrimSpace(string(body)))
	}
	fmt.Fprintf(w, "   %s\n", hint(resp.StatusCode))
	return nil
}

// hint turns the status code into a one-line reading of the situation.
func hint(status int) string {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return "Hint: the server is there but wants credentials; check your --headers."
	case status == http.StatusNotFound:
		return "Hint: the host answers HTTP but not on this path; check the URI path."
	case status == http.StatusUpgradeRequired:
		return "Hint: the server expects a WebSocket upgrade here; the handshake itself is being refused."
	case status >= 200 && status < 400:
		return "Hint: this endpoint speaks plain HTTP; it may not be a WebSocket endpoint."
	default:
		return fmt.Sprintf("Hint: the server answered HTTP %d; the endpoint is reachable but unhappy.", status)
	}
}
