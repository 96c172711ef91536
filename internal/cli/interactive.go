package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wsprobe/internal/diag"
	"wsprobe/internal/probe"
)

// RunInteractive opens one persistent connection and bridges stdin to
// it: typed lines are sent as text messages, inbound messages are
// printed as they arrive, and a few commands are interpreted locally.
func RunInteractive(target probe.Target, logger *zap.Logger) int {
	rule := strings.Repeat("=", 50)
	fmt.Printf("\n🎮 INTERACTIVE MODE\n%s\n", rule)
	fmt.Printf("Target URI : %s\n", target.URI)
	fmt.Println("Type a message and press enter to send it.")
	fmt.Println("Commands: ping, stats, help, quit")
	fmt.Printf("%s\n", rule)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	start := time.Now()
	it, err := probe.DialInteractive(context.Background(), target, logger, func(msg string) {
		fmt.Printf("📥 %s\n", msg)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ connect failed: %v\n", err)
		if target.Debug {
			diag.Probe(context.Background(), os.Stdout, target, logger)
		}
		printSessionSummary(os.Stdout, time.Since(start), false, 0, 0)
		return ExitProbe
	}
	defer it.Close()
	fmt.Println("✅ Connected")

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

loop:
	for {
		select {
		case <-sigCh:
			fmt.Println("\n🛑 Interrupted")
			break loop
		case <-it.Done():
			fmt.Println("🔌 Connection closed by peer")
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop // stdin EOF
			}
			if quit := handleLine(it, line); quit {
				break loop
			}
		}
	}

	it.Close()
	sent, received := it.Counts()
	printSessionSummary(os.Stdout, time.Since(start), true, sent, received)
	return ExitOK
}

// handleLine interprets one line of input. Returns true on quit.
func handleLine(it *probe.Interactive, line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return false
	case "quit", "exit", "q":
		return true
	case "ping":
		rtt, err := it.Ping()
		if err != nil {
			fmt.Printf("❌ ping failed: %v\n", err)
			return false
		}
		fmt.Printf("🏓 pong in %s\n", rtt.Round(time.Microsecond))
	case "stats":
		sent, received := it.Counts()
		fmt.Printf("📊 sent %d, received %d\n", sent, received)
	case "help":
		fmt.Println("Commands:")
		fmt.Println("  ping   measure a ping/pong round-trip")
		fmt.Println("  stats  show message counts")
		fmt.Println("  quit   close the connection and exit")
		fmt.Println("Anything else is sent to the server as a text message.")
	default:
		if err := it.Send(line); err != nil {
			fmt.Printf("❌ send failed: %v\n", err)
			return false
		}
		fmt.Printf("📤 %s\n", line)
	}
	return false
}

func printSessionSummary(w io.Writer, elapsed time.Duration, connected bool, sent, received int64) {
	status := "yes"
	if !connected {
		status = "no"
	}
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(w, "\n📊 SESSION SUMMARY\n%s\n", rule)
	fmt.Fprintf(w, "Connected      : %s\n", status)
	fmt.Fprintf(w, "Duration       : %s\n", elapsed.Round(time.Second))
	fmt.Fprintf(w, "Messages Sent  : %d\n", sent)
	fmt.Fprintf(w, "Messages Recv  : %d\n", received)
	fmt.Fprintf(w, "%s\n", rule)
}
