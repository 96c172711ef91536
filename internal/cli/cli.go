package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wsprobe/internal/banner"
	"wsprobe/internal/diag"
	"wsprobe/internal/probe"
	"wsprobe/internal/report"
	"wsprobe/internal/runner"
	"wsprobe/internal/stats"
)

// Exit codes. Attempt failures are part of normal operation and only
// move the exit code in basic mode, where the run is the attempt.
const (
	ExitOK     = 0
	ExitProbe  = 1
	ExitConfig = 2
)

// Start runs one probing session end to end and returns the process
// exit code. It installs its own outcome hook, prints per-attempt
// lines and the final summary, and reacts to SIGINT/SIGTERM by
// cancelling the run while in-flight attempts drain.
func Start(cfg runner.Config, outPrefix string, logger *zap.Logger) int {
	fmt.Println(banner.GetString())
	printHeader(cfg)

	rep := report.New(os.Stdout)

	var outcomes []probe.Outcome
	var last probe.Outcome
	cfg.OnOutcome = func(o probe.Outcome, s stats.Snapshot) {
		last = o
		rep.AttemptLine(o)
		if cfg.Mode == runner.ModeContinuous {
			rep.Interim(s)
		}
		if outPrefix != "" {
			outcomes = append(outcomes, o)
		}
	}

	r, err := runner.NewRunner(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfig
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Println("\n🛑 Interrupted, letting in-flight attempts finish...")
		cancel()
		<-sigCh
		os.Exit(130) // second signal: give up waiting
	}()

	start := time.Now()
	snap, err := r.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfig
	}

	cancelled := r.State() == runner.StateCancelled
	rep.Summary(snap, time.Since(start), cancelled)

	if cfg.Mode == runner.ModeBasic && cfg.Target.Debug && !last.Connected {
		diag.Probe(context.Background(), os.Stdout, cfg.Target, logger)
	}

	if outPrefix != "" {
		writeReports(outPrefix, cfg, start, time.Since(start), cancelled, snap, outcomes)
	}

	if cfg.Mode == runner.ModeBasic && snap.Successes == 0 {
		return ExitProbe
	}
	return ExitOK
}

func printHeader(cfg runner.Config) {
	rule := strings.Repeat("=", 50)

	fmt.Printf("\n🔍 STARTING WEBSOCKET PROBE\n%s\n", rule)
	fmt.Printf("Target URI : %s\n", cfg.Target.URI)
	fmt.Printf("Mode       : %s\n", cfg.Mode)
	if cfg.Target.Payload != "" {
		fmt.Printf("Message    : %s\n", cfg.Target.Payload)
	} else {
		fmt.Printf("Message    : (none, ping/pong check only)\n")
	}
	switch cfg.Mode {
	case runner.ModeContinuous:
		fmt.Printf("Interval   : %s\n", cfg.Interval)
	case runner.ModeStress:
		fmt.Printf("Count      : %d\n", cfg.Count)
		fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	}
	fmt.Printf("Timeout    : %s\n", cfg.Target.Timeout)
	if len(cfg.Target.Headers) > 0 {
		fmt.Printf("Headers    : %d custom\n", len(cfg.Target.Headers))
	}
	if cfg.Target.SkipTLSVerify {
		fmt.Printf("⚠️  TLS certificate verification disabled\n")
	}
	fmt.Printf("%s\n\n", rule)
}

func writeReports(prefix string, cfg runner.Config, startedAt time.Time, elapsed time.Duration, cancelled bool, snap stats.Snapshot, outcomes []probe.Outcome) {
	fmt.Printf("\n💾 Generating reports with prefix: %s\n", prefix)

	rec := report.NewRunRecord(cfg.Target, cfg.Mode.String(), startedAt, elapsed, cancelled, snap, outcomes)
	if err := report.ExportJSON(rec, prefix+"_summary.json"); err != nil {
		fmt.Printf("   JSON export failed: %v\n", err)
		return
	}
	if err := report.ExportCSV(outcomes, prefix+".csv"); err != nil {
		fmt.Printf("   CSV export failed: %v\n", err)
		return
	}
	fmt.Printf("✅ Reports saved to %s{_summary.json,.csv}\n", prefix)
}
