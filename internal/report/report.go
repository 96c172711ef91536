package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"wsprobe/internal/probe"
	"wsprobe/internal/stats"
)

// Reporter renders attempt lines and the final summary block. It is a
// pure formatter: the same snapshot always produces the same text.
type Reporter struct {
	w io.Writer
}

func New(w io.Writer) *Reporter {
	if w == nil {
		w = os.Stdout
	}
	return &Reporter{w: w}
}

// AttemptLine prints one line for a finished attempt.
func (r *Reporter) AttemptLine(o probe.Outcome) {
	if o.Success() {
		var detail string
		switch {
		case o.MessageRTT > 0:
			detail = fmt.Sprintf("reply in %s", fmtDur(o.MessageRTT))
		case o.PingRTT > 0:
			detail = fmt.Sprintf("pong in %s", fmtDur(o.PingRTT))
		default:
			detail = "connected"
		}
		fmt.Fprintf(r.w, "✅ #%d %s\n", o.Seq, successStyle.Render(detail))
		return
	}
	fmt.Fprintf(r.w, "❌ #%d %s\n", o.Seq, errorStyle.Render(errText(o.Err)))
}

// Interim prints the rolling tally shown after each continuous-mode
// attempt.
func (r *Reporter) Interim(s stats.Snapshot) {
	line := fmt.Sprintf("%d attempts | %d ok | %d failed | %.1f%% success",
		s.Attempts, s.Successes, s.Failures, s.SuccessRate)
	fmt.Fprintf(r.w, "   %s\n", subtleStyle.Render(line))
}

// Summary prints the final report block.
func (r *Reporter) Summary(s stats.Snapshot, elapsed time.Duration, cancelled bool) {
	rule := strings.Repeat("=", 50)

	fmt.Fprintf(r.w, "\n📊 %s\n%s\n", titleStyle.Render("PROBE RESULTS"), rule)
	if cancelled {
		fmt.Fprintf(r.w, "Run            : %s\n", warnStyle.Render("cancelled"))
	}
	fmt.Fprintf(r.w, "Duration       : %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(r.w, "Attempts       : %d\n", s.Attempts)
	fmt.Fprintf(r.w, "Success        : %d\n", s.Successes)
	fmt.Fprintf(r.w, "Failures       : %d\n", s.Failures)
	fmt.Fprintf(r.w, "Messages Sent  : %d\n", s.Sent)
	fmt.Fprintf(r.w, "Messages Recv  : %d\n", s.Received)
	fmt.Fprintf(r.w, "Success Rate   : %s\n", r.successRate(s))

	if s.Ping.Count > 0 {
		r.latencyBlock("PING RTT", s.Ping)
	}
	if s.Message.Count > 0 {
		r.latencyBlock("MESSAGE RTT", s.Message)
	}

	if len(s.FailuresByKind) > 0 {
		fmt.Fprintf(r.w, "\n❌ FAILURE SUMMARY\n")
		for _, k := range probe.Kinds() {
			if n := s.FailuresByKind[k]; n > 0 {
				fmt.Fprintf(r.w, "   %d x %s\n", n, errorStyle.Render(k.String()))
			}
		}
	}
	fmt.Fprintf(r.w, "%s\n", rule)
}

func (r *Reporter) successRate(s stats.Snapshot) string {
	text := fmt.Sprintf("%.1f%%", s.SuccessRate)
	switch {
	case s.Attempts == 0:
		return subtleStyle.Render(text)
	case s.SuccessRate >= 90:
		return successStyle.Render(text)
	case s.SuccessRate >= 50:
		return warnStyle.Render(text)
	default:
		return errorStyle.Render(text)
	}
}

func (r *Reporter) latencyBlock(label string, l stats.LatencySnapshot) {
	fmt.Fprintf(r.w, "\n⏱️  %s\n", label)
	fmt.Fprintf(r.w, "   Avg : %s\n", fmtDur(l.Avg))
	fmt.Fprintf(r.w, "   Min : %s\n", fmtDur(l.Min))
	fmt.Fprintf(r.w, "   Max : %s\n", fmtDur(l.Max))
	fmt.Fprintf(r.w, "   P50 : %s\n", fmtDur(l.P50))
	fmt.Fprintf(r.w, "   P90 : %s\n", fmtDur(l.P90))
	fmt.Fprintf(r.w, "   P99 : %s\n", fmtDur(l.P99))
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func errText(err error) string {
	if err == nil {
		return "failed"
	}
	return err.Error()
}
