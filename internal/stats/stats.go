package stats

import (
	"sync"
	"time"

	"wsprobe/internal/probe"
)

// Stats folds attempt outcomes for one run. Record is the only
// mutator; readers take a Snapshot. All mutation happens under one
// lock, so a snapshot never observes a half-applied outcome.
type Stats struct {
	mu sync.Mutex

	attempts  uint64
	successes uint64
	failures  uint64
	sent      uint64
	received  uint64

	ping    latencyAgg
	message latencyAgg

	failuresByKind map[probe.Kind]uint64

	// Percentile detail for the summary block
	pingHist    *SafeHistogram
	messageHist *SafeHistogram
}

// latencyAgg keeps exact aggregates so averages carry no histogram
// rounding error.
type latencyAgg struct {
	count uint64
	sum   time.Duration
	min   time.Duration
	max   time.Duration
}

func (a *latencyAgg) add(d time.Duration) {
	a.count++
	a.sum += d
	if a.count == 1 || d < a.min {
		a.min = d
	}
	if d > a.max {
		a.max = d
	}
}

func (a latencyAgg) snapshot() LatencySnapshot {
	s := LatencySnapshot{Count: a.count, Min: a.min, Max: a.max}
	if a.count > 0 {
		s.Avg = a.sum / time.Duration(a.count)
	}
	return s
}

func NewStats() *Stats {
	return &Stats{
		failuresByKind: make(map[probe.Kind]uint64),
		pingHist:       NewSafeHistogram(),
		messageHist:    NewSafeHistogram(),
	}
}

// Record folds one finished attempt. The fold is commutative: the
// snapshot of a run does not depend on completion order.
func (s *Stats) Record(o probe.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++
	if o.Success() {
		s.successes++
	} else {
		s.failures++
		s.failuresByKind[probe.KindOf(o.Err)]++
	}
	s.sent += uint64(o.Sent)
	s.received += uint64(o.Received)

	if o.PingRTT > 0 {
		s.ping.add(o.PingRTT)
		s.pingHist.Record(o.PingRTT)
	}
	if o.MessageRTT > 0 {
		s.message.add(o.MessageRTT)
		s.messageHist.Record(o.MessageRTT)
	}
}

// Snapshot is a consistent copy of the fold plus derived metrics.
type Snapshot struct {
	Attempts  uint64
	Successes uint64
	Failures  uint64
	Sent      uint64
	Received  uint64

	SuccessRate float64 // percent, 0 when no attempts

	Ping    LatencySnapshot
	Message LatencySnapshot

	FailuresByKind map[probe.Kind]uint64
}

// LatencySnapshot summarizes one latency series. All fields are zero
// when no samples were recorded; an empty series is not an error.
type LatencySnapshot struct {
	Count uint64
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Attempts:       s.attempts,
		Successes:      s.successes,
		Failures:       s.failures,
		Sent:           s.sent,
		Received:       s.received,
		Ping:           s.ping.snapshot(),
		Message:        s.message.snapshot(),
		FailuresByKind: make(map[probe.Kind]uint64, len(s.failuresByKind)),
	}
	for k, v := range s.failuresByKind {
		snap.FailuresByKind[k] = v
	}

	if snap.Attempts > 0 {
		snap.SuccessRate = float64(snap.Successes) / float64(snap.Attempts) * 100
	}
	if snap.Ping.Count > 0 {
		snap.Ping.P50 = s.pingHist.Quantile(50)
		snap.Ping.P90 = s.pingHist.Quantile(90)
		snap.Ping.P99 = s.pingHist.Quantile(99)
	}
	if snap.Message.Count > 0 {
		snap.Message.P50 = s.messageHist.Quantile(50)
		snap.Message.P90 = s.messageHist.Quantile(90)
		snap.Message.P99 = s.messageHist.Quantile(99)
	}
	return snap
}
