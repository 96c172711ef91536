package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"wsprobe/internal/probe"
	"wsprobe/internal/stats"
)

// Runner executes probe attempts according to the configured mode and
// folds their outcomes. One Runner handles one run.
type Runner struct {
	Cfg     Config
	Stats   *stats.Stats
	session *probe.Session
	logger  *zap.Logger

	state    int32
	inflight int64
	seq      int64
}

func NewRunner(cfg Config, logger *zap.Logger) (*Runner, error) {
	if err := cfg.Target.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	session, err := probe.NewSession(cfg.Target, logger)
	if err != nil {
		return nil, err
	}

	return &Runner{
		Cfg:     cfg,
		Stats:   stats.NewStats(),
		session: session,
		logger:  logger,
	}, nil
}

// State returns the current lifecycle state. Safe from any goroutine.
func (r *Runner) State() State {
	return State(atomic.LoadInt32(&r.state))
}

func (r *Runner) setState(s State) {
	atomic.StoreInt32(&r.state, int32(s))
}

// Inflight returns the number of attempts currently running.
func (r *Runner) Inflight() int64 {
	return atomic.LoadInt64(&r.inflight)
}

// Run blocks until the run finishes and returns the final snapshot.
// Cancelling ctx stops the issuing of new attempts; in-flight attempts
// keep their own timeout budget and are still folded. Attempt failures
// never surface here, only configuration problems do.
func (r *Runner) Run(ctx context.Context) (stats.Snapshot, error) {
	if err := r.Cfg.validate(); err != nil {
		return stats.Snapshot{}, err
	}

	r.setState(StateRunning)
	r.logger.Info("run starting",
		zap.String("mode", r.Cfg.Mode.String()),
		zap.String("uri", r.Cfg.Target.URI))

	switch r.Cfg.Mode {
	case ModeBasic:
		r.attempt()
	case ModeContinuous:
		r.runContinuous(ctx)
	case ModeStress:
		r.runStress(ctx)
	}

	if ctx.Err() != nil {
		r.setState(StateCancelled)
	} else {
		r.setState(StateCompleted)
	}

	snap := r.Stats.Snapshot()
	r.logger.Info("run finished",
		zap.String("state", r.State().String()),
		zap.Uint64("attempts", snap.Attempts),
		zap.Uint64("failures", snap.Failures))
	return snap, nil
}

// attempt runs one session synchronously and folds its outcome. Basic
// and continuous mode call this from the run goroutine; stress mode
// has its own worker path.
func (r *Runner) attempt() {
	seq := int(atomic.AddInt64(&r.seq, 1))
	atomic.AddInt64(&r.inflight, 1)
	o := r.session.Run(context.Background(), seq)
	atomic.AddInt64(&r.inflight, -1)
	r.record(o)
}

// record folds one outcome and notifies the hook. Callers are
// serialized: basic and continuous run attempts one at a time, stress
// routes outcomes through a single collector goroutine.
func (r *Runner) record(o probe.Outcome) {
	r.Stats.Record(o)
	if r.Cfg.OnOutcome != nil {
		r.Cfg.OnOutcome(o, r.Stats.Snapshot())
	}
}

// runContinuous probes on a fixed cadence anchored to attempt starts,
// not completions. An attempt that overruns the interval triggers the
// next one immediately after it finishes, so drift stays bounded by a
// single attempt's timeout budget.
func (r *Runner) runContinuous(ctx context.Context) {
	ticker := time.NewTicker(r.Cfg.Interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		r.attempt()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// runStress launches Count attempts with at most Concurrency in
// flight. Attempts are issued in sequence order over the task channel;
// a single collector folds outcomes in whatever order they complete.
func (r *Runner) runStress(ctx context.Context) {
	tasks := make(chan int)
	outcomes := make(chan probe.Outcome, r.Cfg.Concurrency)

	var workers sync.WaitGroup
	for w := 0; w < r.Cfg.Concurrency; w++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for seq := range tasks {
				atomic.AddInt64(&r.inflight, 1)
				o := r.session.Run(context.Background(), seq)
				atomic.AddInt64(&r.inflight, -1)
				outcomes <- o
			}
		}()
	}

	var collector sync.WaitGroup
	collector.Add(1)
	go func() {
		defer collector.Done()
		for o := range outcomes {
			r.record(o)
		}
	}()

feed:
	for seq := 1; seq <= r.Cfg.Count; seq++ {
		select {
		case tasks <- seq:
		case <-ctx.Done():
			break feed
		}
	}
	close(tasks)

	workers.Wait()
	close(outcomes)
	collector.Wait()
}
