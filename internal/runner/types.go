package runner

import (
	"time"

	"wsprobe/internal/probe"
	"wsprobe/internal/stats"
)

// Mode selects the scheduling strategy for a run.
type Mode int

const (
	ModeBasic Mode = iota
	ModeContinuous
	ModeStress
)

func (m Mode) String() string {
	switch m {
	case ModeBasic:
		return "basic"
	case ModeContinuous:
		return "continuous"
	case ModeStress:
		return "stress"
	default:
		return "unknown"
	}
}

// ParseMode maps a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "basic":
		return ModeBasic, nil
	case "continuous":
		return ModeContinuous, nil
	case "stress":
		return ModeStress, nil
	default:
		return 0, probe.Configf("unknown mode %q (want basic, continuous or stress)", s)
	}
}

// State is the run lifecycle: Idle until Run is called, then Running,
// ending in Completed or Cancelled.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Config drives one run.
type Config struct {
	Target probe.Target
	Mode   Mode

	Interval    time.Duration // continuous: delay between attempt starts
	Count       int           // stress: total attempts
	Concurrency int           // stress: max in-flight attempts

	// OnOutcome fires after each outcome is folded, with a snapshot
	// taken right after the fold. Calls are serialized. Optional.
	OnOutcome func(probe.Outcome, stats.Snapshot)
}

func (c Config) validate() error {
	switch c.Mode {
	case ModeContinuous:
		if c.Interval <= 0 {
			return probe.Configf("interval must be positive, got %s", c.Interval)
		}
	case ModeStress:
		if c.Count < 1 {
			return probe.Configf("count must be at least 1, got %d", c.Count)
		}
		if c.Concurrency < 1 {
			return probe.Configf("concurrency must be at least 1, got %d", c.Concurrency)
		}
	}
	return nil
}
