package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"wsprobe/internal/probe"
	"wsprobe/internal/stats"
)

// RunRecord is the exported shape of one finished run.
type RunRecord struct {
	RunID     string          `json:"run_id"`
	Target    string          `json:"target"`
	Mode      string          `json:"mode"`
	StartedAt time.Time       `json:"started_at"`
	Duration  string          `json:"duration"`
	Cancelled bool            `json:"cancelled"`
	Summary   stats.Snapshot  `json:"summary"`
	Attempts  []AttemptRecord `json:"attempts"`
}

// AttemptRecord is one attempt flattened for export.
type AttemptRecord struct {
	Seq          int       `json:"seq"`
	Start        time.Time `json:"start"`
	Connected    bool      `json:"connected"`
	Success      bool      `json:"success"`
	PingRTTMs    float64   `json:"ping_rtt_ms,omitempty"`
	MessageRTTMs float64   `json:"message_rtt_ms,omitempty"`
	Sent         int       `json:"sent"`
	Received     int       `json:"received"`
	Error        string    `json:"error,omitempty"`
}

// NewRunRecord assembles the export payload for the run that just
// finished. Each record gets a fresh run ID.
func NewRunRecord(target probe.Target, mode string, startedAt time.Time, elapsed time.Duration, cancelled bool, snap stats.Snapshot, outcomes []probe.Outcome) RunRecord {
	rec := RunRecord{
		RunID:     uuid.New().String(),
		Target:    target.URI,
		Mode:      mode,
		StartedAt: startedAt,
		Duration:  elapsed.String(),
		Cancelled: cancelled,
		Summary:   snap,
	}
	for _, o := range outcomes {
		rec.Attempts = append(rec.Attempts, AttemptRecord{
			Seq:          o.Seq,
			Start:        o.Start,
			Connected:    o.Connected,
			Success:      o.Success(),
			PingRTTMs:    ms(o.PingRTT),
			MessageRTTMs: ms(o.MessageRTT),
			Sent:         o.Sent,
			Received:     o.Received,
			Error:        errString(o.Err),
		})
	}
	return rec
}

// ExportJSON writes the run summary plus per-attempt details.
func ExportJSON(rec RunRecord, filename string) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// ExportCSV writes one row per attempt.
func ExportCSV(outcomes []probe.Outcome, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"seq", "timeStamp", "connected", "success",
		"ping_rtt_ms", "message_rtt_ms", "sent", "received", "error",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, o := range outcomes {
		record := []string{
			strconv.Itoa(o.Seq),
			strconv.FormatInt(o.Start.UnixMilli(), 10),
			strconv.FormatBool(o.Connected),
			strconv.FormatBool(o.Success()),
			strconv.FormatFloat(ms(o.PingRTT), 'f', 3, 64),
			strconv.FormatFloat(ms(o.MessageRTT), 'f', 3, 64),
			strconv.Itoa(o.Sent),
			strconv.Itoa(o.Received),
			errString(o.Err),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
