package report

import "github.com/yeongki/memprof/pkg/memprof"

// Labels are low-cardinality run labels (suite, run_id, ...).
type Labels map[string]string

// SessionMeta is report-only metadata (safe to be high cardinality).
type SessionMeta struct {
	Method    string `json:"method"` // cli|test
	Component string `json:"component"`
	RunID     string `json:"runID,omitempty"`
	Enabled   bool   `json:"enabled"`
}

// Totals aggregates the records of one run. This is the only place records
// are aggregated; the wrapping layer itself keeps nothing.
type Totals struct {
	Calls           map[string]int `json:"calls"` // kind -> count
	TotalDurationMs int64          `json:"totalDurationMs"`
	PeakHeap        string         `json:"peakHeap"` // quantity, e.g. "12Mi"
}

// Summary is a single demo run output.
type Summary struct {
	Meta   SessionMeta `json:"meta"`
	Labels Labels      `json:"labels,omitempty"`

	// Wall-clock window for the run.
	StartTimeUnixMs int64 `json:"startTimeUnixMs"`
	EndTimeUnixMs   int64 `json:"endTimeUnixMs"`

	Records []memprof.Entry `json:"records"`
	Totals  Totals          `json:"totals"`
}
