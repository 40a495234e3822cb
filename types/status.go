package types

// JobStatus is the terminal-or-not state reported by a backend job.
type JobStatus string

const (
	JobStatusNone    JobStatus = "" // status field absent or empty: no data yet
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusError   JobStatus = "error"
)

// DiscardRecord is a server-reported item excluded from migration.
type DiscardRecord struct {
	Category  string `json:"category"`
	Reference string `json:"reference"`
}

// StatusSnapshot is a point-in-time report from a backend job.
type StatusSnapshot struct {
	Status    JobStatus        `json:"status"`
	RawStatus string           `json:"rawStatus,omitempty"`
	Counters  map[string]int64 `json:"counters,omitempty"`
	Discards  []DiscardRecord  `json:"discardReasons,omitempty"`
	Errors    []string         `json:"errors,omitempty"`
}
