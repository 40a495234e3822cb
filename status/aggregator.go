package status

import (
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/moyoez/filemigrate/types"
)

// DiscardBucket holds the discards of one category, references in snapshot order.
type DiscardBucket struct {
	Category   DiscardCategory `json:"-"`
	Name       string          `json:"category"`
	Count      int             `json:"count"`
	References []string        `json:"references"`
}

// Counter is a named counter shown in the summary.
type Counter struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// AggregatedReport is what a UI renders for one poll.
type AggregatedReport struct {
	Status    types.JobStatus  `json:"status"`
	RawStatus string           `json:"rawStatus,omitempty"`
	NoData    bool             `json:"noData"` // status field was empty or absent
	Counters  map[string]int64 `json:"counters"`

	// SummaryVisible gates the whole summary section; VisibleCounters lists counters above zero.
	SummaryVisible  bool      `json:"summaryVisible"`
	VisibleCounters []Counter `json:"visibleCounters"`

	// AnyDiscards is the outer gate of the discard section; Buckets only holds non-empty categories.
	AnyDiscards bool            `json:"anyDiscards"`
	Buckets     []DiscardBucket `json:"buckets"`

	Errors        []string `json:"errors"`
	ErrorsVisible bool     `json:"errorsVisible"`

	ContinueUnlocked bool `json:"continueUnlocked"`
}

// Bucket returns the bucket for c if it is present in the report.
func (r AggregatedReport) Bucket(c DiscardCategory) (DiscardBucket, bool) {
	for _, b := range r.Buckets {
		if b.Category == c {
			return b, true
		}
	}
	return DiscardBucket{}, false
}

// Classify partitions discard records into the fixed categories. Empty categories are omitted.
func Classify(records []types.DiscardRecord) []DiscardBucket {
	var buckets [categoryCount]DiscardBucket
	for _, rec := range records {
		c, _ := ParseCategory(rec.Category)
		buckets[c].Count++
		buckets[c].References = append(buckets[c].References, rec.Reference)
	}
	out := make([]DiscardBucket, 0, categoryCount)
	for c := DiscardCategory(0); c < categoryCount; c++ {
		if buckets[c].Count == 0 {
			continue
		}
		buckets[c].Category = c
		buckets[c].Name = c.String()
		out = append(out, buckets[c])
	}
	return out
}

// Aggregator turns snapshots into reports. Counters and discard buckets always come from the
// latest snapshot; the only state carried between calls is the continue-gate latch.
type Aggregator struct {
	mu       sync.Mutex
	unlocked bool
	latest   *AggregatedReport
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Ingest builds the report for snap. Only a Done status unlocks the continue-gate, and once
// unlocked it stays unlocked until Reset.
func (a *Aggregator) Ingest(snap types.StatusSnapshot) AggregatedReport {
	report := AggregatedReport{
		Status:    snap.Status,
		RawStatus: snap.RawStatus,
		NoData:    snap.Status == types.JobStatusNone,
		Counters:  maps.Clone(snap.Counters),
		Buckets:   Classify(snap.Discards),
		Errors:    slices.Clone(snap.Errors),
	}
	if report.Counters == nil {
		report.Counters = map[string]int64{}
	}
	for name, v := range report.Counters {
		if v > 0 {
			report.VisibleCounters = append(report.VisibleCounters, Counter{Name: name, Value: v})
		}
	}
	sort.Slice(report.VisibleCounters, func(i, j int) bool {
		return report.VisibleCounters[i].Name < report.VisibleCounters[j].Name
	})
	report.AnyDiscards = len(report.Buckets) > 0
	report.SummaryVisible = len(report.VisibleCounters) > 0 || report.AnyDiscards
	report.ErrorsVisible = len(report.Errors) > 0

	a.mu.Lock()
	defer a.mu.Unlock()
	if snap.Status == types.JobStatusDone {
		a.unlocked = true
	}
	report.ContinueUnlocked = a.unlocked
	a.latest = &report
	return report
}

// Unlocked reports the continue-gate.
func (a *Aggregator) Unlocked() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unlocked
}

// Latest returns the most recent report, if any.
func (a *Aggregator) Latest() (AggregatedReport, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.latest == nil {
		return AggregatedReport{}, false
	}
	return *a.latest, true
}

// Reset starts a new polling session.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unlocked = false
	a.latest = nil
}
