package share

import (
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/moyoez/filemigrate/tool"
	"github.com/moyoez/filemigrate/transfer"
)

const (
	DefaultBatchTTL = time.Hour
)

// BatchRegistry keeps live tallies addressable by batch id until they expire.
type BatchRegistry struct {
	batches *ttlworker.Cache[string, *transfer.Tally]
}

// NewBatchRegistry creates a registry; a non-positive ttl uses DefaultBatchTTL.
func NewBatchRegistry(ttl time.Duration) *BatchRegistry {
	if ttl <= 0 {
		ttl = DefaultBatchTTL
	}
	return &BatchRegistry{batches: ttlworker.NewCache[string, *transfer.Tally](ttl)}
}

func (r *BatchRegistry) Put(tally *transfer.Tally) {
	if tally == nil {
		return
	}
	r.batches.Set(tally.ID(), tally)
	tool.DefaultLogger.Debugf("Registered batch %s", tally.ID())
}

// Track registers tally and restarts its ttl on every settlement and on completion,
// so a batch stays queryable while it runs and for a full ttl after it finishes.
func (r *BatchRegistry) Track(tally *transfer.Tally) {
	if tally == nil {
		return
	}
	r.Put(tally)
	tally.Subscribe(transfer.ObserverFuncs{
		ItemSettled: func(transfer.ItemSettledEvent) {
			r.batches.Set(tally.ID(), tally)
		},
		BatchComplete: func(transfer.BatchCompleteEvent) {
			r.Put(tally)
		},
	})
}

func (r *BatchRegistry) Get(batchID string) (*transfer.Tally, bool) {
	tally := r.batches.Get(batchID)
	return tally, tally != nil
}

func (r *BatchRegistry) Delete(batchID string) {
	r.batches.Delete(batchID)
}

// List returns the ids of every live batch.
func (r *BatchRegistry) List() []string {
	ids := make([]string, 0)
	err := r.batches.Range(func(k string, _ *transfer.Tally) error {
		ids = append(ids, k)
		return nil
	})
	if err != nil {
		return nil
	}
	return ids
}
