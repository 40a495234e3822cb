package transfer

import (
	"context"
	"slices"
	"sync"

	"github.com/moyoez/filemigrate/types"
)

// ItemSettledEvent is emitted once per item, in settlement order.
type ItemSettledEvent struct {
	BatchID   string
	Outcome   types.ItemOutcome
	Total     int
	Succeeded int
	Failed    int
}

// BatchCompleteEvent is emitted once, when succeeded + failed reaches total.
type BatchCompleteEvent struct {
	Result types.BatchResult
}

// Observer receives settlement and completion events. Calls are serialized per tally;
// an observer may read the tally's Snapshot but must not submit to it.
type Observer interface {
	OnItemSettled(ItemSettledEvent)
	OnBatchComplete(BatchCompleteEvent)
}

// ObserverFuncs adapts plain functions to Observer; nil funcs are skipped.
type ObserverFuncs struct {
	ItemSettled   func(ItemSettledEvent)
	BatchComplete func(BatchCompleteEvent)
}

func (o ObserverFuncs) OnItemSettled(ev ItemSettledEvent) {
	if o.ItemSettled != nil {
		o.ItemSettled(ev)
	}
}

func (o ObserverFuncs) OnBatchComplete(ev BatchCompleteEvent) {
	if o.BatchComplete != nil {
		o.BatchComplete(ev)
	}
}

// Tally is the counter set shared by every group submitted in one user action.
// Totals are additive across groups; completion is evaluated on the tally, not per group.
type Tally struct {
	id string

	// emitMu orders event delivery; mu guards the counters and outcomes.
	emitMu sync.Mutex
	mu     sync.Mutex

	total     int
	succeeded int
	failed    int
	seq       int
	complete  bool
	items     []types.ItemOutcome
	observers []Observer
	done      chan struct{}
}

// NewTally creates an empty counter set.
func NewTally(id string, observers ...Observer) *Tally {
	return &Tally{
		id:        id,
		observers: slices.Clone(observers),
		done:      make(chan struct{}),
	}
}

func (t *Tally) ID() string {
	return t.id
}

// Subscribe adds an observer for events that settle after this call.
func (t *Tally) Subscribe(o Observer) {
	if o == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// Done is closed when the tally completes. It never closes for a tally with no items.
func (t *Tally) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until completion or ctx ends, returning the latest snapshot either way.
func (t *Tally) Wait(ctx context.Context) (types.BatchResult, error) {
	select {
	case <-t.done:
		return t.Snapshot(), nil
	case <-ctx.Done():
		return t.Snapshot(), ctx.Err()
	}
}

// Snapshot returns a deep copy of the current state.
func (t *Tally) Snapshot() types.BatchResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tally) snapshotLocked() types.BatchResult {
	return types.BatchResult{
		BatchID:   t.id,
		Total:     t.total,
		Succeeded: t.succeeded,
		Failed:    t.failed,
		Complete:  t.complete,
		Items:     slices.Clone(t.items),
	}
}

// register adds a group's items as Pending and returns their indexes.
// Must be called for every group of a submission before any transfer starts.
func (t *Tally) register(group string, items []types.TransferItem) ([]int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.complete {
		return nil, ErrTallyComplete
	}
	indexes := make([]int, 0, len(items))
	for _, item := range items {
		idx := len(t.items)
		t.items = append(t.items, types.ItemOutcome{
			Index: idx,
			ID:    item.ID,
			Name:  item.Name,
			Group: group,
			State: types.ItemPending,
		})
		indexes = append(indexes, idx)
	}
	t.total += len(items)
	return indexes, nil
}

func (t *Tally) setState(idx int, state types.ItemState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.items[idx].State.Settled() {
		return
	}
	t.items[idx].State = state
}

// settle records the terminal state of one item. Counter update, outcome record and the
// completion check happen under one lock; events go out in the same order as settlements.
func (t *Tally) settle(idx int, phase types.Phase, err error) {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()

	t.mu.Lock()
	item := &t.items[idx]
	if item.State.Settled() {
		t.mu.Unlock()
		return
	}
	if err != nil {
		t.failed++
		item.State = types.ItemFailed
		item.Phase = phase
		item.FailureReason = err.Error()
	} else {
		t.succeeded++
		item.State = types.ItemSucceeded
	}
	t.seq++
	item.Seq = t.seq
	settled := ItemSettledEvent{
		BatchID:   t.id,
		Outcome:   *item,
		Total:     t.total,
		Succeeded: t.succeeded,
		Failed:    t.failed,
	}
	completeNow := !t.complete && t.total > 0 && t.succeeded+t.failed == t.total
	var final types.BatchResult
	if completeNow {
		t.complete = true
		final = t.snapshotLocked()
	}
	observers := slices.Clone(t.observers)
	t.mu.Unlock()

	for _, o := range observers {
		o.OnItemSettled(settled)
	}
	if completeNow {
		for _, o := range observers {
			o.OnBatchComplete(BatchCompleteEvent{Result: final})
		}
		close(t.done)
	}
}
