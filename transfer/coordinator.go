package transfer

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/moyoez/filemigrate/tool"
	"github.com/moyoez/filemigrate/types"
)

// Group is one independently selected set of items, e.g. "files" and "folders".
type Group struct {
	Name  string
	Items []types.TransferItem
}

// Coordinator drives items through the presign or direct protocol, all concurrently.
type Coordinator struct {
	client    *http.Client
	observers []Observer
}

// NewCoordinator creates a coordinator. A nil client uses the shared tool client;
// observers are attached to every tally the coordinator creates.
func NewCoordinator(client *http.Client, observers ...Observer) *Coordinator {
	return &Coordinator{
		client:    client,
		observers: slices.Clone(observers),
	}
}

// NewTally creates a counter set carrying the coordinator's observers.
func (c *Coordinator) NewTally() *Tally {
	return NewTally(tool.GenerateBatchID(), c.observers...)
}

// SubmitBatch submits one group on a fresh tally. An empty item list issues no requests
// and the returned tally never completes.
func (c *Coordinator) SubmitBatch(ctx context.Context, items []types.TransferItem, dest types.Destination) *Tally {
	tally := c.NewTally()
	// a fresh tally cannot be complete, so Submit cannot fail here
	_, _ = c.Submit(ctx, tally, dest, Group{Items: items})
	return tally
}

// Submit adds every group to tally and starts one transfer per item without waiting for any other.
// All group totals are registered before the first transfer starts, so the tally cannot complete early.
// It returns the number of transfers started. In-flight transfers ignore cancellation of ctx.
func (c *Coordinator) Submit(ctx context.Context, tally *Tally, dest types.Destination, groups ...Group) (int, error) {
	if tally == nil {
		return 0, errors.New("invalid parameters: tally must not be nil")
	}
	type job struct {
		idx  int
		item types.TransferItem
	}
	var jobs []job
	for _, g := range groups {
		if len(g.Items) == 0 {
			continue
		}
		indexes, err := tally.register(g.Name, g.Items)
		if err != nil {
			return 0, err
		}
		for i, idx := range indexes {
			jobs = append(jobs, job{idx: idx, item: g.Items[i]})
		}
	}
	if len(jobs) == 0 {
		tool.DefaultLogger.Debugf("Batch %s: nothing to submit", tally.ID())
		return 0, nil
	}

	runCtx := context.WithoutCancel(ctx)
	tool.DefaultLogger.Infof("Batch %s: submitting %d items via %s to %s", tally.ID(), len(jobs), dest.Kind, dest.URL)
	for _, j := range jobs {
		go c.run(runCtx, tally, j.idx, j.item, dest)
	}
	return len(jobs), nil
}

func (c *Coordinator) httpClient() *http.Client {
	if c.client != nil {
		return c.client
	}
	return tool.GetHttpClient()
}

func (c *Coordinator) run(ctx context.Context, tally *Tally, idx int, item types.TransferItem, dest types.Destination) {
	phase, err := c.transfer(ctx, tally, idx, item, dest)
	if err != nil {
		err = &types.TransferPhaseError{Phase: phase, ItemID: item.ID, ItemName: item.Name, Err: err}
		tool.DefaultLogger.Warnf("Batch %s: %v", tally.ID(), err)
	} else {
		tool.DefaultLogger.Infof("Batch %s: uploaded %s", tally.ID(), item.Name)
	}
	tally.settle(idx, phase, err)
}

// transfer returns the phase that ran last, so failures point at the step that broke.
func (c *Coordinator) transfer(ctx context.Context, tally *Tally, idx int, item types.TransferItem, dest types.Destination) (types.Phase, error) {
	client := c.httpClient()
	if dest.Kind == types.DestinationDirect {
		tally.setState(idx, types.ItemTransferring)
		return types.PhaseDirect, UploadDirect(ctx, client, dest.URL, dest.CSRFToken, item)
	}

	tally.setState(idx, types.ItemInitiating)
	template, err := Initiate(ctx, client, dest.URL, dest.CSRFToken, item)
	if err != nil {
		return types.PhaseInitiate, err
	}
	tally.setState(idx, types.ItemTransferring)
	return types.PhaseUpload, UploadToStorage(ctx, client, template, item)
}
