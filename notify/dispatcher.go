package notify

import (
	"errors"
	"fmt"
	"sync"

	"github.com/moyoez/filemigrate/status"
	"github.com/moyoez/filemigrate/tool"
	"github.com/moyoez/filemigrate/transfer"
	"github.com/moyoez/filemigrate/types"
)

// Broadcaster receives every notification, e.g. the WebSocket hub.
type Broadcaster interface {
	Broadcast(*types.Notification)
}

// SocketQueueSize bounds the notifications waiting for the Unix socket; newer ones are dropped when full.
const SocketQueueSize = 256

// Dispatcher turns transfer and status events into notifications.
// It is a transfer.Observer and its OnPoll method is a poller callback.
// Hub broadcast happens inline; socket IPC runs on one background worker so a slow
// listener never holds up settlement.
type Dispatcher struct {
	hub        Broadcaster
	socketPath string
	queue      chan *types.Notification
	done       chan struct{}

	// mu guards closed so no send races the close of queue
	mu     sync.RWMutex
	closed bool
}

var _ transfer.Observer = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. A nil hub skips broadcast; useSocket enables the Unix socket IPC.
func NewDispatcher(hub Broadcaster, useSocket bool, socketPath string) *Dispatcher {
	d := &Dispatcher{hub: hub, socketPath: socketPath}
	if useSocket {
		d.queue = make(chan *types.Notification, SocketQueueSize)
		d.done = make(chan struct{})
		go d.sendLoop()
	}
	return d
}

// Close stops accepting socket notifications and waits for the queued ones to be sent.
func (d *Dispatcher) Close() {
	if d.queue == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) sendLoop() {
	defer close(d.done)
	for n := range d.queue {
		if err := SendNotification(n, d.socketPath); err != nil {
			if errors.Is(err, ErrSocketNotFound) {
				tool.DefaultLogger.Debugf("[Notify] %v", err)
				continue
			}
			tool.DefaultLogger.Warnf("[Notify] failed to send %s: %v", n.Type, err)
		}
	}
}

func (d *Dispatcher) OnItemSettled(ev transfer.ItemSettledEvent) {
	out := ev.Outcome
	n := &types.Notification{
		Type: types.NotifyTypeItemSettled,
		Data: map[string]any{
			"batchId":   ev.BatchID,
			"itemId":    out.ID,
			"fileName":  out.Name,
			"group":     out.Group,
			"state":     out.State,
			"seq":       out.Seq,
			"total":     ev.Total,
			"succeeded": ev.Succeeded,
			"failed":    ev.Failed,
		},
	}
	if out.State == types.ItemFailed {
		n.Title = "Upload Failed"
		n.Message = out.FailureReason
		n.Data["phase"] = out.Phase
	} else {
		n.Title = "Upload Completed"
		n.Message = fmt.Sprintf("%s uploaded (%d/%d)", out.Name, ev.Succeeded+ev.Failed, ev.Total)
	}
	d.dispatch(n)
}

func (d *Dispatcher) OnBatchComplete(ev transfer.BatchCompleteEvent) {
	res := ev.Result
	var failed []map[string]any
	for _, item := range res.Items {
		if item.State != types.ItemFailed {
			continue
		}
		if len(failed) >= MaxNotifyItems {
			break
		}
		failed = append(failed, map[string]any{"fileName": item.Name, "reason": item.FailureReason})
	}
	d.dispatch(&types.Notification{
		Type:    types.NotifyTypeBatchComplete,
		Title:   "Batch Completed",
		Message: fmt.Sprintf("%d of %d files uploaded, %d failed", res.Succeeded, res.Total, res.Failed),
		Data: map[string]any{
			"batchId":     res.BatchID,
			"total":       res.Total,
			"succeeded":   res.Succeeded,
			"failed":      res.Failed,
			"failedItems": failed,
		},
	})
}

// OnPoll forwards a status poll result.
func (d *Dispatcher) OnPoll(res status.PollResult) {
	if res.Unavailable {
		d.dispatch(&types.Notification{
			Type:    types.NotifyTypeStatusUnavailable,
			Title:   "Status Unavailable",
			Message: res.Message,
		})
		return
	}
	r := res.Report
	buckets := make(map[string]int, len(r.Buckets))
	for _, b := range r.Buckets {
		buckets[b.Name] = b.Count
	}
	d.dispatch(&types.Notification{
		Type:    types.NotifyTypeStatusUpdate,
		Title:   "Status Update",
		Message: r.RawStatus,
		Data: map[string]any{
			"status":           r.Status,
			"counters":         r.Counters,
			"discards":         buckets,
			"errors":           len(r.Errors),
			"continueUnlocked": r.ContinueUnlocked,
		},
	})
}

func (d *Dispatcher) dispatch(n *types.Notification) {
	if d.hub != nil {
		d.hub.Broadcast(n)
	}
	if d.queue == nil {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- n:
	default:
		tool.DefaultLogger.Warnf("[Notify] socket queue full, dropping %s", n.Type)
	}
}
