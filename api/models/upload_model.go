package models

import (
	"sync"

	"github.com/moyoez/filemigrate/share"
	"github.com/moyoez/filemigrate/transfer"
	"github.com/moyoez/filemigrate/types"
)

var (
	uploadMu           sync.RWMutex
	coordinator        *transfer.Coordinator
	batchRegistry      = share.NewBatchRegistry(share.DefaultBatchTTL)
	defaultDestination types.Destination
)

// SetCoordinator sets the coordinator used by upload-batch.
func SetCoordinator(c *transfer.Coordinator) {
	uploadMu.Lock()
	defer uploadMu.Unlock()
	coordinator = c
}

// GetCoordinator returns the configured coordinator, creating one on the shared client if none was set.
func GetCoordinator() *transfer.Coordinator {
	uploadMu.Lock()
	defer uploadMu.Unlock()
	if coordinator == nil {
		coordinator = transfer.NewCoordinator(nil)
	}
	return coordinator
}

func SetBatchRegistry(r *share.BatchRegistry) {
	uploadMu.Lock()
	defer uploadMu.Unlock()
	batchRegistry = r
}

func GetBatchRegistry() *share.BatchRegistry {
	uploadMu.RLock()
	defer uploadMu.RUnlock()
	return batchRegistry
}

// SetDefaultDestination sets the destination used when a request does not name one.
func SetDefaultDestination(dest types.Destination) {
	uploadMu.Lock()
	defer uploadMu.Unlock()
	defaultDestination = dest
}

func GetDefaultDestination() types.Destination {
	uploadMu.RLock()
	defer uploadMu.RUnlock()
	return defaultDestination
}
