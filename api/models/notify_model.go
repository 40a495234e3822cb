package models

import (
	"sync"

	"github.com/moyoez/filemigrate/api/notifyhub"
)

var (
	notifyMu  sync.RWMutex
	notifyHub *notifyhub.Hub
)

// SetNotifyHub sets the hub for WebSocket notification broadcast.
func SetNotifyHub(h *notifyhub.Hub) {
	notifyMu.Lock()
	defer notifyMu.Unlock()
	notifyHub = h
}

// GetNotifyHub returns the notify WebSocket hub, or nil if not set.
func GetNotifyHub() *notifyhub.Hub {
	notifyMu.RLock()
	defer notifyMu.RUnlock()
	return notifyHub
}
