package models

import (
	"sync"

	"github.com/moyoez/filemigrate/status"
)

var (
	statusMu   sync.RWMutex
	statusURL  string
	latestPoll *status.PollResult
)

// SetStatusURL records the polled url; empty means polling is disabled.
func SetStatusURL(url string) {
	statusMu.Lock()
	defer statusMu.Unlock()
	statusURL = url
}

func GetStatusURL() string {
	statusMu.RLock()
	defer statusMu.RUnlock()
	return statusURL
}

// RecordPoll stores the latest poll result. It is used as a poller callback.
func RecordPoll(res status.PollResult) {
	statusMu.Lock()
	defer statusMu.Unlock()
	latestPoll = &res
}

// GetLatestPoll returns the latest poll result, if any poll has run.
func GetLatestPoll() (status.PollResult, bool) {
	statusMu.RLock()
	defer statusMu.RUnlock()
	if latestPoll == nil {
		return status.PollResult{}, false
	}
	return *latestPoll, true
}

// ResetPoll clears the stored result, e.g. when a new polling session starts.
func ResetPoll() {
	statusMu.Lock()
	defer statusMu.Unlock()
	latestPoll = nil
}
