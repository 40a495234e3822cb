package tool

import (
	"net/http"
	"sync"
	"time"
)

var (
	// DefaultTimeout of 0 means no overall client timeout.
	DefaultTimeout = 0 * time.Second
	httpClientMu   sync.RWMutex
	httpClient     = NewHTTPClient(DefaultTimeout)
)

// NewHTTPClient creates the client shared by initiate, upload and status requests.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 32,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// InitHTTPClient (re)initializes the shared client with the configured timeout.
func InitHTTPClient(timeout time.Duration) {
	httpClientMu.Lock()
	defer httpClientMu.Unlock()
	httpClient = NewHTTPClient(timeout)
}

func GetHttpClient() *http.Client {
	httpClientMu.RLock()
	defer httpClientMu.RUnlock()
	return httpClient
}
