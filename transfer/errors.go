package transfer

import (
	"errors"
	"fmt"
)

// ErrTallyComplete is returned when more groups are submitted to a tally that already completed.
var ErrTallyComplete = errors.New("tally already complete, start a new one")

// HTTPStatusError is a non-2xx response; Status carries the reason phrase the UI shows.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return e.Status
}

func checkStatus(code int, status string) error {
	if code < 200 || code >= 300 {
		if status == "" {
			status = fmt.Sprintf("%d", code)
		}
		return &HTTPStatusError{StatusCode: code, Status: status}
	}
	return nil
}
