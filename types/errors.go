package types

import "fmt"

// UnknownErrorMessage is shown when a failed status fetch carries no message.
const UnknownErrorMessage = "Unknown error"

// TransferPhaseError reports a failed initiate, storage upload or direct upload for one item.
type TransferPhaseError struct {
	Phase    Phase
	ItemID   string
	ItemName string
	Err      error
}

func (e *TransferPhaseError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Phase, e.ItemName, e.Err)
}

func (e *TransferPhaseError) Unwrap() error {
	return e.Err
}

// StatusFetchError is a failed status poll.
type StatusFetchError struct {
	StatusCode int // 0 for transport failures
	Message    string
	Err        error
}

func (e *StatusFetchError) Error() string {
	if e.Message == "" {
		return UnknownErrorMessage
	}
	return e.Message
}

func (e *StatusFetchError) Unwrap() error {
	return e.Err
}

// MalformedResponse means a template or snapshot body did not match the expected shape.
type MalformedResponse struct {
	What string
	Err  error
}

func (e *MalformedResponse) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.What, e.Err)
}

func (e *MalformedResponse) Unwrap() error {
	return e.Err
}
