package types

import "io"

// Payload is the caller-owned content handle of a TransferItem.
// Open may be called once per transfer attempt; the returned reader is always closed.
type Payload interface {
	Open() (io.ReadCloser, error)
}

// ItemState is the lifecycle state of a single TransferItem.
type ItemState string

const (
	ItemPending      ItemState = "pending"
	ItemInitiating   ItemState = "initiating"
	ItemTransferring ItemState = "transferring"
	ItemSucceeded    ItemState = "succeeded"
	ItemFailed       ItemState = "failed"
)

// Settled reports whether the state is terminal.
func (s ItemState) Settled() bool {
	return s == ItemSucceeded || s == ItemFailed
}

// TransferItem is one file being migrated.
type TransferItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"fileName"`
	MimeType string  `json:"mimeType"`
	Size     int64   `json:"size"`
	Payload  Payload `json:"-"`
}

// DestinationKind selects the upload protocol.
type DestinationKind string

const (
	DestinationTwoPhase DestinationKind = "presign"
	DestinationDirect   DestinationKind = "direct"
)

// Destination describes where a batch goes.
type Destination struct {
	Kind      DestinationKind `json:"kind" yaml:"kind"`
	URL       string          `json:"url" yaml:"url"`
	CSRFToken string          `json:"-" yaml:"csrfToken"`
}

// UploadTemplate is returned by the initiate phase of the two-phase protocol.
type UploadTemplate struct {
	TargetURL string            `json:"href"`
	Fields    map[string]string `json:"fields"`
}

// InitiateRequest is the JSON body of the initiate call.
type InitiateRequest struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
}

// Phase names the protocol step that failed.
type Phase string

const (
	PhaseInitiate Phase = "initiate"
	PhaseUpload   Phase = "upload"
	PhaseDirect   Phase = "direct"
)

// ItemOutcome is the per-item record kept in a BatchResult.
type ItemOutcome struct {
	Index         int       `json:"index"`
	ID            string    `json:"id"`
	Name          string    `json:"fileName"`
	Group         string    `json:"group,omitempty"`
	State         ItemState `json:"state"`
	Phase         Phase     `json:"phase,omitempty"`
	FailureReason string    `json:"failureReason,omitempty"`
	Seq           int       `json:"seq,omitempty"` // settlement order, 1-based
}

// BatchResult is the aggregate outcome of a submission.
type BatchResult struct {
	BatchID   string        `json:"batchId"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Complete  bool          `json:"complete"`
	Items     []ItemOutcome `json:"items"`
}

// Settled returns succeeded + failed.
func (r BatchResult) Settled() int {
	return r.Succeeded + r.Failed
}
