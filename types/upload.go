package types

// UploadGroup is one independently selected input group (e.g. "files" or "folders").
type UploadGroup struct {
	Name  string   `json:"name"`
	Paths []string `json:"paths"`
}

// UserUploadBatchRequest is the body of POST /api/self/v1/upload-batch.
type UserUploadBatchRequest struct {
	Groups []UploadGroup   `json:"groups"`
	Kind   DestinationKind `json:"kind,omitempty"`
	URL    string          `json:"url,omitempty"`
}

// UserUploadBatchResponse is returned once every transfer has been started.
type UserUploadBatchResponse struct {
	BatchID string `json:"batchId"`
	Total   int    `json:"total"`
}
