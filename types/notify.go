package types

const (
	NotifyTypeItemSettled       = "upload_item_settled"
	NotifyTypeBatchComplete     = "upload_batch_complete"
	NotifyTypeStatusUpdate      = "status_update"
	NotifyTypeStatusUnavailable = "status_unavailable"
)

// Notification represents a notification message structure
type Notification struct {
	Type    string         `json:"type,omitempty"`    // Notification type, e.g. "upload_item_settled"
	Title   string         `json:"title,omitempty"`   // Notification title
	Message string         `json:"message,omitempty"` // Notification message/content
	Data    map[string]any `json:"data,omitempty"`    // Additional data fields
}
