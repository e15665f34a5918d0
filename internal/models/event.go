package models

import "time"

// Event describes a change to a stored record, pushed to change feed subscribers.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"` // e.g., "user.created", "post.deleted"
	Resource   string      `json:"resource"`
	ResourceID string      `json:"resourceId"`
	Payload    interface{} `json:"payload,omitempty"` // nil for deletes
	CreatedAt  time.Time   `json:"createdAt"`
}
