package models

import "time"

const (
	AuditEntityListing = "listing"
	AuditEntityReview  = "review"
)

// AuditLog records who changed which entity. Writes are best-effort.
type AuditLog struct {
	ID          int64          `json:"id"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	PrincipalID string         `json:"principal_id"`
	Action      string         `json:"action"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
