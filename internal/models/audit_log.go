package models

// AuditLog records mutating operations on budgeting resources. Changes holds
// the request fields that were written, keyed by their JSON names.
type AuditLog struct {
	Base
	Action       string         `gorm:"not null" json:"action"`
	ResourceType string         `gorm:"not null;index" json:"resource_type"`
	ResourceID   string         `gorm:"index" json:"resource_id"`
	IPAddress    string         `json:"ip_address"`
	Changes      map[string]any `gorm:"type:text;serializer:json" json:"changes,omitempty"`
}
