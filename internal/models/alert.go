package models

import (
	"time"

	"budgetwise/internal/uuid"

	"gorm.io/gorm"
)

// AlertType classifies what raised an alert
type AlertType string

const (
	AlertTypeBudgetThreshold AlertType = "budget_threshold"
	AlertTypeAnomaly         AlertType = "anomaly"
	AlertTypePace            AlertType = "pace"
	AlertTypeVariance        AlertType = "variance"
	AlertTypeHealth          AlertType = "health"
)

// AlertSeverity represents how urgent an alert is
type AlertSeverity string

const (
	AlertSeverityHigh   AlertSeverity = "high"
	AlertSeverityMedium AlertSeverity = "medium"
	AlertSeverityLow    AlertSeverity = "low"
)

// AlertStatus is the lifecycle state of an alert
type AlertStatus string

const (
	AlertStatusActive    AlertStatus = "active"
	AlertStatusDismissed AlertStatus = "dismissed"
	AlertStatusSnoozed   AlertStatus = "snoozed"
)

// Delivery channels
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelPush  = "push"
)

// Alert is a raised notification. Alerts are retained for history and never
// deleted, so they carry no soft delete column.
type Alert struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Type        AlertType      `gorm:"not null;index" json:"alert_type"`
	CategoryID  *string        `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Severity    AlertSeverity  `gorm:"not null" json:"severity"`
	Message     string         `gorm:"not null" json:"message"`
	Channels    []string       `gorm:"type:text;serializer:json" json:"channels"`
	Status      AlertStatus    `gorm:"not null;default:active;index" json:"status"`
	SnoozeUntil *time.Time     `json:"snooze_until,omitempty"`
	Metadata    map[string]any `gorm:"type:text;serializer:json" json:"metadata,omitempty"`
}

// BeforeCreate assigns a UUIDv7 to new alerts
func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New()
	}
	return nil
}
