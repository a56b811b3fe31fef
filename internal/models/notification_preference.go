package models

// NotificationPreference holds the per-channel delivery toggles and the
// optional quiet hours window ("HH:MM", local time). There is a single row.
type NotificationPreference struct {
	Base
	InAppEnabled    bool   `gorm:"not null" json:"in_app_enabled"`
	EmailEnabled    bool   `gorm:"not null;default:false" json:"email_enabled"`
	SMSEnabled      bool   `gorm:"not null;default:false" json:"sms_enabled"`
	PushEnabled     bool   `gorm:"not null;default:false" json:"push_enabled"`
	QuietHoursStart string `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd   string `json:"quiet_hours_end,omitempty"`
}

// DefaultNotificationPreference returns the preferences used before any are saved.
func DefaultNotificationPreference() NotificationPreference {
	return NotificationPreference{InAppEnabled: true}
}
