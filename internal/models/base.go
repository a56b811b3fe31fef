// Package models defines the persisted records the budget engine reads and writes.
package models

import (
	"time"

	"gorm.io/gorm"

	"budgetwise/internal/uuid"
)

// Base holds the primary key, timestamps and soft-delete column shared by
// every soft-deletable record.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate assigns a time-ordered id unless one was set by the caller.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
