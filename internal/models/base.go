package models

import (
	"time"

	"moneytracker/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables. Deletes are real: the
// ledger keeps no tombstones and no audit trail.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
