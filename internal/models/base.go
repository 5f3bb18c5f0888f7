package models

import "time"

// BaseModel is a slimmer alternative to gorm.Model for append-only tables
// that are never updated or soft-deleted.
type BaseModel struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
}
