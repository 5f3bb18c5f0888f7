package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Notification struct {
	gorm.Model

	Title    string         `gorm:"not null"`
	Message  string         `gorm:"not null"`
	Type     string         `gorm:"not null"` // "INFO", "WARNING", "SUCCESS", "ERROR"
	UserID   uint           `gorm:"not null;index"`
	Read     bool           `gorm:"not null;default:false"`
	Metadata datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
