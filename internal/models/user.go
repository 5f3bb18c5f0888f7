package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	Name           string `gorm:"not null"`
	Email          string `gorm:"uniqueIndex;not null"` // stored lowercase
	PasswordHash   string `gorm:"not null"`
	SocialName     string
	Bio            string
	ProfilePicture string
	Credentials    datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Notifications []Notification `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
