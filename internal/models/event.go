package models

import (
	"gorm.io/datatypes"
)

// SystemUserID is the actor recorded on events that are not attributable to a
// registered user (e.g. failed requests before authentication).
const SystemUserID uint = 0

// Event is an immutable audit record. Rows are only ever inserted, purged by
// retention, or removed when the owning account is deleted. UserID carries no
// foreign key so system events (UserID 0) can exist without a users row;
// account deletion cleans up events explicitly instead of relying on a
// database cascade.
type Event struct {
	BaseModel

	Type      string         `gorm:"not null;index"`
	Message   string         `gorm:"not null"`
	UserID    uint           `gorm:"not null;index"`
	IPAddress string         `gorm:"not null"`
	UserAgent string         `gorm:"not null"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
}
