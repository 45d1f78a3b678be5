package models

import "time"

// Room is the local record for a media room. Name doubles as the room key on
// the LiveKit server; the row is never deleted, only deactivated.
type Room struct {
	ID              uint      `gorm:"primaryKey"`
	Name            string    `gorm:"uniqueIndex;not null"`
	DisplayName     string    `gorm:"not null"`
	Description     string
	CreatorID       uint      `gorm:"not null;index"`
	IsActive        bool      `gorm:"not null;default:true"`
	MaxParticipants int       `gorm:"not null;default:50"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`

	// Relationships
	Creator     User             `gorm:"foreignKey:CreatorID"`
	Memberships []RoomMembership `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
