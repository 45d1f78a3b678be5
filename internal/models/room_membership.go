package models

import "time"

// RoomMembership records one visit of a user to a room. Each join inserts a
// fresh row; leave (or room deletion) flips IsActive and sets LeftAt. At most
// one row per (user, room) may be active at a time, enforced by a partial
// unique index created in db.MigrateDatabase.
type RoomMembership struct {
	ID       uint       `gorm:"primaryKey"`
	UserID   uint       `gorm:"not null;index:idx_membership_user_room"`
	RoomID   uint       `gorm:"not null;index:idx_membership_user_room"`
	JoinedAt time.Time  `gorm:"autoCreateTime"`
	LeftAt   *time.Time
	IsActive bool       `gorm:"not null;default:true"`

	// Relationships
	User User `gorm:"foreignKey:UserID"`
	Room Room `gorm:"foreignKey:RoomID"`
}
