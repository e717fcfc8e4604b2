package models

import "time"

// Account holds a user's balance in the smallest currency unit (cents).
// One-to-one with User; the unique index on UserID is what makes lazy
// account creation idempotent under concurrent requests.
type Account struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint  `gorm:"uniqueIndex;not null"`
	Balance   int64 `gorm:"not null;default:0"`
}
