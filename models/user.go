package models

import (
	"time"
)

// User model. Username is the transfer handle: stored lowercase, unique, and
// immutable after signup so recipient resolution cannot race a rename.
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Username       string `gorm:"size:254;not null;unique"`
	HashedPassword []byte `gorm:"not null" json:"-"`
	FirstName      string `gorm:"size:30;not null"`
	LastName       string `gorm:"size:30;not null"`
}

// FullName is used when building transfer descriptions.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
