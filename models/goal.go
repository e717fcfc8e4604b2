package models

import "time"

// Goal is a named savings target. Progress accumulates from received
// transactions whose category matches the title.
type Goal struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"index;not null"`
	Title     string `gorm:"size:64;not null"`
	Target    int64  `gorm:"not null"`
	Progress  int64  `gorm:"not null;default:0"`
}
