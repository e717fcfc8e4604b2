package models

import "time"

// Budget is a per-user, per-category spending cap for a month/year period.
// Spent is a derived accumulator maintained by the aggregation hook; the
// transaction log remains the source of truth.
type Budget struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint   `gorm:"index;not null"`
	Category    string `gorm:"size:64;not null"`
	LimitAmount int64  `gorm:"column:limit_amount;not null" json:"limit"`
	Spent       int64  `gorm:"not null;default:0"`
	Month       int
	Year        int
}
