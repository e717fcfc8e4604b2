package models

import "time"

// Payee is a directed edge in the payee graph: UserID has sent money to
// PayeeID at least once. The composite unique index keeps the edge set
// deduplicated; inserts go through ON CONFLICT DO NOTHING.
type Payee struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    uint `gorm:"not null;uniqueIndex:idx_user_payee"`
	PayeeID   uint `gorm:"not null;uniqueIndex:idx_user_payee"`
}
