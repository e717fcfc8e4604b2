package models

import "time"

// Transaction is an append-only ledger record. Rows are created once and
// never updated; a transfer writes two rows sharing Date and TransferID.
type Transaction struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UserID      uint      `gorm:"index;not null"`
	Amount      int64     `gorm:"not null"` // cents, always positive; direction is IsReceived
	Description string    `gorm:"size:255"`
	IsReceived  bool      `gorm:"not null"`
	Date        time.Time `gorm:"index;not null"`
	Category    string    `gorm:"size:64;index"`
	TransferID  *string   `gorm:"size:36;index"` // set on both sides of a transfer
}
