package models

import "time"

// DeliveryRecord is the append-only audit log of deliveries. ItemName is
// copied from the item at creation time so history survives renames and
// removals. Records are immutable once created.
type DeliveryRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Mention       string    `gorm:"size:255" json:"mention"`
	ItemID        string    `gorm:"size:64;index" json:"itemId"`
	ItemName      string    `gorm:"size:100" json:"itemName"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	PhotoURL      string    `gorm:"size:512" json:"photoUrl"`
	MessageSent   bool      `json:"messageSent"`
	MessageStatus int       `json:"messageStatus"` // coarse 200/500 proxy for the outbound send
	Timestamp     time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}
