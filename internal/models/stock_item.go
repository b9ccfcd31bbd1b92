package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem is a sellable product on the price board. The ID is a stable
// uppercase slug (spaces replaced with underscores) chosen at creation.
// Quantity is decremented by deliveries and may go negative: backorders
// are not rejected.
type StockItem struct {
	ID        string          `gorm:"primaryKey;size:64" json:"id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Emoji     string          `gorm:"size:32" json:"emoji"`
	Quantity  int             `gorm:"not null;default:0" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Max       int             `gorm:"not null;default:100" json:"max"` // capacity hint, informational
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}
