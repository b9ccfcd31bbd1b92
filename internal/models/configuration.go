package models

import "time"

// ConfigurationID is the fixed primary key of the settings singleton.
const ConfigurationID uint = 1

// Configuration holds the storefront settings edited from the admin panel.
// Exactly one row exists. Channel and role ids are empty strings when not
// configured yet.
type Configuration struct {
	ID                uint   `gorm:"primaryKey" json:"-"`
	MainChannelID     string `gorm:"size:32" json:"mainChannelId"`
	MainMessageID     string `gorm:"size:32" json:"mainMessageId"`
	DeliveryChannelID string `gorm:"size:32" json:"deliveryChannelId"`
	ClientRoleID      string `gorm:"size:32" json:"clientRoleId"`
	GuildID           string `gorm:"size:32" json:"guildId"`

	// Derived from environment presence at startup, never persisted.
	IsManagedExternally bool `gorm:"-" json:"isManagedExternally"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
