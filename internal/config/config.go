package config

import (
	"log"
	"os"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	BotToken    string
	JWTSecret   string // optional: panel auth is disabled when empty
	CORSOrigins string
	UploadPath  string // where delivery proof photos are stored
	PublicPath  string // admin panel static files
	BaseURL     string // public base URL used to build photo links

	// Storefront settings from the environment. When MainChannelID and
	// DeliveryChannelID are both present the store configuration is
	// managed externally and panel saves are ignored.
	MainChannelID     string
	MainMessageID     string
	DeliveryChannelID string
	ClientRoleID      string
	GuildID           string
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "3000"),
		DatabaseDSN: getEnv("DATABASE_DSN", ""),
		BotToken:    getEnv("BOT_TOKEN", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		UploadPath:  getEnv("UPLOAD_PATH", "./public/uploads"),
		PublicPath:  getEnv("PUBLIC_PATH", "./public"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),

		MainChannelID:     getEnv("MAIN_CHANNEL_ID", ""),
		MainMessageID:     getEnv("MAIN_MESSAGE_ID", ""),
		DeliveryChannelID: getEnv("DELIVERY_CHANNEL_ID", ""),
		ClientRoleID:      getEnv("CLIENT_ROLE_ID", ""),
		GuildID:           getEnv("GUILD_ID", ""),
	}

	if cfg.DatabaseDSN == "" {
		log.Fatal("[FATAL] DATABASE_DSN is not set")
	}
	if cfg.BotToken == "" {
		log.Fatal("[FATAL] BOT_TOKEN is not set")
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}

	return cfg
}

// SettingsManagedExternally reports whether the storefront configuration
// comes from the environment instead of the database.
func (c *Config) SettingsManagedExternally() bool {
	return c.MainChannelID != "" && c.DeliveryChannelID != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
