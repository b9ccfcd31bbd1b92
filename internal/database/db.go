package database

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"storefront-bot/internal/config"
	"storefront-bot/internal/models"
)

var DB *gorm.DB

func Init(cfg *config.Config, logger *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	if err := Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	DB = db
	logger.Info("database ready")
	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Configuration{},
		&models.StockItem{},
		&models.DeliveryRecord{},
		&models.User{},
	)
}

// defaultStock populates an empty store on first run.
var defaultStock = []models.StockItem{
	{ID: "TOMATRIO", Name: "TOMATRIO", Emoji: "🍅", Quantity: 202, Price: decimal.NewFromFloat(0.50), Max: 300},
	{ID: "MANGO", Name: "MANGO", Emoji: "🥭", Quantity: 260, Price: decimal.NewFromFloat(0.70), Max: 300},
	{ID: "MR_CARROT", Name: "MR CARROT", Emoji: "🥕", Quantity: 74, Price: decimal.NewFromFloat(0.40), Max: 150},
	{ID: "PLANTA", Name: "PLANTA (100k ~ 500k DPS)", Emoji: "🌱", Quantity: 12, Price: decimal.NewFromFloat(7.50), Max: 20},
}

// Seed inserts the default stock when the table is empty.
func Seed(db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&models.StockItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	logger.Info("stock table empty, seeding default items", zap.Int("items", len(defaultStock)))
	return db.Create(&defaultStock).Error
}
