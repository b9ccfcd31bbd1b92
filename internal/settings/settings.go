// Package settings owns the storefront configuration singleton. It is
// loaded once at startup and every mutation goes through Apply, which
// also persists. There is no global mutable state outside this service.
package settings

import (
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-bot/internal/config"
	"storefront-bot/internal/models"
)

type Service struct {
	db     *gorm.DB
	logger *zap.Logger

	mu  sync.RWMutex
	cfg models.Configuration
}

// Load builds the service from the environment when the configuration is
// managed externally, otherwise from the database (creating the default
// row on first run).
func Load(db *gorm.DB, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	s := &Service{db: db, logger: logger}

	if cfg.SettingsManagedExternally() {
		logger.Info("storefront settings managed by environment variables")
		s.cfg = models.Configuration{
			ID:                  models.ConfigurationID,
			MainChannelID:       cfg.MainChannelID,
			MainMessageID:       cfg.MainMessageID,
			DeliveryChannelID:   cfg.DeliveryChannelID,
			ClientRoleID:        cfg.ClientRoleID,
			GuildID:             cfg.GuildID,
			IsManagedExternally: true,
		}
		return s, nil
	}

	var row models.Configuration
	err := db.First(&row, "id = ?", models.ConfigurationID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.Configuration{ID: models.ConfigurationID}
		if err := db.Create(&row).Error; err != nil {
			return nil, err
		}
		logger.Info("no stored settings found, created default row")
	case err != nil:
		return nil, err
	}
	row.IsManagedExternally = false
	s.cfg = row
	return s, nil
}

// Snapshot returns a copy of the current configuration.
func (s *Service) Snapshot() models.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update is a partial merge: nil fields are left untouched.
type Update struct {
	MainChannelID     *string
	MainMessageID     *string
	DeliveryChannelID *string
	ClientRoleID      *string
	GuildID           *string
}

// Apply merges the update and persists the result. When the configuration
// is managed externally the merge still happens in memory but the save is
// skipped.
func (s *Service) Apply(u Update) (models.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.MainChannelID != nil {
		s.cfg.MainChannelID = *u.MainChannelID
	}
	if u.MainMessageID != nil {
		s.cfg.MainMessageID = *u.MainMessageID
	}
	if u.DeliveryChannelID != nil {
		s.cfg.DeliveryChannelID = *u.DeliveryChannelID
	}
	if u.ClientRoleID != nil {
		s.cfg.ClientRoleID = *u.ClientRoleID
	}
	if u.GuildID != nil {
		s.cfg.GuildID = *u.GuildID
	}

	if s.cfg.IsManagedExternally {
		s.logger.Info("settings managed externally, skipping persist")
		return s.cfg, nil
	}
	if err := s.db.Save(&s.cfg).Error; err != nil {
		return s.cfg, err
	}
	return s.cfg, nil
}
