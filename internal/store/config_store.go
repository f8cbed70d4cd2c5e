package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/model"
)

type ConfigStore struct {
	db *gorm.DB
}

func NewConfigStore(db *gorm.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// Upsert inserts or replaces the config for cfg.UserID. Each user has at most
// one config row.
func (s *ConfigStore) Upsert(cfg *model.IntegrationConfig) error {
	if cfg == nil || cfg.UserID == "" {
		return errors.New("invalid config")
	}
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"velaris_token", "gong_api_key", "is_active",
			"sync_frequency", "custom_sync_hours", "selected_activity_type_id",
			"updated_at",
		}),
	}).Create(cfg).Error
}

func (s *ConfigStore) GetByUserID(userID string) (*model.IntegrationConfig, error) {
	var cfg model.IntegrationConfig
	if err := s.db.First(&cfg, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// ListActive returns every config that is enabled and fully credentialed;
// these are the integrations a scheduled sweep covers.
func (s *ConfigStore) ListActive() ([]model.IntegrationConfig, error) {
	var configs []model.IntegrationConfig
	err := s.db.
		Where("is_active = ?", true).
		Where("velaris_token <> ''").
		Where("gong_api_key <> ''").
		Find(&configs).Error
	return configs, err
}
