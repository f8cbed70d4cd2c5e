package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/model"
)

type RuleStore struct {
	db *gorm.DB
}

func NewRuleStore(db *gorm.DB) *RuleStore {
	return &RuleStore{db: db}
}

func (s *RuleStore) Create(rule *model.DeduplicationRule) error {
	if rule == nil || rule.UserID == "" {
		return errors.New("invalid rule")
	}
	if rule.EntityType != model.EntityOrganisation && rule.EntityType != model.EntityAccount {
		return errors.New("invalid entity type")
	}
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	return s.db.Create(rule).Error
}

func (s *RuleStore) ListByUser(userID string) ([]model.DeduplicationRule, error) {
	var rules []model.DeduplicationRule
	err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&rules).Error
	return rules, err
}

func (s *RuleStore) Delete(id, userID string) error {
	res := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.DeduplicationRule{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
