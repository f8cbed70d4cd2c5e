package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/model"
)

type SyncLogStore struct {
	db *gorm.DB
}

func NewSyncLogStore(db *gorm.DB) *SyncLogStore {
	return &SyncLogStore{db: db}
}

// Append writes one audit row. Rows are never updated or deleted.
func (s *SyncLogStore) Append(entry *model.SyncLog) error {
	if entry == nil || entry.UserID == "" {
		return errors.New("invalid sync log entry")
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	return s.db.Create(entry).Error
}

// HasSuccess reports whether the call has already been synced for the user.
// Only status=success rows count; error rows leave the call eligible for the
// next trigger.
func (s *SyncLogStore) HasSuccess(userID, gongCallID string) (bool, error) {
	var count int64
	err := s.db.Model(&model.SyncLog{}).
		Where("user_id = ? AND gong_call_id = ? AND status = ?", userID, gongCallID, model.SyncStatusSuccess).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SyncLogStore) ListByUser(userID string, limit int) ([]model.SyncLog, error) {
	var entries []model.SyncLog
	query := s.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}
