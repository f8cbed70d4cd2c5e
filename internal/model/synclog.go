package model

import "time"

type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
)

type SyncType string

const (
	SyncTypeWebhook   SyncType = "webhook"
	SyncTypeScheduled SyncType = "scheduled"
)

// SyncLog is the append-only audit record of one sync attempt. A row with
// status=success for a (user_id, gong_call_id) pair is what marks the call as
// already synced; error rows do not suppress retries on the next trigger.
type SyncLog struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	UserID            string     `gorm:"size:64;index:idx_synclog_call,priority:1" json:"user_id"`
	GongCallID        string     `gorm:"size:64;index:idx_synclog_call,priority:2" json:"gong_call_id"`
	GongCallTitle     string     `gorm:"size:255" json:"gong_call_title"`
	VelarisActivityID string     `gorm:"size:64" json:"velaris_activity_id,omitempty"`
	Status            SyncStatus `gorm:"size:20;index:idx_synclog_call,priority:3" json:"status"`
	ErrorMessage      string     `gorm:"type:text" json:"error_message,omitempty"`
	SyncType          SyncType   `gorm:"size:20" json:"sync_type"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
