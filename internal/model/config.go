package model

import "time"

// IntegrationConfig holds one user's Gong/Velaris integration settings.
// Credentials are stored as the opaque strings supplied by the caller.
type IntegrationConfig struct {
	ID                     string    `gorm:"primaryKey;size:36" json:"id"`
	UserID                 string    `gorm:"size:64;uniqueIndex:idx_config_user" json:"user_id"`
	VelarisToken           string    `gorm:"type:text" json:"velaris_token,omitempty"`
	GongAPIKey             string    `gorm:"type:text" json:"gong_api_key,omitempty"`
	IsActive               bool      `json:"is_active"`
	SyncFrequency          string    `gorm:"size:20" json:"sync_frequency"`
	CustomSyncHours        int       `json:"custom_sync_hours"`
	SelectedActivityTypeID string    `gorm:"size:64" json:"selected_activity_type_id"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasCredentials reports whether both API credentials are present.
func (c *IntegrationConfig) HasCredentials() bool {
	return c.VelarisToken != "" && c.GongAPIKey != ""
}
