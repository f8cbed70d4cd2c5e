package model

import "time"

type EntityType string

const (
	EntityOrganisation EntityType = "organisation"
	EntityAccount      EntityType = "account"
)

// DeduplicationRule maps a Gong call field to a Velaris entity field. When a
// call is synced, the value at GongField is searched against VelarisField and
// every matching entity is linked to the created activity. A user may hold any
// number of rules, duplicates included; each rule is evaluated independently.
type DeduplicationRule struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	UserID       string     `gorm:"size:64;index:idx_rule_user" json:"user_id"`
	EntityType   EntityType `gorm:"size:20" json:"entity_type"`
	GongField    string     `gorm:"size:255" json:"gong_field"`
	VelarisField string     `gorm:"size:255" json:"velaris_field"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
