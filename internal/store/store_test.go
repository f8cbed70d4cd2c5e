package store_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/model"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/store"
)

func setupInMemoryStores(t *testing.T) *store.StoreManager {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	s, err := store.NewStoreManager(db)
	if err != nil {
		t.Fatalf("new store manager: %v", err)
	}
	return s
}

func TestConfigUpsertAndLookup(t *testing.T) {
	s := setupInMemoryStores(t)

	cfg := &model.IntegrationConfig{
		UserID:        "u-1",
		VelarisToken:  "v-1",
		GongAPIKey:    "g-1",
		IsActive:      true,
		SyncFrequency: "daily",
	}
	if err := s.Config.Upsert(cfg); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if cfg.ID == "" {
		t.Fatalf("expected generated id")
	}

	got, err := s.Config.GetByUserID("u-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.VelarisToken != "v-1" || !got.IsActive {
		t.Fatalf("unexpected config: %+v", got)
	}

	// second upsert for the same user replaces fields, not rows
	cfg2 := &model.IntegrationConfig{ID: got.ID, UserID: "u-1", VelarisToken: "v-2", GongAPIKey: "g-1", IsActive: true}
	if err := s.Config.Upsert(cfg2); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got2, err := s.Config.GetByUserID("u-1")
	if err != nil {
		t.Fatalf("get after upsert: %v", err)
	}
	if got2.VelarisToken != "v-2" {
		t.Fatalf("upsert didn't update token: %+v", got2)
	}

	if _, err := s.Config.GetByUserID("missing"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListActiveFiltersCredentials(t *testing.T) {
	s := setupInMemoryStores(t)

	configs := []*model.IntegrationConfig{
		{UserID: "active", VelarisToken: "v", GongAPIKey: "g", IsActive: true},
		{UserID: "inactive", VelarisToken: "v", GongAPIKey: "g", IsActive: false},
		{UserID: "no-token", GongAPIKey: "g", IsActive: true},
		{UserID: "no-key", VelarisToken: "v", IsActive: true},
	}
	for _, cfg := range configs {
		if err := s.Config.Upsert(cfg); err != nil {
			t.Fatalf("upsert %s: %v", cfg.UserID, err)
		}
	}

	active, err := s.Config.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].UserID != "active" {
		t.Fatalf("expected only the fully-credentialed active config, got %+v", active)
	}
}

func TestRuleLifecycle(t *testing.T) {
	s := setupInMemoryStores(t)

	r := &model.DeduplicationRule{
		UserID:       "u-1",
		EntityType:   model.EntityAccount,
		GongField:    "title",
		VelarisField: "name",
	}
	if err := s.Rule.Create(r); err != nil {
		t.Fatalf("create: %v", err)
	}
	// duplicates are legal
	dup := &model.DeduplicationRule{UserID: "u-1", EntityType: model.EntityAccount, GongField: "title", VelarisField: "name"}
	if err := s.Rule.Create(dup); err != nil {
		t.Fatalf("create duplicate: %v", err)
	}

	bad := &model.DeduplicationRule{UserID: "u-1", EntityType: "contact", GongField: "x", VelarisField: "y"}
	if err := s.Rule.Create(bad); err == nil {
		t.Fatalf("expected invalid entity type error")
	}

	rules, err := s.Rule.ListByUser("u-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}

	if err := s.Rule.Delete(rules[0].ID, "u-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Rule.Delete(rules[0].ID, "u-1"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSyncLogIdempotencyLookup(t *testing.T) {
	s := setupInMemoryStores(t)

	errRow := &model.SyncLog{
		UserID:       "u-1",
		GongCallID:   "c-1",
		Status:       model.SyncStatusError,
		ErrorMessage: "boom",
		SyncType:     model.SyncTypeScheduled,
	}
	if err := s.SyncLog.Append(errRow); err != nil {
		t.Fatalf("append error row: %v", err)
	}

	synced, err := s.SyncLog.HasSuccess("u-1", "c-1")
	if err != nil {
		t.Fatalf("has success: %v", err)
	}
	if synced {
		t.Fatalf("error rows must not count as synced")
	}

	okRow := &model.SyncLog{
		UserID:            "u-1",
		GongCallID:        "c-1",
		GongCallTitle:     "Call one",
		VelarisActivityID: "act-1",
		Status:            model.SyncStatusSuccess,
		SyncType:          model.SyncTypeWebhook,
	}
	if err := s.SyncLog.Append(okRow); err != nil {
		t.Fatalf("append success row: %v", err)
	}

	synced, err = s.SyncLog.HasSuccess("u-1", "c-1")
	if err != nil {
		t.Fatalf("has success: %v", err)
	}
	if !synced {
		t.Fatalf("expected call to be marked synced")
	}

	// different user, same call id
	synced, err = s.SyncLog.HasSuccess("u-2", "c-1")
	if err != nil {
		t.Fatalf("has success: %v", err)
	}
	if synced {
		t.Fatalf("idempotency is per user")
	}

	entries, err := s.SyncLog.ListByUser("u-1", 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected limit to apply, got %d rows", len(entries))
	}
}
