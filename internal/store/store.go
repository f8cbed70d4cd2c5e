package store

import (
	"errors"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/model"
)

var ErrNotFound = errors.New("record not found")

type ConfigStoreInterface interface {
	Upsert(cfg *model.IntegrationConfig) error
	GetByUserID(userID string) (*model.IntegrationConfig, error)
	ListActive() ([]model.IntegrationConfig, error)
}

type RuleStoreInterface interface {
	Create(rule *model.DeduplicationRule) error
	ListByUser(userID string) ([]model.DeduplicationRule, error)
	Delete(id, userID string) error
}

type SyncLogStoreInterface interface {
	Append(entry *model.SyncLog) error
	HasSuccess(userID, gongCallID string) (bool, error)
	ListByUser(userID string, limit int) ([]model.SyncLog, error)
}

// StoreManager bundles the per-entity stores behind one handle.
type StoreManager struct {
	Config  ConfigStoreInterface
	Rule    RuleStoreInterface
	SyncLog SyncLogStoreInterface
}

// NewStoreManager initialises all stores on an existing *gorm.DB and runs
// migrations. Tests pass an in-memory sqlite DB here.
func NewStoreManager(db *gorm.DB) (*StoreManager, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return &StoreManager{
		Config:  NewConfigStore(db),
		Rule:    NewRuleStore(db),
		SyncLog: NewSyncLogStore(db),
	}, nil
}

// Open connects to MySQL using the provided DSN and returns a migrated
// StoreManager. DSN format is the one accepted by go-sql-driver/mysql,
// e.g. user:pass@tcp(127.0.0.1:3306)/dbname?parseTime=true
func Open(dsn string) (*StoreManager, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return NewStoreManager(db)
}

func RunMigrations(db *gorm.DB) error {
	mig := db.Migrator()

	for _, m := range []any{&model.IntegrationConfig{}, &model.DeduplicationRule{}, &model.SyncLog{}} {
		if !mig.HasTable(m) {
			if err := mig.CreateTable(m); err != nil {
				return err
			}
		}
	}

	if !mig.HasIndex(&model.IntegrationConfig{}, "idx_config_user") {
		if err := mig.CreateIndex(&model.IntegrationConfig{}, "idx_config_user"); err != nil {
			return err
		}
	}
	if !mig.HasIndex(&model.DeduplicationRule{}, "idx_rule_user") {
		if err := mig.CreateIndex(&model.DeduplicationRule{}, "idx_rule_user"); err != nil {
			return err
		}
	}
	// composite index backing the idempotency lookup; a uniqueness constraint
	// on (user_id, gong_call_id, status=success) can be layered on here if
	// concurrent triggers are ever introduced
	if !mig.HasIndex(&model.SyncLog{}, "idx_synclog_call") {
		if err := mig.CreateIndex(&model.SyncLog{}, "idx_synclog_call"); err != nil {
			return err
		}
	}

	return nil
}
