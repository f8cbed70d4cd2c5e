package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/gong"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/model"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/store"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/velaris"
)

const defaultWindowHours = 6

// Sweeper runs the scheduled path: for every active, credentialed
// integration it fetches the calls completed inside the user's sync window
// and pushes each through the orchestrator. The client factories exist so
// tests can point the sweep at fake APIs.
type Sweeper struct {
	Stores    *store.StoreManager
	NewSource func(apiKey string) SourceAPI
	NewTarget func(token string) TargetAPI
	Now       func() time.Time
}

func NewSweeper(stores *store.StoreManager) *Sweeper {
	return &Sweeper{
		Stores:    stores,
		NewSource: func(apiKey string) SourceAPI { return gong.NewClient(apiKey) },
		NewTarget: func(token string) TargetAPI { return velaris.NewClient(token) },
		Now:       time.Now,
	}
}

// Window computes the start of the sync window for a config: 24 hours for
// daily frequency, the configured custom hours when set, 6 hours otherwise.
func Window(cfg *model.IntegrationConfig, now time.Time) time.Time {
	switch {
	case cfg.SyncFrequency == "daily":
		return now.Add(-24 * time.Hour)
	case cfg.CustomSyncHours > 0:
		return now.Add(-time.Duration(cfg.CustomSyncHours) * time.Hour)
	default:
		return now.Add(-defaultWindowHours * time.Hour)
	}
}

// RunAll sweeps every active integration. A user-level failure is recorded as
// one error row for that user and the remaining users still run.
func (s *Sweeper) RunAll(ctx context.Context) (int, error) {
	configs, err := s.Stores.Config.ListActive()
	if err != nil {
		return 0, fmt.Errorf("list active configs: %w", err)
	}
	log.Printf("sweep: found %d active integrations", len(configs))

	for i := range configs {
		cfg := configs[i]
		if err := s.SyncUser(ctx, &cfg); err != nil {
			log.Printf("sweep: user %s failed: %v", cfg.UserID, err)
			entry := &model.SyncLog{
				UserID:       cfg.UserID,
				Status:       model.SyncStatusError,
				ErrorMessage: err.Error(),
				SyncType:     model.SyncTypeScheduled,
			}
			if logErr := s.Stores.SyncLog.Append(entry); logErr != nil {
				log.Printf("sweep: failed to log error for user %s: %v", cfg.UserID, logErr)
			}
		}
	}
	return len(configs), nil
}

// SyncUser sweeps one user's window. Per-call failures are logged by the
// orchestrator and do not abort the rest of the batch; only failures before
// any call is processed (config or listing problems) are returned.
func (s *Sweeper) SyncUser(ctx context.Context, cfg *model.IntegrationConfig) error {
	if !cfg.HasCredentials() {
		return fmt.Errorf("user %s missing API credentials", cfg.UserID)
	}

	from := Window(cfg, s.Now())
	source := s.NewSource(cfg.GongAPIKey)
	calls, err := source.ListCalls(ctx, from)
	if err != nil {
		return fmt.Errorf("fetch calls: %w", err)
	}
	log.Printf("sweep: %d calls to sync for user %s", len(calls), cfg.UserID)
	if len(calls) == 0 {
		return nil
	}

	rules, err := s.Stores.Rule.ListByUser(cfg.UserID)
	if err != nil {
		return fmt.Errorf("list rules: %w", err)
	}

	orch := NewOrchestrator(source, s.NewTarget(cfg.VelarisToken), cfg, rules, s.Stores.SyncLog)
	for _, call := range calls {
		if _, err := orch.SyncCall(ctx, call.ID, call.Title, model.SyncTypeScheduled); err != nil {
			// already logged as an error row; keep going with the next call
			continue
		}
	}
	return nil
}
