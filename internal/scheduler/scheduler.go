package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/queue"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/store"
	syncengine "github.com/yasinthaj/lovable-velaris-bridge/internal/sync"
)

// Scheduler triggers a sweep on a fixed interval. With a queue configured it
// publishes one SweepJob per active integration and lets the worker pool fan
// the users out; without one it runs the whole sweep in-process.
type Scheduler struct {
	stores   *store.StoreManager
	sweeper  *syncengine.Sweeper
	qclient  queue.Client
	interval time.Duration
}

func New(stores *store.StoreManager, sweeper *syncengine.Sweeper, q queue.Client, interval time.Duration) *Scheduler {
	return &Scheduler{stores: stores, sweeper: sweeper, qclient: q, interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		log.Printf("scheduler: sweeping every %s", s.interval)
		for {
			select {
			case <-ctx.Done():
				log.Println("scheduler: stopping")
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.qclient == nil {
		if _, err := s.sweeper.RunAll(ctx); err != nil {
			log.Printf("scheduler: sweep failed: %v", err)
		}
		return
	}
	configs, err := s.stores.Config.ListActive()
	if err != nil {
		log.Printf("scheduler: list active configs failed: %v", err)
		return
	}
	for _, cfg := range configs {
		if err := s.qclient.Publish(ctx, queue.SweepJob{UserID: cfg.UserID}); err != nil {
			log.Printf("scheduler: failed to publish sweep job for user %s: %v", cfg.UserID, err)
		}
	}
}
