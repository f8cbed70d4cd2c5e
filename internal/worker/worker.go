package worker

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/model"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/queue"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/store"
	syncengine "github.com/yasinthaj/lovable-velaris-bridge/internal/sync"
)

// Worker consumes sweep jobs and runs the sweep for the addressed user. One
// job covers one user, so a failing user never blocks another user's sweep.
type Worker struct {
	stores     *store.StoreManager
	sweeper    *syncengine.Sweeper
	qclient    queue.Client
	workerPool int
	wg         sync.WaitGroup
}

func NewWorker(stores *store.StoreManager, sweeper *syncengine.Sweeper, q queue.Client, pool int) *Worker {
	return &Worker{stores: stores, sweeper: sweeper, qclient: q, workerPool: pool}
}

func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.workerPool; i++ {
		w.wg.Add(1)
		go func(idx int) {
			defer w.wg.Done()
			log.Printf("worker %d started", idx)
			jobs, err := w.qclient.Consume(ctx)
			if err != nil {
				log.Printf("worker %d failed to consume: %v", idx, err)
				return
			}
			for {
				select {
				case <-ctx.Done():
					log.Printf("worker %d stopping", idx)
					return
				case job, ok := <-jobs:
					if !ok {
						log.Printf("worker %d jobs channel closed", idx)
						return
					}
					w.process(ctx, job)
				}
			}
		}(i)
	}
	// wait in background for ctx cancellation then wg
	go func() {
		<-ctx.Done()
		log.Println("waiting for workers to finish...")
		w.wg.Wait()
	}()
}

func (w *Worker) process(ctx context.Context, job queue.SweepJob) {
	log.Printf("worker: sweeping user %s", job.UserID)
	cfg, err := w.stores.Config.GetByUserID(job.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("worker: no config for user %s, dropping job", job.UserID)
			return
		}
		log.Printf("worker: config lookup for user %s failed: %v", job.UserID, err)
		return
	}
	if !cfg.IsActive {
		log.Printf("worker: integration for user %s inactive, dropping job", job.UserID)
		return
	}
	if err := w.sweeper.SyncUser(ctx, cfg); err != nil {
		log.Printf("worker: sweep for user %s failed: %v", job.UserID, err)
		entry := &model.SyncLog{
			UserID:       cfg.UserID,
			Status:       model.SyncStatusError,
			ErrorMessage: err.Error(),
			SyncType:     model.SyncTypeScheduled,
		}
		if logErr := w.stores.SyncLog.Append(entry); logErr != nil {
			log.Printf("worker: failed to log error for user %s: %v", cfg.UserID, logErr)
		}
	}
}
