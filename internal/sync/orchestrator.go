package sync

import (
	"context"
	"fmt"
	"log"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/model"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/store"
)

// Outcome is the terminal state of one call's sync.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeSuccess
	OutcomeFailed
)

// Result reports how a call's sync ended. ActivityID is set on success only.
type Result struct {
	Outcome    Outcome
	ActivityID string
}

// Orchestrator syncs single calls for one user. Both triggers, the webhook
// and the scheduled sweep, drive the same engine; they differ only in how
// they obtain call ids and in the sync_type they tag log rows with.
type Orchestrator struct {
	Source SourceAPI
	Target TargetAPI
	Config *model.IntegrationConfig
	Rules  []model.DeduplicationRule
	Logs   store.SyncLogStoreInterface
}

func NewOrchestrator(src SourceAPI, dst TargetAPI, cfg *model.IntegrationConfig, rules []model.DeduplicationRule, logs store.SyncLogStoreInterface) *Orchestrator {
	return &Orchestrator{Source: src, Target: dst, Config: cfg, Rules: rules, Logs: logs}
}

// SyncCall processes one completed call end to end: idempotency check, detail
// fetch, link resolution, payload build, submission, audit log. The returned
// error is non-nil exactly when the outcome is Failed, and a matching error
// row has already been logged. fallbackTitle is used in error rows when the
// call detail was never fetched.
func (o *Orchestrator) SyncCall(ctx context.Context, callID, fallbackTitle string, syncType model.SyncType) (Result, error) {
	userID := o.Config.UserID

	synced, err := o.Logs.HasSuccess(userID, callID)
	if err != nil {
		return o.fail(callID, fallbackTitle, syncType, fmt.Errorf("idempotency check: %w", err))
	}
	if synced {
		log.Printf("sync: call %s already synced for user %s, skipping", callID, userID)
		return Result{Outcome: OutcomeSkipped}, nil
	}

	detail, err := o.Source.GetCall(ctx, callID)
	if err != nil {
		return o.fail(callID, fallbackTitle, syncType, fmt.Errorf("fetch call details: %w", err))
	}

	links := ResolveLinks(ctx, o.Target, o.Rules, detail)

	activity, err := BuildActivity(detail, o.Config, links)
	if err != nil {
		return o.fail(callID, detail.Title(), syncType, fmt.Errorf("build activity: %w", err))
	}

	activityID, err := o.Target.CreateActivity(ctx, activity)
	if err != nil {
		return o.fail(callID, detail.Title(), syncType, fmt.Errorf("create activity: %w", err))
	}

	title := detail.Title()
	if title == "" {
		title = defaultCallTitle
	}
	entry := &model.SyncLog{
		UserID:            userID,
		GongCallID:        callID,
		GongCallTitle:     title,
		VelarisActivityID: activityID,
		Status:            model.SyncStatusSuccess,
		SyncType:          syncType,
	}
	if err := o.Logs.Append(entry); err != nil {
		// the activity exists; surface the log failure rather than retrying
		// the submission on the next trigger without a guard row
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("append sync log: %w", err)
	}

	log.Printf("sync: call %s synced for user %s, activity %s", callID, userID, activityID)
	return Result{Outcome: OutcomeSuccess, ActivityID: activityID}, nil
}

func (o *Orchestrator) fail(callID, title string, syncType model.SyncType, cause error) (Result, error) {
	if title == "" {
		title = defaultCallTitle
	}
	entry := &model.SyncLog{
		UserID:        o.Config.UserID,
		GongCallID:    callID,
		GongCallTitle: title,
		Status:        model.SyncStatusError,
		ErrorMessage:  cause.Error(),
		SyncType:      syncType,
	}
	if err := o.Logs.Append(entry); err != nil {
		log.Printf("sync: failed to log error for call %s: %v", callID, err)
	}
	return Result{Outcome: OutcomeFailed}, cause
}
