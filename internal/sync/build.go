package sync

import (
	"errors"
	"time"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/gong"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/model"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/velaris"
)

const (
	defaultActivityTitle       = "Gong Call"
	defaultActivityDescription = "Call synced from Gong"
	defaultActivityType        = "default"
	defaultCallTitle           = "Untitled Call"
)

var errMissingCallID = errors.New("call record has no id")

// BuildActivity assembles the activity payload for a call. It is pure except
// for the start-time fallback, which uses the build-time clock when the call
// carries neither a scheduled nor an actual start.
func BuildActivity(detail gong.CallDetail, cfg *model.IntegrationConfig, links Links) (velaris.Activity, error) {
	externalID := detail.ID()
	if externalID == "" {
		return velaris.Activity{}, errMissingCallID
	}

	title := detail.Title()
	if title == "" {
		title = defaultActivityTitle
	}

	activityType := cfg.SelectedActivityTypeID
	if activityType == "" {
		activityType = defaultActivityType
	}

	description, ok := Extract(detail, "purpose")
	if !ok || description == "" {
		description, ok = Extract(detail, "summary")
	}
	if !ok || description == "" {
		description = defaultActivityDescription
	}

	startTime, ok := Extract(detail, "scheduledTime")
	if !ok || startTime == "" {
		startTime, ok = Extract(detail, "actualStart")
	}
	if !ok || startTime == "" {
		startTime = time.Now().UTC().Format(time.RFC3339)
	}

	return velaris.Activity{
		Title:               title,
		Type:                activityType,
		Description:         description,
		StartTime:           startTime,
		LinkedOrganisations: links.Organisations,
		LinkedAccounts:      links.Accounts,
		LinkedContacts:      links.Contacts,
		LinkedUsers:         links.Users,
		ExternalID:          externalID,
	}, nil
}
