package sync

import (
	"context"
	"log"
	"time"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/gong"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/model"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/velaris"
)

// SourceAPI is the slice of the Gong client the engine depends on.
type SourceAPI interface {
	GetCall(ctx context.Context, id string) (gong.CallDetail, error)
	ListCalls(ctx context.Context, from time.Time) ([]gong.Call, error)
}

// TargetAPI is the slice of the Velaris client the engine depends on.
type TargetAPI interface {
	SearchOrganisations(ctx context.Context, fieldName, value string) ([]velaris.Entity, error)
	SearchAccounts(ctx context.Context, fieldName, value string) ([]velaris.Entity, error)
	BatchReadContacts(ctx context.Context, emails []string) ([]velaris.Entity, error)
	BatchReadUsers(ctx context.Context, emails []string) ([]velaris.Entity, error)
	CreateActivity(ctx context.Context, activity velaris.Activity) (string, error)
}

// Links holds the resolved Velaris entity ids for one call. Each slice is a
// set: deduplicated, empty ids dropped, insertion-ordered.
type Links struct {
	Organisations []string
	Accounts      []string
	Contacts      []string
	Users         []string
}

// idSet unions entity ids across rules while keeping first-seen order.
type idSet struct {
	seen map[string]bool
	ids  []string
}

// ids starts non-nil so empty link sets marshal as [] rather than null.
func newIDSet() *idSet {
	return &idSet{seen: make(map[string]bool), ids: []string{}}
}

func (s *idSet) add(entities []velaris.Entity) {
	for _, e := range entities {
		if e.ID == "" || s.seen[e.ID] {
			continue
		}
		s.seen[e.ID] = true
		s.ids = append(s.ids, e.ID)
	}
}

// PartitionRules splits a user's rules by target entity type. Duplicate rules
// are kept; each executes its own search and the results are unioned anyway.
func PartitionRules(rules []model.DeduplicationRule) (orgs, accounts []model.DeduplicationRule) {
	for _, r := range rules {
		switch r.EntityType {
		case model.EntityOrganisation:
			orgs = append(orgs, r)
		case model.EntityAccount:
			accounts = append(accounts, r)
		}
	}
	return orgs, accounts
}

// ResolveLinks finds the Velaris entities to link a call's activity to.
// Organisations and accounts come from the user's deduplication rules;
// contacts and users come from participant email batch lookups. A failed
// search or lookup degrades to no matches for that rule; resolution itself
// never fails.
func ResolveLinks(ctx context.Context, target TargetAPI, rules []model.DeduplicationRule, detail gong.CallDetail) Links {
	orgRules, accountRules := PartitionRules(rules)

	orgIDs := newIDSet()
	for _, rule := range orgRules {
		value, ok := Extract(detail, rule.GongField)
		if !ok || value == "" {
			continue
		}
		entities, err := target.SearchOrganisations(ctx, rule.VelarisField, value)
		if err != nil {
			log.Printf("sync: organisation search failed for field %s: %v", rule.VelarisField, err)
			continue
		}
		orgIDs.add(entities)
	}

	accountIDs := newIDSet()
	for _, rule := range accountRules {
		value, ok := Extract(detail, rule.GongField)
		if !ok || value == "" {
			continue
		}
		entities, err := target.SearchAccounts(ctx, rule.VelarisField, value)
		if err != nil {
			log.Printf("sync: account search failed for field %s: %v", rule.VelarisField, err)
			continue
		}
		accountIDs.add(entities)
	}

	contactIDs := newIDSet()
	userIDs := newIDSet()
	if emails := detail.ParticipantEmails(); len(emails) > 0 {
		contacts, err := target.BatchReadContacts(ctx, emails)
		if err != nil {
			log.Printf("sync: contact lookup failed: %v", err)
		}
		contactIDs.add(contacts)

		users, err := target.BatchReadUsers(ctx, emails)
		if err != nil {
			log.Printf("sync: user lookup failed: %v", err)
		}
		userIDs.add(users)
	}

	return Links{
		Organisations: orgIDs.ids,
		Accounts:      accountIDs.ids,
		Contacts:      contactIDs.ids,
		Users:         userIDs.ids,
	}
}
