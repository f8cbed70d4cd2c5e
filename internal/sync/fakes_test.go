package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yasinthaj/lovable-velaris-bridge/internal/gong"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/store"
	"github.com/yasinthaj/lovable-velaris-bridge/internal/velaris"
)

func setupStores(t *testing.T) *store.StoreManager {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	stores, err := store.NewStoreManager(db)
	require.NoError(t, err)
	return stores
}

// fakeSource is an in-memory SourceAPI.
type fakeSource struct {
	calls      []gong.Call
	details    map[string]gong.CallDetail
	detailErrs map[string]error
	listErr    error
}

func (f *fakeSource) GetCall(_ context.Context, id string) (gong.CallDetail, error) {
	if err := f.detailErrs[id]; err != nil {
		return nil, err
	}
	detail, ok := f.details[id]
	if !ok {
		return nil, fmt.Errorf("gong api error: 404 Not Found: no call %s", id)
	}
	return detail, nil
}

func (f *fakeSource) ListCalls(_ context.Context, _ time.Time) ([]gong.Call, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.calls, nil
}

// fakeTarget is an in-memory TargetAPI. Search results are keyed by
// "field=value"; batch reads return fixed entity sets and capture the emails
// they were asked about.
type fakeTarget struct {
	orgs     map[string][]velaris.Entity
	accounts map[string][]velaris.Entity
	contacts []velaris.Entity
	users    []velaris.Entity

	searchErr  error
	createErrs map[string]error

	contactEmails []string
	userEmails    []string
	created       []velaris.Activity
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		orgs:       map[string][]velaris.Entity{},
		accounts:   map[string][]velaris.Entity{},
		createErrs: map[string]error{},
	}
}

func searchKey(fieldName, value string) string { return fieldName + "=" + value }

func (f *fakeTarget) SearchOrganisations(_ context.Context, fieldName, value string) ([]velaris.Entity, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.orgs[searchKey(fieldName, value)], nil
}

func (f *fakeTarget) SearchAccounts(_ context.Context, fieldName, value string) ([]velaris.Entity, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.accounts[searchKey(fieldName, value)], nil
}

func (f *fakeTarget) BatchReadContacts(_ context.Context, emails []string) ([]velaris.Entity, error) {
	f.contactEmails = append(f.contactEmails, emails...)
	return f.contacts, nil
}

func (f *fakeTarget) BatchReadUsers(_ context.Context, emails []string) ([]velaris.Entity, error) {
	f.userEmails = append(f.userEmails, emails...)
	return f.users, nil
}

func (f *fakeTarget) CreateActivity(_ context.Context, activity velaris.Activity) (string, error) {
	if err := f.createErrs[activity.ExternalID]; err != nil {
		return "", err
	}
	f.created = append(f.created, activity)
	return fmt.Sprintf("act-%d", len(f.created)), nil
}

var errUpstream = errors.New("velaris create activity error: 500 Internal Server Error")
