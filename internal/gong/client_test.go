package gong

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetCall(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/calls/123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 123, "title": "Acme demo", "participants": [{"emailAddress": "a@acme.io"}]}`))
	}))
	defer srv.Close()

	c := NewClient("secret-key")
	c.BaseURL = srv.URL

	detail, err := c.GetCall(context.Background(), "123")
	require.NoError(t, err)
	require.Equal(t, "123", detail.ID(), "numeric ids coerce to strings")
	require.Equal(t, "Acme demo", detail.Title())
	require.Equal(t, []string{"a@acme.io"}, detail.ParticipantEmails())

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("secret-key:"))
	require.Equal(t, wantAuth, gotAuth, "gong uses basic auth with empty password")
}

func TestGetCallError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-key")
	c.BaseURL = srv.URL

	_, err := c.GetCall(context.Background(), "123")
	require.Error(t, err)
	require.Contains(t, err.Error(), "gong api error")
}

func TestListCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/calls", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "done", q.Get("status"))
		require.Equal(t, "2024-03-01T06:00:00Z", q.Get("fromDateTime"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"calls": [{"id": "c-1", "title": "first"}, {"id": "c-2", "title": "second"}]}`))
	}))
	defer srv.Close()

	c := NewClient("k")
	c.BaseURL = srv.URL

	from := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	calls, err := c.ListCalls(context.Background(), from)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	require.Equal(t, "c-1", calls[0].ID)
	require.Equal(t, "second", calls[1].Title)
}

func TestParticipantEmailsMalformed(t *testing.T) {
	require.Nil(t, CallDetail{"participants": "not a list"}.ParticipantEmails())
	require.Nil(t, CallDetail{}.ParticipantEmails())
}
