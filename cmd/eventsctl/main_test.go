package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/go-events-client/events"
	"github.com/jrsteele09/go-events-client/internal/utils"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu    sync.Mutex
	saved map[string]bool
}

var catalogue = []map[string]any{
	{"id": "e1", "title": "Jazz Night", "category": "Music", "price": 12.0, "tags": []string{"jazz"},
		"location": map[string]any{"name": "Blue Room", "latitude": 51.5, "longitude": -0.12, "features": []string{"bar"}}},
	{"id": "e2", "title": "Kids Science Day", "category": "Family", "price": 0.0, "tags": []string{"kids"}},
	{"id": "e3", "title": "Tech Conference", "category": "Business", "price": 80.0},
}

func (f *fakeAPI) isSaved(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[id]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) handler() http.Handler {
	user := map[string]any{"id": "u1", "email": "ada@example.com", "display_name": "Ada"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "a1", "refresh_token": "r1", "user": user})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	mux.HandleFunc("GET /api/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	})
	mux.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"events": catalogue})
	})
	mux.HandleFunc("GET /api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		for _, e := range catalogue {
			if e["id"] == r.PathValue("id") {
				writeJSON(w, http.StatusOK, map[string]any{"event": e})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Event not found"})
	})
	mux.HandleFunc("GET /api/saved", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := []map[string]any{}
		for _, e := range catalogue {
			if f.saved[e["id"].(string)] {
				out = append(out, e)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": out})
	})
	mux.HandleFunc("POST /api/saved", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			EventID string `json:"event_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.saved[body.EventID] = true
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
	})
	mux.HandleFunc("DELETE /api/saved/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		delete(f.saved, r.PathValue("id"))
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	return mux
}

func setupTestFixture(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{saved: map[string]bool{}}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	t.Setenv("EVENTS_API_BASE_URL", srv.URL)
	t.Setenv("EVENTS_STORE_PATH", filepath.Join(t.TempDir(), "secure.db"))
	t.Setenv("EVENTS_STORE_PASSPHRASE", "test passphrase")
	t.Setenv("LOG_LEVEL", "error")
	return f
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_Help(t *testing.T) {
	setupTestFixture(t)
	out, err := runCmd(t)
	require.NoError(t, err)
	require.Contains(t, out, "Usage:")
	require.Contains(t, out, "foryou")

	_, err = runCmd(t, "dance")
	require.Error(t, err)
	require.Equal(t, 2, exitCode(err))
}

func TestRun_SessionPersistsAcrossInvocations(t *testing.T) {
	setupTestFixture(t)

	out, err := runCmd(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "not signed in")

	out, err = runCmd(t, "login", "-email", "ada@example.com", "-password", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "signed in as Ada")

	out, err = runCmd(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Ada <ada@example.com>")

	out, err = runCmd(t, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "signed out")

	out, err = runCmd(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "not signed in")
}

func TestRun_Discover(t *testing.T) {
	setupTestFixture(t)

	out, err := runCmd(t, "discover", "-price", "free")
	require.NoError(t, err)
	require.Contains(t, out, "Kids Science Day")
	require.NotContains(t, out, "Jazz Night")

	out, err = runCmd(t, "discover", "-feature", "bar", "-near", "51.5,-0.12")
	require.NoError(t, err)
	require.Contains(t, out, "Jazz Night")
	require.Contains(t, out, "0.0 km")
	require.NotContains(t, out, "Tech Conference")

	_, err = runCmd(t, "discover", "-price", "cheap")
	require.Error(t, err)
	require.Equal(t, 2, exitCode(err))
}

func TestRun_SaveAndRank(t *testing.T) {
	api := setupTestFixture(t)

	_, err := runCmd(t, "toggle", "e1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not authenticated")

	_, err = runCmd(t, "login", "-email", "ada@example.com", "-password", "pw")
	require.NoError(t, err)

	out, err := runCmd(t, "toggle", "e1")
	require.NoError(t, err)
	require.Contains(t, out, "saved Jazz Night")
	require.True(t, api.isSaved("e1"))

	out, err = runCmd(t, "saved")
	require.NoError(t, err)
	require.Contains(t, out, "Jazz Night")

	out, err = runCmd(t, "foryou")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Contains(t, lines[0], "Jazz Night")
	require.Contains(t, lines[0], "category")

	out, err = runCmd(t, "toggle", "e1")
	require.NoError(t, err)
	require.Contains(t, out, "removed Jazz Night")
	require.False(t, api.isSaved("e1"))

	out, err = runCmd(t, "vibe", "Family")
	require.NoError(t, err)
	require.Contains(t, out, "vibe set to family")
}

func TestEventLine(t *testing.T) {
	e := events.Event{Title: "Jazz Night", Price: utils.Ptr(12.0), RatingCount: 14, RatingAvg: utils.Ptr(4.56)}
	line := eventLine(&e)
	require.Contains(t, line, "£12.00")
	require.Contains(t, line, "4.6/5 (14)")

	e = events.Event{Title: "Open Mic", Price: utils.Ptr(0.0), RatingCount: 3}
	line = eventLine(&e)
	require.Contains(t, line, "free")
	require.Contains(t, line, "0.0/5 (3)")

	e = events.Event{Title: "TBC"}
	line = eventLine(&e)
	require.Contains(t, line, "tba")
	require.Contains(t, line, "-")
	require.NotContains(t, line, "/5")
}
