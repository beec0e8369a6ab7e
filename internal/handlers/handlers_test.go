package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/besuhoff/dark-ritual-go/internal/auth"
	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/db"
)

func setupConfig(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = &config.Config{
		SecretKey:                "test-secret",
		AccessTokenExpireMinutes: 5,
		Levels:                   config.DefaultLevels(),
	}
	t.Cleanup(func() { config.AppConfig = prev })
}

func bearer(t *testing.T, r *http.Request, playerID string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(playerID, "ana")
	require.NoError(t, err)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestGetLevels(t *testing.T) {
	setupConfig(t)

	rec := httptest.NewRecorder()
	HandleGetLevels(rec, httptest.NewRequest(http.MethodGet, "/api/v1/levels", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var levels []LevelResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&levels))
	require.Len(t, levels, len(config.DefaultLevels()))
	assert.Equal(t, 1, levels[0].Number)
	assert.Equal(t, "Nursery", levels[0].Name)
	assert.Equal(t, 3, levels[0].RitualItemsRequired)
}

func newScoreStore(t *testing.T) *db.FileScoreStore {
	t.Helper()
	store, err := db.NewFileScoreStore(filepath.Join(t.TempDir(), "high_scores.json"))
	require.NoError(t, err)

	ctx := context.Background()
	for _, e := range []db.LeaderboardEntry{
		{PlayerID: "a", Username: "ana", Level: 1, Score: 300},
		{PlayerID: "b", Username: "bo", Level: 1, Score: 900},
		{PlayerID: "c", Username: "cy", Level: 1, Score: 600},
		{PlayerID: "a", Username: "ana", Level: 2, Score: 5000},
	} {
		require.NoError(t, store.RecordScore(ctx, &e))
	}
	return store
}

func TestGetLeaderboard(t *testing.T) {
	setupConfig(t)
	h := NewLeaderboardHandler(newScoreStore(t))

	rec := httptest.NewRecorder()
	h.HandleGetLeaderboard(rec, httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard?level=1&limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []LeaderboardEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "bo", entries[0].Username)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "cy", entries[1].Username)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestGetLeaderboardBadLevel(t *testing.T) {
	setupConfig(t)
	h := NewLeaderboardHandler(newScoreStore(t))

	for _, q := range []string{"level=abc", "level=0", "level=99"} {
		rec := httptest.NewRecorder()
		h.HandleGetLeaderboard(rec, httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestGetPersonalBest(t *testing.T) {
	setupConfig(t)
	h := NewLeaderboardHandler(newScoreStore(t))

	rec := httptest.NewRecorder()
	h.HandleGetPersonalBest(rec, bearer(t, httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard/me?level=2", nil), "a"))
	require.Equal(t, http.StatusOK, rec.Code)

	var best db.LeaderboardEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&best))
	assert.Equal(t, 5000, best.Score)

	rec = httptest.NewRecorder()
	h.HandleGetPersonalBest(rec, bearer(t, httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard/me?level=3", nil), "a"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleGetPersonalBest(rec, httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fakeSessions struct {
	sessions []db.GameSession
	deleted  []primitive.ObjectID
}

func (f *fakeSessions) FindByHost(_ context.Context, hostID string) ([]db.GameSession, error) {
	var out []db.GameSession
	for _, s := range f.sessions {
		if s.HostID == hostID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessions) Delete(_ context.Context, id primitive.ObjectID, hostID string) (bool, error) {
	for _, s := range f.sessions {
		if s.ID == id && s.HostID == hostID {
			f.deleted = append(f.deleted, id)
			return true, nil
		}
	}
	return false, nil
}

func TestSessionsUnavailableWithoutDatabase(t *testing.T) {
	setupConfig(t)
	h := NewSessionHandler(nil)

	rec := httptest.NewRecorder()
	h.HandleSessions(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListAndDeleteSessions(t *testing.T) {
	setupConfig(t)
	mine := db.GameSession{ID: primitive.NewObjectID(), Name: "run", HostID: "a", Level: 2}
	mine.Player.Score = 450
	theirs := db.GameSession{ID: primitive.NewObjectID(), HostID: "b", Level: 1}
	store := &fakeSessions{sessions: []db.GameSession{mine, theirs}}
	h := &SessionHandler{sessionRepo: store}

	rec := httptest.NewRecorder()
	h.HandleSessions(rec, bearer(t, httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil), "a"))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID.Hex(), list[0].ID)
	assert.Equal(t, 450, list[0].Score)
	assert.Equal(t, 2, list[0].Level)

	rec = httptest.NewRecorder()
	h.HandleSessions(rec, bearer(t, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+theirs.ID.Hex(), nil), "a"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleSessions(rec, bearer(t, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+mine.ID.Hex(), nil), "a"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []primitive.ObjectID{mine.ID}, store.deleted)

	rec = httptest.NewRecorder()
	h.HandleSessions(rec, bearer(t, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/not-an-id", nil), "a"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleSessions(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
