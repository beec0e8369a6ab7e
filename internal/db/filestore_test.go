package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileScoreStoreKeepsBest(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scores", "high_scores.json")

	store, err := NewFileScoreStore(path)
	require.NoError(t, err)

	require.NoError(t, store.RecordScore(ctx, &LeaderboardEntry{PlayerID: "p1", Username: "ana", Level: 1, Score: 1300}))
	require.NoError(t, store.RecordScore(ctx, &LeaderboardEntry{PlayerID: "p1", Username: "ana", Level: 1, Score: 900}))
	require.NoError(t, store.RecordScore(ctx, &LeaderboardEntry{PlayerID: "p2", Username: "bo", Level: 1, Score: 1500}))
	require.NoError(t, store.RecordScore(ctx, &LeaderboardEntry{PlayerID: "p2", Username: "bo", Level: 2, Score: 200}))

	best, err := store.BestScore(ctx, "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1300, best.Score)
	assert.Equal(t, 2, best.Wins)

	top, err := store.TopScores(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "p2", top[0].PlayerID)
	assert.Equal(t, "p1", top[1].PlayerID)

	top, err = store.TopScores(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	_, err = store.BestScore(ctx, "p3", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileScoreStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "high_scores.json")

	store, err := NewFileScoreStore(path)
	require.NoError(t, err)
	require.NoError(t, store.RecordScore(ctx, &LeaderboardEntry{PlayerID: "p1", Username: "ana", Level: 3, Score: 2000}))

	reopened, err := NewFileScoreStore(path)
	require.NoError(t, err)
	best, err := reopened.BestScore(ctx, "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, 2000, best.Score)
}

func TestFileScoreStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "high_scores.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileScoreStore(path)
	assert.Error(t, err)
}
