package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

var ErrNotFound = errors.New("not found")

// FileScoreStore keeps high scores in a JSON file. It is used when no
// MongoDB is configured.
type FileScoreStore struct {
	mu      sync.Mutex
	path    string
	entries []LeaderboardEntry
}

// NewFileScoreStore loads path if it exists. A missing file is an empty
// leaderboard.
func NewFileScoreStore(path string) (*FileScoreStore, error) {
	s := &FileScoreStore{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading high scores: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.entries); err != nil {
			return nil, fmt.Errorf("parsing high scores %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *FileScoreStore) RecordScore(_ context.Context, entry *LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for i := range s.entries {
		e := &s.entries[i]
		if e.PlayerID != entry.PlayerID || e.Level != entry.Level {
			continue
		}
		e.Score = max(e.Score, entry.Score)
		e.Username = entry.Username
		e.LevelName = entry.LevelName
		e.Wins++
		e.UpdatedAt = now
		return s.flush()
	}

	s.entries = append(s.entries, LeaderboardEntry{
		PlayerID:  entry.PlayerID,
		Username:  entry.Username,
		Level:     entry.Level,
		LevelName: entry.LevelName,
		Score:     entry.Score,
		Wins:      1,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return s.flush()
}

func (s *FileScoreStore) TopScores(_ context.Context, level, limit int) ([]LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []LeaderboardEntry
	for _, e := range s.entries {
		if e.Level == level {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *FileScoreStore) BestScore(_ context.Context, playerID string, level int) (*LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.PlayerID == playerID && e.Level == level {
			entry := e
			return &entry, nil
		}
	}
	return nil, ErrNotFound
}

// flush writes through a temp file so a crash never leaves half a file.
func (s *FileScoreStore) flush() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating high score dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing high scores: %w", err)
	}
	return os.Rename(tmp, s.path)
}
