package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/besuhoff/dark-ritual-go/internal/auth"
	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/db"
	"github.com/besuhoff/dark-ritual-go/internal/logger"
)

const maxLeaderboardLimit = 100

// LeaderboardHandler handles leaderboard-related HTTP requests
type LeaderboardHandler struct {
	scores db.ScoreStore
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(scores db.ScoreStore) *LeaderboardHandler {
	return &LeaderboardHandler{scores: scores}
}

// LeaderboardEntry represents an entry in the leaderboard
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Wins      int    `json:"wins"`
	UpdatedAt string `json:"updated_at"`
}

// HandleGetLeaderboard returns the top scores of a level
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	level, err := queryLevel(r)
	if err != nil {
		http.Error(w, "Invalid level", http.StatusBadRequest)
		return
	}

	limit := config.DefaultLeaderboardSize
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if val, err := strconv.Atoi(limitStr); err == nil && val > 0 {
			limit = min(val, maxLeaderboardLimit)
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	top, err := h.scores.TopScores(ctx, level, limit)
	if err != nil {
		logger.Log.WithError(err).WithField("level", level).Error("Failed to fetch leaderboard")
		http.Error(w, "Failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}

	entries := make([]LeaderboardEntry, len(top))
	for i, e := range top {
		entries[i] = LeaderboardEntry{
			Rank:      i + 1,
			Username:  e.Username,
			Score:     e.Score,
			Wins:      e.Wins,
			UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// HandleGetPersonalBest returns the caller's best score on a level
func (h *LeaderboardHandler) HandleGetPersonalBest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := auth.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	level, err := queryLevel(r)
	if err != nil {
		http.Error(w, "Invalid level", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	best, err := h.scores.BestScore(ctx, claims.PlayerID, level)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "No score yet", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch score", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(best)
}

// queryLevel reads ?level=, defaulting to the first level
func queryLevel(r *http.Request) (int, error) {
	levelStr := strings.TrimSpace(r.URL.Query().Get("level"))
	if levelStr == "" {
		return 1, nil
	}
	level, err := strconv.Atoi(levelStr)
	if err != nil {
		return 0, err
	}
	if _, err := config.AppConfig.Level(level); err != nil {
		return 0, err
	}
	return level, nil
}
