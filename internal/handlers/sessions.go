package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/besuhoff/dark-ritual-go/internal/auth"
	"github.com/besuhoff/dark-ritual-go/internal/db"
	"github.com/besuhoff/dark-ritual-go/internal/logger"
)

type sessionStore interface {
	FindByHost(ctx context.Context, hostID string) ([]db.GameSession, error)
	Delete(ctx context.Context, id primitive.ObjectID, hostID string) (bool, error)
}

// SessionHandler handles saved-game HTTP requests
type SessionHandler struct {
	sessionRepo sessionStore
}

// NewSessionHandler creates a new session handler. A nil repository means
// saves are disabled and every request gets 503.
func NewSessionHandler(repo *db.GameSessionRepository) *SessionHandler {
	h := &SessionHandler{}
	if repo != nil {
		h.sessionRepo = repo
	}
	return h
}

// SessionResponse is the summary of a saved game
type SessionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Level       int    `json:"level"`
	Phase       string `json:"phase"`
	Score       int    `json:"score"`
	Health      int    `json:"health"`
	ItemsFound  int    `json:"items_found"`
	GameVersion string `json:"game_version"`
	CreatedAt   string `json:"created_at"`
	LastUpdated string `json:"last_updated"`
}

// HandleSessions routes /api/v1/sessions and /api/v1/sessions/{id}
func (h *SessionHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	if h.sessionRepo == nil {
		http.Error(w, "Saved games are unavailable", http.StatusServiceUnavailable)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/sessions"), "/")
	switch {
	case id == "" && r.Method == http.MethodGet:
		h.handleListSessions(w, r)
	case id != "" && r.Method == http.MethodDelete:
		h.handleDeleteSession(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SessionHandler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessions, err := h.sessionRepo.FindByHost(ctx, claims.PlayerID)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch sessions")
		http.Error(w, "Failed to fetch sessions", http.StatusInternalServerError)
		return
	}

	responses := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		responses = append(responses, sessionToResponse(&sessions[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

func (h *SessionHandler) handleDeleteSession(w http.ResponseWriter, r *http.Request, idStr string) {
	claims, err := auth.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	deleted, err := h.sessionRepo.Delete(ctx, sessionID, claims.PlayerID)
	if err != nil {
		http.Error(w, "Failed to delete session", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Successfully deleted session"})
}

func sessionToResponse(session *db.GameSession) SessionResponse {
	return SessionResponse{
		ID:          session.ID.Hex(),
		Name:        session.Name,
		Level:       session.Level,
		Phase:       session.Phase,
		Score:       session.Player.Score,
		Health:      session.Player.Health,
		ItemsFound:  session.Progress.RitualItemsCollected,
		GameVersion: session.GameVersion,
		CreatedAt:   session.CreatedAt.Format(time.RFC3339),
		LastUpdated: session.LastUpdated.Format(time.RFC3339),
	}
}
