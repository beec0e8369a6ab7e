package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/besuhoff/dark-ritual-go/internal/db"
	"github.com/besuhoff/dark-ritual-go/internal/logger"
)

const maxUsernameLength = 32

// GuestAuthHandler issues tokens to players who only pick a name
type GuestAuthHandler struct {
	userRepo *db.UserRepository // nil without MongoDB
}

// NewGuestAuthHandler creates a new guest auth handler
func NewGuestAuthHandler(userRepo *db.UserRepository) *GuestAuthHandler {
	return &GuestAuthHandler{userRepo: userRepo}
}

type GuestLoginRequest struct {
	Username string `json:"username"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
}

// HandleGuestLogin creates a guest player and returns their token
func (h *GuestAuthHandler) HandleGuestLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req GuestLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || len(username) > maxUsernameLength {
		http.Error(w, "Username must be between 1 and 32 characters", http.StatusBadRequest)
		return
	}

	playerID := uuid.New().String()

	if h.userRepo != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.userRepo.Create(ctx, &db.User{PlayerID: playerID, Username: username}); err != nil {
			logger.Log.WithError(err).Error("Failed to create guest user")
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}
	}

	token, err := GenerateToken(playerID, username)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		PlayerID:    playerID,
		Username:    username,
	})
}
