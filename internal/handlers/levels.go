package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/besuhoff/dark-ritual-go/internal/config"
)

type LevelResponse struct {
	Number              int     `json:"number"`
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	RitualItemsRequired int     `json:"ritual_items_required"`
	EnemyCount          int     `json:"enemy_count"`
	WardenSpeedModifier float64 `json:"warden_speed_modifier"`
}

// HandleGetLevels lists the configured levels
func HandleGetLevels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	levels := make([]LevelResponse, len(config.AppConfig.Levels))
	for i, l := range config.AppConfig.Levels {
		levels[i] = LevelResponse{
			Number:              i + 1,
			Name:                l.Name,
			Description:         l.Description,
			RitualItemsRequired: l.RitualItemsRequired,
			EnemyCount:          l.EnemyCount,
			WardenSpeedModifier: l.WardenSpeedModifier,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(levels)
}
