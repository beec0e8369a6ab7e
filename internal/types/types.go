package types

import (
	"fmt"

	"github.com/besuhoff/dark-ritual-go/internal/utils"
)

// ChunkCoord identifies a chunk on the integer chunk grid.
type ChunkCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func ChunkCoordFromPosition(pos Vector2) ChunkCoord {
	x, y := utils.ChunkXYFromPosition(pos.X, pos.Y)
	return ChunkCoord{X: x, Y: y}
}

// Key is the persisted form of the coordinate, "x,y".
func (c ChunkCoord) Key() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

func ParseChunkKey(key string) (ChunkCoord, error) {
	var c ChunkCoord
	if _, err := fmt.Sscanf(key, "%d,%d", &c.X, &c.Y); err != nil {
		return ChunkCoord{}, fmt.Errorf("parsing chunk key %q: %w", key, err)
	}
	return c, nil
}

func (c ChunkCoord) Offset(o ChunkOffset) ChunkCoord {
	return ChunkCoord{X: c.X + o.DX, Y: c.Y + o.DY}
}

// IsAdjacent reports whether o touches c (diagonals included) without being c.
func (c ChunkCoord) IsAdjacent(o ChunkCoord) bool {
	dx, dy := c.X-o.X, c.Y-o.Y
	if dx == 0 && dy == 0 {
		return false
	}
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

// InputPayload for player input
type InputPayload struct {
	Up        bool `json:"up"`
	Down      bool `json:"down"`
	Left      bool `json:"left"`
	Right     bool `json:"right"`
	EmitSound bool `json:"emit_sound"`
	Dismiss   bool `json:"dismiss"`
}

// GamePhase is the session-level state of play.
type GamePhase string

const (
	PhasePlaying  GamePhase = "playing"
	PhaseMemory   GamePhase = "memory"
	PhaseVictory  GamePhase = "victory"
	PhaseGameOver GamePhase = "game_over"
)
