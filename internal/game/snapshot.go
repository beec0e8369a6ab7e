package game

import (
	"math"
	"sort"

	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/types"
)

// ChunkView is what the client draws of one active chunk. Collected items
// and triggered memories are left out.
type ChunkView struct {
	Coord           types.ChunkCoord
	Collectables    []types.Collectable
	Enemies         []types.Enemy
	Portals         []types.Portal
	MemoryFragments []types.MemoryFragment
}

// ExitIndicator points from the player to the exit door.
type ExitIndicator struct {
	Position  types.Vector2
	Direction float64 // radians, screen coordinates
	Distance  float64
	Unlocked  bool
}

// Snapshot is the render state of a session after a tick.
type Snapshot struct {
	Tick                 int64
	Phase                types.GamePhase
	Level                int
	LevelName            string
	Player               types.Player
	Chunks               []ChunkView
	Projectiles          []types.Projectile
	RitualItemsCollected int
	RitualItemsRequired  int
	Difficulty           float64
	GracePeriod          bool
	Exit                 *ExitIndicator
	Memory               string
}

// Snapshot copies the render state
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := Snapshot{
		Tick:                 e.tick,
		Phase:                e.phase,
		Level:                e.levelNumber,
		LevelName:            e.level.Name,
		Player:               *e.player,
		RitualItemsCollected: e.world.RitualItemsCollected(),
		RitualItemsRequired:  e.world.RitualItemsRequired(),
		Difficulty:           e.world.Difficulty(),
		GracePeriod:          e.world.InGracePeriod(),
	}

	for _, chunk := range e.world.ActiveChunks() {
		view := ChunkView{
			Coord:   chunk.Coord,
			Enemies: append([]types.Enemy(nil), chunk.Enemies...),
			Portals: append([]types.Portal(nil), chunk.Portals...),
		}
		for _, item := range chunk.Collectables {
			if !item.Collected {
				view.Collectables = append(view.Collectables, item)
			}
		}
		for _, fragment := range chunk.MemoryFragments {
			if !fragment.Triggered {
				view.MemoryFragments = append(view.MemoryFragments, fragment)
			}
		}
		snap.Chunks = append(snap.Chunks, view)
	}

	for _, projectile := range e.projectiles {
		snap.Projectiles = append(snap.Projectiles, *projectile)
	}
	sort.Slice(snap.Projectiles, func(i, j int) bool {
		return snap.Projectiles[i].ID < snap.Projectiles[j].ID
	})

	if door, ok := e.world.ExitDoor(); ok {
		from := e.player.Position.Add(types.Vector2{X: config.PlayerSize / 2, Y: config.PlayerSize / 2})
		to := door.Bounds.Center()
		delta := to.Sub(from)
		snap.Exit = &ExitIndicator{
			Position:  to,
			Direction: math.Atan2(delta.Y, delta.X),
			Distance:  delta.Length(),
			Unlocked:  e.world.ExitUnlocked(),
		}
	}

	if e.memory != nil {
		snap.Memory = e.memory.Text()
	}

	return snap
}
