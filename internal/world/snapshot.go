package world

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/types"
)

// State is a detached copy of everything needed to resume a world.
type State struct {
	Level                config.LevelConfig
	Chunks               []Chunk
	RitualItemsCollected int
	Difficulty           float64
	ExitDoorCreated      bool
	ExitDoorChunk        types.ChunkCoord
	NextMemory           int
	Ticks                int64
}

func copyChunk(c *Chunk) Chunk {
	return Chunk{
		Coord:           c.Coord,
		Collectables:    append([]types.Collectable(nil), c.Collectables...),
		Enemies:         append([]types.Enemy(nil), c.Enemies...),
		Portals:         append([]types.Portal(nil), c.Portals...),
		MemoryFragments: append([]types.MemoryFragment(nil), c.MemoryFragments...),
		Generated:       c.Generated,
	}
}

// Export copies the world. Chunks come out sorted by coordinate so repeated
// exports of the same world are identical.
func (w *World) Export() State {
	chunks := make([]Chunk, 0, len(w.chunks))
	for _, c := range w.chunks {
		chunks = append(chunks, copyChunk(c))
	}
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].Coord.X != chunks[j].Coord.X {
			return chunks[i].Coord.X < chunks[j].Coord.X
		}
		return chunks[i].Coord.Y < chunks[j].Coord.Y
	})

	return State{
		Level:                w.level,
		Chunks:               chunks,
		RitualItemsCollected: w.ritualItemsCollected,
		Difficulty:           w.difficulty,
		ExitDoorCreated:      w.exitDoorCreated,
		ExitDoorChunk:        w.exitDoorChunk,
		NextMemory:           w.nextMemory,
		Ticks:                w.ticks,
	}
}

// Restore rebuilds a world from an exported state. The active set is empty
// until the next UpdateActiveChunks.
func Restore(state State, opts ...Option) (*World, error) {
	if state.RitualItemsCollected < 0 || state.Ticks < 0 {
		return nil, fmt.Errorf("restoring world: negative counters")
	}
	if state.ExitDoorCreated {
		found := false
		for i := range state.Chunks {
			if state.Chunks[i].Coord == state.ExitDoorChunk && state.Chunks[i].HasExitDoor() {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("restoring world: exit door missing from chunk %s", state.ExitDoorChunk.Key())
		}
	}

	o := worldOptions{wardenSpeed: config.DefaultWardenSpeed}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	w := New(state.Level, WithRand(o.rng), WithBaseWardenSpeed(o.wardenSpeed))

	w.chunks = make(map[types.ChunkCoord]*Chunk, len(state.Chunks))
	for i := range state.Chunks {
		c := copyChunk(&state.Chunks[i])
		c.Generated = true
		w.chunks[c.Coord] = &c
	}
	if _, ok := w.chunks[types.ChunkCoord{}]; !ok {
		w.GetOrCreateChunk(0, 0, false)
	}

	w.ritualItemsCollected = state.RitualItemsCollected
	w.difficulty = state.Difficulty
	if w.difficulty < 1 {
		w.difficulty = 1
	}
	w.exitDoorCreated = state.ExitDoorCreated
	w.exitDoorChunk = state.ExitDoorChunk
	w.nextMemory = state.NextMemory
	w.ticks = state.Ticks
	return w, nil
}
