package world

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/types"
)

func testLevel(required int) config.LevelConfig {
	return config.LevelConfig{
		Name:                "Test",
		RitualItemsRequired: required,
		EnemyCount:          5,
		WardenSpeedModifier: 1.0,
	}
}

func newTestWorld(required int) *World {
	return New(testLevel(required), WithRand(rand.New(rand.NewSource(42))))
}

func squareAround(cx, cy int) []types.ChunkCoord {
	var coords []types.ChunkCoord
	for x := cx - config.ViewDistance; x <= cx+config.ViewDistance; x++ {
		for y := cy - config.ViewDistance; y <= cy+config.ViewDistance; y++ {
			coords = append(coords, types.ChunkCoord{X: x, Y: y})
		}
	}
	return coords
}

func clearEnemies(w *World) {
	for _, chunk := range w.chunks {
		chunk.Enemies = nil
	}
}

func countExitDoors(w *World) int {
	n := 0
	for _, chunk := range w.chunks {
		for _, portal := range chunk.Portals {
			if portal.IsExit {
				n++
			}
		}
	}
	return n
}

func TestNewWorldHasOriginChunk(t *testing.T) {
	w := newTestWorld(10)
	assert.Equal(t, 1, w.ChunkCount())
	_, ok := w.Chunk(types.ChunkCoord{})
	assert.True(t, ok)
	assert.Equal(t, 1.0, w.Difficulty())
	assert.True(t, w.InGracePeriod())
}

func TestGetOrCreateChunkIsIdempotent(t *testing.T) {
	w := newTestWorld(10)

	first := w.GetOrCreateChunk(3, -4, false)
	count := w.ChunkCount()
	second := w.GetOrCreateChunk(3, -4, true)

	assert.Same(t, first, second)
	assert.Equal(t, count, w.ChunkCount())
	assert.False(t, second.HasExitDoor())
}

func TestUpdateActiveChunksSquare(t *testing.T) {
	w := newTestWorld(10)

	require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: 500, Y: 500}))
	assert.ElementsMatch(t, squareAround(0, 0), w.ActiveCoords())
	assert.Equal(t, 25, w.ChunkCount())

	// One chunk east: the square shifts to x in [-1, 3] and nothing is evicted.
	require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: 1500, Y: 500}))
	assert.ElementsMatch(t, squareAround(1, 0), w.ActiveCoords())
	assert.Equal(t, 30, w.ChunkCount())
	_, ok := w.Chunk(types.ChunkCoord{X: -2, Y: 0})
	assert.True(t, ok)
}

func TestUpdateActiveChunksNegativePositions(t *testing.T) {
	w := newTestWorld(10)
	require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: -0.5, Y: -1000}))
	assert.Equal(t, types.ChunkCoord{X: -1, Y: -1}, w.PlayerChunk())
	assert.ElementsMatch(t, squareAround(-1, -1), w.ActiveCoords())
}

func TestUpdateRejectsNonFinitePositions(t *testing.T) {
	w := newTestWorld(10)

	err := w.UpdateActiveChunks(types.Vector2{X: math.NaN(), Y: 0})
	assert.ErrorIs(t, err, ErrInvalidPosition)
	assert.Empty(t, w.ActiveChunks())

	err = w.UpdateEnemies(types.Vector2{X: 0, Y: math.Inf(1)}, false)
	assert.ErrorIs(t, err, ErrInvalidPosition)
	assert.Equal(t, int64(0), w.Ticks())
}

func TestUpdateRejectsOutOfRangePositions(t *testing.T) {
	w := newTestWorld(0)

	err := w.UpdateActiveChunks(types.Vector2{X: 1e30, Y: 500})
	assert.ErrorIs(t, err, ErrInvalidPosition)
	assert.Empty(t, w.ActiveChunks())
	assert.False(t, w.ExitDoorCreated())

	err = w.UpdateEnemies(types.Vector2{X: 500, Y: -1e30}, false)
	assert.ErrorIs(t, err, ErrInvalidPosition)
	assert.Equal(t, int64(0), w.Ticks())

	// Far but representable positions still work.
	require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: 1e9, Y: -1e9}))
	assert.Equal(t, types.ChunkCoord{X: 1000000, Y: -1000000}, w.PlayerChunk())
	assert.Len(t, w.ActiveChunks(), 25)
}

func TestExitDoorCreatedOnceNextToPlayer(t *testing.T) {
	w := newTestWorld(4)
	require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: 500, Y: 500}))
	assert.False(t, w.ExitDoorCreated())

	w.ritualItemsCollected = 2
	require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: 500, Y: 500}))
	require.True(t, w.ExitDoorCreated())

	door, ok := w.ExitDoor()
	require.True(t, ok)
	doorChunk := types.ChunkCoordFromPosition(door.Bounds.Center())
	assert.True(t, types.ChunkCoord{}.IsAdjacent(doorChunk))
	assert.Equal(t, 1, countExitDoors(w))

	// Walking far away and collecting more never adds a second door.
	w.ritualItemsCollected = 3
	for _, x := range []float64{4500, 9500, -7500} {
		require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: x, Y: 500}))
	}
	assert.Equal(t, 1, countExitDoors(w))
	again, _ := w.ExitDoor()
	assert.Equal(t, door.ID, again.ID)
}

func TestExitDoorRequiresAllItems(t *testing.T) {
	w := newTestWorld(4)
	w.ritualItemsCollected = 2
	require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: 500, Y: 500}))

	door, ok := w.ExitDoor()
	require.True(t, ok)
	player := types.RectCenteredAt(door.Bounds.Center(), config.PlayerSize, config.PlayerSize)

	assert.Equal(t, PortalNone, w.CheckPortalCollision(player).Outcome)

	w.ritualItemsCollected = 4
	result := w.CheckPortalCollision(player)
	assert.Equal(t, PortalExit, result.Outcome)
	assert.Equal(t, door.ID, result.PortalID)
}

func TestExitDoorWithZeroRequirement(t *testing.T) {
	w := newTestWorld(0)
	require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: 500, Y: 500}))
	assert.True(t, w.ExitDoorCreated())
	assert.True(t, w.ExitUnlocked())
}

func TestTeleportPortalCollision(t *testing.T) {
	w := newTestWorld(10)
	require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: 500, Y: 500}))

	origin, _ := w.Chunk(types.ChunkCoord{})
	origin.Portals = []types.Portal{{
		ID:          "tp",
		Bounds:      types.Rect{X: 400, Y: 400, Width: config.PortalSize, Height: config.PortalSize},
		Destination: types.ChunkOffset{DX: 3, DY: -2},
		Active:      true,
	}}

	result := w.CheckPortalCollision(types.Rect{X: 420, Y: 420, Width: 32, Height: 32})
	assert.Equal(t, PortalTeleport, result.Outcome)
	assert.Equal(t, types.ChunkOffset{DX: 3, DY: -2}, result.Destination)

	origin.Portals[0].Active = false
	assert.Equal(t, PortalNone, w.CheckPortalCollision(types.Rect{X: 420, Y: 420, Width: 32, Height: 32}).Outcome)
}

func TestCollectableCollectedOnce(t *testing.T) {
	w := newTestWorld(10)
	require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: 500, Y: 500}))

	origin, _ := w.Chunk(types.ChunkCoord{})
	origin.Collectables = []types.Collectable{{
		ScreenObject: types.ScreenObject{ID: "item", Position: types.Vector2{X: 400, Y: 400}},
		Kind:         types.CollectableRitual,
	}}
	player := types.Rect{X: 410, Y: 410, Width: 32, Height: 32}

	kind, ok := w.CheckCollectableCollision(player)
	assert.True(t, ok)
	assert.Equal(t, types.CollectableRitual, kind)
	assert.Equal(t, 1, w.RitualItemsCollected())
	assert.True(t, origin.Collectables[0].Collected)

	_, ok = w.CheckCollectableCollision(player)
	assert.False(t, ok)
	assert.Equal(t, 1, w.RitualItemsCollected())
}

func TestDifficultyScalesWithItems(t *testing.T) {
	tests := []struct {
		items int
		want  float64
	}{
		{0, 1.0},
		{10, 1.5},
		{40, 3.0},
		{100, 3.0},
	}

	for _, tt := range tests {
		w := newTestWorld(200)
		w.ritualItemsCollected = tt.items
		require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: 500, Y: 500}))
		assert.Equal(t, tt.want, w.Difficulty(), "items=%d", tt.items)
	}
}

func TestGracePeriod(t *testing.T) {
	w := newTestWorld(10)
	player := types.Vector2{X: 500, Y: 500}
	require.NoError(t, w.UpdateActiveChunks(player))
	clearEnemies(w)

	origin, _ := w.Chunk(types.ChunkCoord{})
	origin.Enemies = []types.Enemy{types.NewEnemy("w", types.ArchetypeWarden, player, config.DefaultWardenSpeed)}
	playerRect := types.RectAt(player, config.PlayerSize, config.PlayerSize)

	for i := 0; i < 180; i++ {
		require.True(t, w.InGracePeriod(), "tick %d", i)
		_, hit := w.CheckEnemyCollision(playerRect)
		require.False(t, hit)
		require.NoError(t, w.UpdateEnemies(player, true))
	}

	assert.False(t, w.InGracePeriod())
	assert.Equal(t, types.EnemyStateIdle, origin.Enemies[0].State, "no behavior during grace")

	archetype, hit := w.CheckEnemyCollision(playerRect)
	assert.True(t, hit)
	assert.Equal(t, types.ArchetypeWarden, archetype)
}

func TestTurretFireEvents(t *testing.T) {
	w := newTestWorld(10)
	player := types.Vector2{X: 500, Y: 500}
	require.NoError(t, w.UpdateActiveChunks(player))
	clearEnemies(w)
	w.ticks = 180

	origin, _ := w.Chunk(types.ChunkCoord{})
	turret := types.NewEnemy("turret", types.ArchetypeTurret, types.Vector2{X: 400, Y: 500}, 0)
	origin.Enemies = []types.Enemy{turret}

	for i := 0; i < 2*config.TurretFireCooldown+1; i++ {
		require.NoError(t, w.UpdateEnemies(player, false))
	}

	events := w.DrainFireEvents()
	require.Len(t, events, 3)
	assert.Equal(t, "turret", events[0].EnemyID)
	assert.Equal(t, turret.MuzzlePoint(), events[0].Origin)
	assert.Equal(t, player, events[0].Target)
	assert.Equal(t, int64(180), events[0].Tick)
	assert.Equal(t, int64(180+config.TurretFireCooldown), events[1].Tick)
	assert.Empty(t, w.DrainFireEvents())
}

func TestMemoryFragmentsPlacedInOrder(t *testing.T) {
	w := newTestWorld(10)
	for x := -15; x <= 15; x++ {
		for y := -15; y <= 15; y++ {
			w.GetOrCreateChunk(x, y, false)
		}
	}

	origin, _ := w.Chunk(types.ChunkCoord{})
	assert.Empty(t, origin.MemoryFragments)

	var kinds []types.MemoryKind
	for _, chunk := range w.chunks {
		for _, fragment := range chunk.MemoryFragments {
			kinds = append(kinds, fragment.Kind)
		}
	}
	assert.ElementsMatch(t, types.MemoryKinds, kinds)
}

func TestCheckMemoryCollision(t *testing.T) {
	w := newTestWorld(10)
	require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: 500, Y: 500}))
	for _, chunk := range w.chunks {
		chunk.MemoryFragments = nil
	}

	origin, _ := w.Chunk(types.ChunkCoord{})
	origin.MemoryFragments = []types.MemoryFragment{{
		ScreenObject: types.ScreenObject{ID: "m", Position: types.Vector2{X: 300, Y: 300}},
		Kind:         types.MemoryFire,
	}}
	player := types.Rect{X: 290, Y: 290, Width: 32, Height: 32}

	fragment, ok := w.CheckMemoryCollision(player)
	require.True(t, ok)
	assert.Equal(t, types.MemoryFire, fragment.Kind)

	_, ok = w.CheckMemoryCollision(player)
	assert.False(t, ok)
}

func TestExportRestore(t *testing.T) {
	w := newTestWorld(4)
	w.ritualItemsCollected = 2
	require.NoError(t, w.UpdateActiveChunks(types.Vector2{X: 500, Y: 500}))
	w.ticks = 500

	state := w.Export()
	assert.Len(t, state.Chunks, w.ChunkCount())

	restored, err := Restore(state, WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	assert.Equal(t, w.ChunkCount(), restored.ChunkCount())
	assert.Equal(t, 2, restored.RitualItemsCollected())
	assert.Equal(t, int64(500), restored.Ticks())
	assert.True(t, restored.ExitDoorCreated())
	assert.Equal(t, state, restored.Export())

	door, _ := w.ExitDoor()
	restoredDoor, ok := restored.ExitDoor()
	require.True(t, ok)
	assert.Equal(t, door, restoredDoor)

	// Restored chunks are not regenerated.
	before, _ := w.Chunk(types.ChunkCoord{X: 1, Y: 1})
	after := restored.GetOrCreateChunk(1, 1, false)
	assert.Equal(t, before.Collectables, after.Collectables)
}

func TestRestoreRejectsMissingExitDoor(t *testing.T) {
	state := newTestWorld(10).Export()
	state.ExitDoorCreated = true
	state.ExitDoorChunk = types.ChunkCoord{X: 1, Y: 0}

	_, err := Restore(state)
	assert.Error(t, err)
}
