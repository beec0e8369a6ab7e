package world

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/logger"
	"github.com/besuhoff/dark-ritual-go/internal/types"
)

var ErrInvalidPosition = errors.New("invalid world position")

// maxChunkIndex bounds chunk coordinates so the view square never overflows int.
const maxChunkIndex = math.MaxInt32

// PortalOutcome is the result of the player touching portals.
type PortalOutcome uint8

const (
	PortalNone PortalOutcome = iota
	PortalTeleport
	PortalExit
)

type PortalResult struct {
	Outcome     PortalOutcome
	PortalID    string
	Destination types.ChunkOffset
}

// FireEvent tells the caller that a turret fired and a projectile has to be
// spawned from Origin toward Target.
type FireEvent struct {
	EnemyID string
	Origin  types.Vector2
	Target  types.Vector2
	Tick    int64
}

// World owns every chunk of one play session. It is not safe for concurrent
// use; the session engine serializes access.
type World struct {
	level  config.LevelConfig
	gen    *Generator
	chunks map[types.ChunkCoord]*Chunk
	active []*Chunk
	center types.ChunkCoord

	ritualItemsCollected int
	difficulty           float64
	exitDoorCreated      bool
	exitDoorChunk        types.ChunkCoord
	nextMemory           int
	ticks                int64
	fireEvents           []FireEvent

	log *logrus.Entry
}

type Option func(*worldOptions)

type worldOptions struct {
	rng         *rand.Rand
	wardenSpeed float64
}

// WithRand makes generation reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(o *worldOptions) { o.rng = rng }
}

// WithBaseWardenSpeed sets the speed the level modifier is applied to.
func WithBaseWardenSpeed(speed float64) Option {
	return func(o *worldOptions) { o.wardenSpeed = speed }
}

// New creates a world for one level and generates the origin chunk.
func New(level config.LevelConfig, opts ...Option) *World {
	o := worldOptions{wardenSpeed: config.DefaultWardenSpeed}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	modifier := level.WardenSpeedModifier
	if modifier == 0 {
		modifier = 1
	}

	w := &World{
		level:      level,
		gen:        NewGenerator(o.rng, o.wardenSpeed*modifier, level.EnemyCount),
		chunks:     make(map[types.ChunkCoord]*Chunk),
		difficulty: 1.0,
		log:        logger.Log.WithField("component", "world"),
	}
	w.GetOrCreateChunk(0, 0, false)
	return w
}

// GetOrCreateChunk returns the chunk at (cx, cy), generating it on first use.
// isExit only matters for a chunk that does not exist yet.
func (w *World) GetOrCreateChunk(cx, cy int, isExit bool) *Chunk {
	coord := types.ChunkCoord{X: cx, Y: cy}
	if chunk, exists := w.chunks[coord]; exists {
		return chunk
	}

	chunk := NewChunk(cx, cy)
	chunk.Generate(w.gen, w.difficulty, isExit)
	w.maybePlaceMemory(chunk)
	w.chunks[coord] = chunk

	w.log.WithFields(logrus.Fields{
		"chunk":        coord.Key(),
		"collectables": len(chunk.Collectables),
		"enemies":      len(chunk.Enemies),
		"portals":      len(chunk.Portals),
		"exit":         isExit,
	}).Debug("Generated chunk")

	return chunk
}

func (w *World) maybePlaceMemory(chunk *Chunk) {
	if chunk.Coord == (types.ChunkCoord{}) || w.nextMemory >= len(types.MemoryKinds) {
		return
	}
	if w.gen.rng.Float64() >= config.MemoryFragmentChance {
		return
	}
	chunk.PlaceMemoryFragment(w.gen, types.MemoryKinds[w.nextMemory])
	w.nextMemory++
}

func validPosition(pos types.Vector2) error {
	if !pos.IsFinite() ||
		math.Abs(pos.X/config.ChunkSize) > maxChunkIndex ||
		math.Abs(pos.Y/config.ChunkSize) > maxChunkIndex {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidPosition, pos.X, pos.Y)
	}
	return nil
}

// UpdateActiveChunks rebuilds the active set as the square of chunks within
// view distance of the player's chunk, creating missing ones, and places the
// exit door once enough ritual items have been collected.
func (w *World) UpdateActiveChunks(playerPos types.Vector2) error {
	if err := validPosition(playerPos); err != nil {
		return err
	}

	pc := types.ChunkCoordFromPosition(playerPos)
	w.center = pc

	if w.exitDoorDue() {
		w.placeExitDoor(pc)
	}

	side := 2*config.ViewDistance + 1
	active := make([]*Chunk, 0, side*side)
	for x := pc.X - config.ViewDistance; x <= pc.X+config.ViewDistance; x++ {
		for y := pc.Y - config.ViewDistance; y <= pc.Y+config.ViewDistance; y++ {
			active = append(active, w.GetOrCreateChunk(x, y, false))
		}
	}
	w.active = active

	w.difficulty = math.Min(config.MaxDifficulty, 1.0+float64(w.ritualItemsCollected)/config.DifficultyItemsPerStep)
	return nil
}

func (w *World) exitDoorDue() bool {
	return !w.exitDoorCreated && w.ritualItemsCollected >= w.level.RitualItemsRequired/2
}

// placeExitDoor picks one of the eight chunks around the player's chunk.
// A chunk generated right here gets the door at generation time; an existing
// one is converted in place.
func (w *World) placeExitDoor(playerChunk types.ChunkCoord) {
	var neighbors []types.ChunkCoord
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			c := types.ChunkCoord{X: playerChunk.X + dx, Y: playerChunk.Y + dy}
			if playerChunk.IsAdjacent(c) {
				neighbors = append(neighbors, c)
			}
		}
	}
	target := neighbors[w.gen.rng.Intn(len(neighbors))]

	chunk := w.GetOrCreateChunk(target.X, target.Y, true)
	chunk.PlaceExitDoor(w.gen)

	w.exitDoorCreated = true
	w.exitDoorChunk = target

	w.log.WithFields(logrus.Fields{
		"chunk":    target.Key(),
		"items":    w.ritualItemsCollected,
		"required": w.level.RitualItemsRequired,
	}).Debug("Placed exit door")
}

// CheckCollectableCollision collects at most one uncollected item that
// overlaps player. Which one wins when several overlap is unspecified.
func (w *World) CheckCollectableCollision(player types.Rect) (types.CollectableKind, bool) {
	for _, chunk := range w.active {
		for i := range chunk.Collectables {
			item := &chunk.Collectables[i]
			if item.Collected || !item.Rect().Intersects(player) {
				continue
			}
			item.Collected = true
			if item.Kind == types.CollectableRitual {
				w.ritualItemsCollected++
			}
			return item.Kind, true
		}
	}
	return "", false
}

// CheckPortalCollision reports an exit when the door is touched with enough
// ritual items, or the destination of a touched teleport portal. A locked
// exit door behaves as if it were not there.
func (w *World) CheckPortalCollision(player types.Rect) PortalResult {
	for _, chunk := range w.active {
		for i := range chunk.Portals {
			portal := &chunk.Portals[i]
			if !portal.Active || !portal.Bounds.Intersects(player) {
				continue
			}
			if portal.IsExit {
				if w.ExitUnlocked() {
					return PortalResult{Outcome: PortalExit, PortalID: portal.ID}
				}
				continue
			}
			return PortalResult{Outcome: PortalTeleport, PortalID: portal.ID, Destination: portal.Destination}
		}
	}
	return PortalResult{Outcome: PortalNone}
}

// CheckEnemyCollision returns the archetype of an enemy touching player.
// Nothing can hurt the player during the grace period.
func (w *World) CheckEnemyCollision(player types.Rect) (types.EnemyArchetype, bool) {
	if w.InGracePeriod() {
		return types.ArchetypeUnknown, false
	}
	for _, chunk := range w.active {
		for i := range chunk.Enemies {
			if chunk.Enemies[i].Hitbox().Intersects(player) {
				return chunk.Enemies[i].Archetype, true
			}
		}
	}
	return types.ArchetypeUnknown, false
}

// CheckMemoryCollision triggers at most one memory fragment touching player.
func (w *World) CheckMemoryCollision(player types.Rect) (types.MemoryFragment, bool) {
	for _, chunk := range w.active {
		for i := range chunk.MemoryFragments {
			fragment := &chunk.MemoryFragments[i]
			if fragment.Triggered || !fragment.Rect().Intersects(player) {
				continue
			}
			fragment.Triggered = true
			return *fragment, true
		}
	}
	return types.MemoryFragment{}, false
}

// UpdateEnemies advances the world clock by one tick and, once the grace
// period is over, every enemy in the active chunks.
func (w *World) UpdateEnemies(playerPos types.Vector2, soundEmitted bool) error {
	if err := validPosition(playerPos); err != nil {
		return err
	}
	defer func() { w.ticks++ }()

	if w.InGracePeriod() {
		return nil
	}

	in := tickInput{
		playerPos:    playerPos,
		soundEmitted: soundEmitted,
		elapsedMs:    float64(w.Elapsed().Milliseconds()),
	}
	for _, chunk := range w.active {
		for i := range chunk.Enemies {
			enemy := &chunk.Enemies[i]
			behavior, ok := behaviorByArchetype[enemy.Archetype]
			if !ok {
				continue
			}
			if behavior(enemy, in) {
				w.fireEvents = append(w.fireEvents, FireEvent{
					EnemyID: enemy.ID,
					Origin:  enemy.MuzzlePoint(),
					Target:  enemy.Target,
					Tick:    w.ticks,
				})
			}
		}
	}
	return nil
}

// DrainFireEvents hands over the turret shots since the last call.
func (w *World) DrainFireEvents() []FireEvent {
	events := w.fireEvents
	w.fireEvents = nil
	return events
}

// Elapsed is the simulated time since the world was created.
func (w *World) Elapsed() time.Duration {
	return time.Duration(w.ticks) * time.Second / config.TickRate
}

func (w *World) Ticks() int64 {
	return w.ticks
}

func (w *World) InGracePeriod() bool {
	return w.Elapsed() < config.GracePeriod
}

// ActiveChunks returns the chunks simulated this tick, in iteration order.
func (w *World) ActiveChunks() []*Chunk {
	return w.active
}

func (w *World) ActiveCoords() []types.ChunkCoord {
	coords := make([]types.ChunkCoord, len(w.active))
	for i, chunk := range w.active {
		coords[i] = chunk.Coord
	}
	return coords
}

func (w *World) Chunk(coord types.ChunkCoord) (*Chunk, bool) {
	chunk, ok := w.chunks[coord]
	return chunk, ok
}

func (w *World) ChunkCount() int {
	return len(w.chunks)
}

func (w *World) PlayerChunk() types.ChunkCoord {
	return w.center
}

func (w *World) Level() config.LevelConfig {
	return w.level
}

func (w *World) RitualItemsCollected() int {
	return w.ritualItemsCollected
}

func (w *World) RitualItemsRequired() int {
	return w.level.RitualItemsRequired
}

func (w *World) Difficulty() float64 {
	return w.difficulty
}

func (w *World) ExitDoorCreated() bool {
	return w.exitDoorCreated
}

func (w *World) ExitUnlocked() bool {
	return w.ritualItemsCollected >= w.level.RitualItemsRequired
}

// ExitDoor returns the exit portal once it exists.
func (w *World) ExitDoor() (types.Portal, bool) {
	if !w.exitDoorCreated {
		return types.Portal{}, false
	}
	chunk, ok := w.chunks[w.exitDoorChunk]
	if !ok {
		return types.Portal{}, false
	}
	for _, portal := range chunk.Portals {
		if portal.IsExit {
			return portal, true
		}
	}
	return types.Portal{}, false
}
