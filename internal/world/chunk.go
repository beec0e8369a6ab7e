package world

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/types"
)

// Chunk is a fixed-size square of the world and the unit of lazy
// generation. Entities live in per-kind slices and are addressed by index
// while a tick is running.
type Chunk struct {
	Coord           types.ChunkCoord
	Collectables    []types.Collectable
	Enemies         []types.Enemy
	Portals         []types.Portal
	MemoryFragments []types.MemoryFragment
	Generated       bool
}

func NewChunk(x, y int) *Chunk {
	return &Chunk{Coord: types.ChunkCoord{X: x, Y: y}}
}

// WorldPosition is the top-left corner of the chunk in world units.
func (c *Chunk) WorldPosition() types.Vector2 {
	return types.Vector2{X: float64(c.Coord.X) * config.ChunkSize, Y: float64(c.Coord.Y) * config.ChunkSize}
}

func (c *Chunk) Center() types.Vector2 {
	return c.WorldPosition().Add(types.Vector2{X: config.ChunkSize / 2, Y: config.ChunkSize / 2})
}

// Generator holds everything chunk generation draws on besides difficulty.
type Generator struct {
	rng         *rand.Rand
	wardenSpeed float64
	maxEnemies  int
	newID       func() string
}

func NewGenerator(rng *rand.Rand, wardenSpeed float64, maxEnemies int) *Generator {
	return &Generator{
		rng:         rng,
		wardenSpeed: wardenSpeed,
		maxEnemies:  maxEnemies,
		newID:       func() string { return uuid.New().String() },
	}
}

// randomPoint picks a uniform integer point inside the chunk, inset by margin.
func (g *Generator) randomPoint(origin types.Vector2, margin int) types.Vector2 {
	span := int(config.ChunkSize) - 2*margin
	return types.Vector2{
		X: origin.X + float64(margin+g.rng.Intn(span+1)),
		Y: origin.Y + float64(margin+g.rng.Intn(span+1)),
	}
}

func (g *Generator) enemyCount(difficulty float64) int {
	n := 1 + int(math.Floor(difficulty))
	if g.maxEnemies > 0 && n > g.maxEnemies {
		n = g.maxEnemies
	}
	return n
}

func (g *Generator) rollArchetype() types.EnemyArchetype {
	if g.rng.Float64() < config.TurretChance {
		return types.ArchetypeTurret
	}
	return types.MobileArchetypes[g.rng.Intn(len(types.MobileArchetypes))]
}

// Generate populates the chunk once; later calls are no-ops.
func (c *Chunk) Generate(gen *Generator, difficulty float64, isExitChunk bool) {
	if c.Generated {
		return
	}

	origin := c.WorldPosition()

	numCollectables := config.MinCollectablesPerChunk +
		gen.rng.Intn(config.MaxCollectablesPerChunk-config.MinCollectablesPerChunk+1)
	for i := 0; i < numCollectables; i++ {
		c.Collectables = append(c.Collectables, types.Collectable{
			ScreenObject: types.ScreenObject{
				ID:       gen.newID(),
				Position: gen.randomPoint(origin, config.CollectableEdgeMargin),
			},
			Kind:    types.CollectableRitual,
			Glow:    gen.rng.Intn(config.MaxGlow + 1),
			Variant: gen.rng.Intn(config.CollectableVariants),
		})
	}

	numEnemies := gen.enemyCount(difficulty)
	for i := 0; i < numEnemies; i++ {
		archetype := gen.rollArchetype()
		enemy := types.NewEnemy(gen.newID(), archetype, gen.randomPoint(origin, config.EnemyEdgeMargin), gen.wardenSpeed)
		enemy.PatrolRadius = float64(config.MinPatrolRadius + gen.rng.Intn(config.MaxPatrolRadius-config.MinPatrolRadius+1))
		enemy.PatrolPhase = gen.rng.Float64() * 2 * math.Pi
		enemy.Variant = gen.rng.Intn(config.EnemyVariants)
		c.Enemies = append(c.Enemies, enemy)
	}

	if isExitChunk {
		c.Portals = append(c.Portals, c.newExitDoor(gen))
	} else if gen.rng.Float64() < config.PortalChance {
		pos := gen.randomPoint(origin, config.PortalEdgeMargin)
		c.Portals = append(c.Portals, types.Portal{
			ID:     gen.newID(),
			Bounds: types.RectAt(pos, config.PortalSize, config.PortalSize),
			Destination: types.ChunkOffset{
				DX: gen.rng.Intn(2*config.PortalMaxOffset+1) - config.PortalMaxOffset,
				DY: gen.rng.Intn(2*config.PortalMaxOffset+1) - config.PortalMaxOffset,
			},
			Active: true,
		})
	}

	c.Generated = true
}

func (c *Chunk) newExitDoor(gen *Generator) types.Portal {
	return types.Portal{
		ID:     gen.newID(),
		Bounds: types.RectCenteredAt(c.Center(), config.ExitDoorSize, config.ExitDoorSize),
		IsExit: true,
		Active: true,
	}
}

// PlaceExitDoor turns an already generated chunk into the exit chunk: its
// teleport portal, if any, gives way to the door so the chunk looks exactly
// as if it had been generated as the exit chunk.
func (c *Chunk) PlaceExitDoor(gen *Generator) {
	if c.HasExitDoor() {
		return
	}
	c.Portals = append(c.Portals[:0], c.newExitDoor(gen))
}

func (c *Chunk) HasExitDoor() bool {
	for i := range c.Portals {
		if c.Portals[i].IsExit {
			return true
		}
	}
	return false
}

func (c *Chunk) PlaceMemoryFragment(gen *Generator, kind types.MemoryKind) {
	c.MemoryFragments = append(c.MemoryFragments, types.MemoryFragment{
		ScreenObject: types.ScreenObject{
			ID:       gen.newID(),
			Position: gen.randomPoint(c.WorldPosition(), config.CollectableEdgeMargin),
		},
		Kind: kind,
	})
}

// RemainingCollectables counts items not yet collected.
func (c *Chunk) RemainingCollectables() int {
	n := 0
	for i := range c.Collectables {
		if !c.Collectables[i].Collected {
			n++
		}
	}
	return n
}
