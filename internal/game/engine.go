package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/logger"
	"github.com/besuhoff/dark-ritual-go/internal/types"
	"github.com/besuhoff/dark-ritual-go/internal/world"
)

// Engine runs one player's play session: the world, the explorer and the
// turret projectiles in flight.
type Engine struct {
	mu          sync.RWMutex
	levelNumber int
	level       config.LevelConfig
	world       *world.World
	player      *types.Player
	projectiles map[string]*types.Projectile
	phase       types.GamePhase
	memory      *types.MemoryFragment
	memoryTimer int
	tick        int64
	events      []types.GameEvent

	rng         *rand.Rand
	wardenSpeed float64
	log         *logrus.Entry
}

type Option func(*Engine)

// WithRand seeds world generation.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithBaseWardenSpeed overrides the warden speed before the level modifier.
func WithBaseWardenSpeed(speed float64) Option {
	return func(e *Engine) { e.wardenSpeed = config.ClampWardenSpeed(speed) }
}

// NewEngine creates a game engine with a fresh world for levelNumber
func NewEngine(playerID, username string, levelNumber int, level config.LevelConfig, opts ...Option) *Engine {
	e := &Engine{
		projectiles: make(map[string]*types.Projectile),
		wardenSpeed: config.DefaultWardenSpeed,
		log:         logger.Log.WithField("player", playerID),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e.player = types.NewPlayer(playerID, username, spawnPoint())
	e.startLevel(levelNumber, level)
	return e
}

// spawnPoint puts the player in the middle of the origin chunk.
func spawnPoint() types.Vector2 {
	return types.Vector2{
		X: config.ChunkSize/2 - config.PlayerSize/2,
		Y: config.ChunkSize/2 - config.PlayerSize/2,
	}
}

func (e *Engine) newWorld(level config.LevelConfig) *world.World {
	return world.New(level, world.WithRand(e.rng), world.WithBaseWardenSpeed(e.wardenSpeed))
}

func (e *Engine) startLevel(levelNumber int, level config.LevelConfig) {
	e.levelNumber = levelNumber
	e.level = level
	e.world = e.newWorld(level)
	e.projectiles = make(map[string]*types.Projectile)
	e.phase = types.PhasePlaying
	e.memory = nil
	e.memoryTimer = 0
	e.player.Respawn(spawnPoint())

	e.log.WithFields(logrus.Fields{
		"level":    levelNumber,
		"name":     level.Name,
		"required": level.RitualItemsRequired,
	}).Info("Level started")
}

// StartLevel moves on to another level keeping the score
func (e *Engine) StartLevel(levelNumber int, level config.LevelConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLevel(levelNumber, level)
}

// Restart replays the current level from scratch with a zero score
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.player.Score = 0
	e.startLevel(e.levelNumber, e.level)
}

func (e *Engine) emit(eventType types.EventType, entityID, detail string, amount int, pos *types.Vector2) {
	e.events = append(e.events, types.GameEvent{
		Type:     eventType,
		Tick:     e.tick,
		EntityID: entityID,
		Detail:   detail,
		Amount:   amount,
		Position: pos,
	})
}

// Update runs one game tick
func (e *Engine) Update(input types.InputPayload) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tick++

	switch e.phase {
	case types.PhaseMemory:
		e.memoryTimer--
		if input.Dismiss || e.memoryTimer <= 0 {
			e.phase = types.PhasePlaying
			e.memory = nil
		}
		return nil
	case types.PhaseVictory, types.PhaseGameOver:
		return nil
	}

	player := e.player
	prevPos := player.Position
	player.Move(input)

	if err := e.world.UpdateActiveChunks(player.Position); err != nil {
		player.Position = prevPos
		return err
	}

	soundEmitted := input.EmitSound && player.TryEmitSound(e.tick)

	if err := e.world.UpdateEnemies(player.Position, soundEmitted); err != nil {
		return err
	}

	for _, shot := range e.world.DrainFireEvents() {
		projectile := types.NewProjectile(shot.EnemyID, shot.Origin, shot.Target)
		e.projectiles[projectile.ID] = projectile
		origin := shot.Origin
		e.emit(types.EventTurretFired, shot.EnemyID, projectile.ID, 0, &origin)
	}

	e.updateProjectiles()
	e.checkCollectables()

	if e.checkPortals() {
		return nil
	}

	if fragment, ok := e.world.CheckMemoryCollision(player.Rect()); ok {
		e.memory = &fragment
		e.memoryTimer = config.MemoryDisplayTime
		e.phase = types.PhaseMemory
		e.emit(types.EventMemoryTriggered, fragment.ID, fragment.Text(), 0, nil)
	}

	if archetype, hit := e.world.CheckEnemyCollision(player.Rect()); hit {
		e.applyEnemyContact(archetype, prevPos)
	}

	if !player.IsAlive {
		e.phase = types.PhaseGameOver
		e.emit(types.EventPlayerDied, player.ID, "", player.Score, nil)
		e.log.WithFields(logrus.Fields{
			"level": e.levelNumber,
			"score": player.Score,
		}).Info("Player died")
	}

	return nil
}

func (e *Engine) updateProjectiles() {
	playerRect := e.player.Rect()
	for id, projectile := range e.projectiles {
		if !projectile.Update() {
			delete(e.projectiles, id)
			continue
		}
		if !projectile.CheckCollision(playerRect) {
			continue
		}
		e.player.TakeDamage(projectile.Damage)
		pos := projectile.Position
		e.emit(types.EventProjectileHit, id, projectile.OwnerID, projectile.Damage, &pos)
		delete(e.projectiles, id)
	}
}

func (e *Engine) checkCollectables() {
	kind, ok := e.world.CheckCollectableCollision(e.player.Rect())
	if !ok {
		return
	}

	e.player.Score += config.RitualScore
	collected := e.world.RitualItemsCollected()
	e.emit(types.EventItemCollected, "", string(kind), collected, nil)

	if kind == types.CollectableRitual && collected%config.HealEveryNItems == 0 {
		e.player.Heal(config.RitualHealAmount)
		e.emit(types.EventPlayerHealed, e.player.ID, "", config.RitualHealAmount, nil)
	}
}

// checkPortals reports whether the level ended.
func (e *Engine) checkPortals() bool {
	result := e.world.CheckPortalCollision(e.player.Rect())
	switch result.Outcome {
	case world.PortalExit:
		e.player.Score += config.ExitScore
		e.phase = types.PhaseVictory
		e.emit(types.EventExitReached, result.PortalID, e.level.Name, e.player.Score, nil)
		e.log.WithFields(logrus.Fields{
			"level": e.levelNumber,
			"score": e.player.Score,
		}).Info("Level complete")
		return true
	case world.PortalTeleport:
		e.player.Position = e.player.Position.Add(types.Vector2{
			X: float64(result.Destination.DX) * config.ChunkSize,
			Y: float64(result.Destination.DY) * config.ChunkSize,
		})
		pos := e.player.Position
		e.emit(types.EventPortalEntered, result.PortalID, types.ChunkCoordFromPosition(pos).Key(), 0, &pos)
	}
	return false
}

// applyEnemyContact hurts the player and pushes them back diagonally from
// where they stood before this tick's move.
func (e *Engine) applyEnemyContact(archetype types.EnemyArchetype, prevPos types.Vector2) {
	damage := types.ContactDamageByArchetype[archetype]
	if damage == 0 {
		return
	}

	alive := e.player.TakeDamage(damage)
	e.emit(types.EventEnemyHit, "", archetype.String(), damage, nil)
	if !alive {
		return
	}

	if knockback, ok := types.KnockbackByArchetype[archetype]; ok {
		e.player.Position = prevPos.Sub(types.Vector2{X: knockback, Y: knockback})
	}
}

// DrainEvents returns the events since the last call
func (e *Engine) DrainEvents() []types.GameEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	events := e.events
	e.events = nil
	return events
}

func (e *Engine) Phase() types.GamePhase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.phase
}

func (e *Engine) LevelNumber() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.levelNumber
}

func (e *Engine) Level() config.LevelConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.level
}

// GetPlayer returns a copy of the player
func (e *Engine) GetPlayer() types.Player {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return *e.player
}

func (e *Engine) Tick() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tick
}
