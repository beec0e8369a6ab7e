package game

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/db"
	"github.com/besuhoff/dark-ritual-go/internal/types"
	"github.com/besuhoff/dark-ritual-go/internal/world"
)

const (
	objectCollectable = "collectable"
	objectEnemy       = "enemy"
	objectPortal      = "portal"
	objectMemory      = "memory"
	objectProjectile  = "projectile"
)

// SaveToSession saves the engine state to a database session
func (e *Engine) SaveToSession(session *db.GameSession) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	state := e.world.Export()

	session.Level = e.levelNumber
	session.Phase = string(e.phase)
	session.Player = db.PlayerState{
		PlayerID:      e.player.ID,
		Name:          e.player.Username,
		Position:      db.Position{X: e.player.Position.X, Y: e.player.Position.Y},
		Health:        e.player.Health,
		MaxHealth:     e.player.MaxHealth,
		Score:         e.player.Score,
		ItemsTotal:    state.RitualItemsCollected,
		IsAlive:       e.player.IsAlive,
		LastSoundTick: e.player.LastSoundTick - e.tick,
		LastUpdated:   time.Now(),
	}
	session.Progress = db.WorldProgress{
		RitualItemsCollected: state.RitualItemsCollected,
		Difficulty:           state.Difficulty,
		ExitDoorCreated:      state.ExitDoorCreated,
		NextMemory:           state.NextMemory,
		Ticks:                state.Ticks,
	}
	if state.ExitDoorCreated {
		session.Progress.ExitDoorChunk = state.ExitDoorChunk.Key()
	}

	session.WorldMap = make(map[string]db.Chunk, len(state.Chunks))
	for _, chunk := range state.Chunks {
		key := chunk.Coord.Key()
		session.WorldMap[key] = db.Chunk{
			ChunkID: key,
			X:       chunk.Coord.X,
			Y:       chunk.Coord.Y,
			Objects: chunkObjects(&chunk),
		}
	}

	session.SharedObjects = make(map[string]db.WorldObject, len(e.projectiles))
	for id, projectile := range e.projectiles {
		session.SharedObjects[id] = db.WorldObject{
			ObjectID: id,
			Type:     objectProjectile,
			X:        projectile.Position.X,
			Y:        projectile.Position.Y,
			OwnerID:  projectile.OwnerID,
			Properties: map[string]interface{}{
				"vx":       projectile.Velocity.X,
				"vy":       projectile.Velocity.Y,
				"lifetime": projectile.Lifetime,
				"damage":   projectile.Damage,
			},
		}
	}

	session.GameVersion = config.GameVersion
}

func chunkObjects(chunk *world.Chunk) map[string]db.WorldObject {
	objects := make(map[string]db.WorldObject)

	for _, item := range chunk.Collectables {
		objects[item.ID] = db.WorldObject{
			ObjectID: item.ID,
			Type:     objectCollectable,
			X:        item.Position.X,
			Y:        item.Position.Y,
			Properties: map[string]interface{}{
				"kind":      string(item.Kind),
				"collected": item.Collected,
				"glow":      item.Glow,
				"variant":   item.Variant,
			},
		}
	}

	for _, enemy := range chunk.Enemies {
		objects[enemy.ID] = db.WorldObject{
			ObjectID: enemy.ID,
			Type:     objectEnemy,
			X:        enemy.Position.X,
			Y:        enemy.Position.Y,
			Properties: map[string]interface{}{
				"archetype":       enemy.Archetype.String(),
				"variant":         enemy.Variant,
				"anchor_x":        enemy.Anchor.X,
				"anchor_y":        enemy.Anchor.Y,
				"patrol_radius":   enemy.PatrolRadius,
				"patrol_phase":    enemy.PatrolPhase,
				"detection_range": enemy.DetectionRange,
				"speed":           enemy.Speed,
				"state":           enemy.State.String(),
				"target_x":        enemy.Target.X,
				"target_y":        enemy.Target.Y,
				"heard_sound":     enemy.HeardSound,
				"fire_cooldown":   enemy.FireCooldown,
				"cooldown_timer":  enemy.CooldownTimer,
			},
		}
	}

	for _, portal := range chunk.Portals {
		objects[portal.ID] = db.WorldObject{
			ObjectID: portal.ID,
			Type:     objectPortal,
			X:        portal.Bounds.X,
			Y:        portal.Bounds.Y,
			Properties: map[string]interface{}{
				"width":   portal.Bounds.Width,
				"height":  portal.Bounds.Height,
				"dest_dx": portal.Destination.DX,
				"dest_dy": portal.Destination.DY,
				"is_exit": portal.IsExit,
				"active":  portal.Active,
			},
		}
	}

	for _, fragment := range chunk.MemoryFragments {
		objects[fragment.ID] = db.WorldObject{
			ObjectID: fragment.ID,
			Type:     objectMemory,
			X:        fragment.Position.X,
			Y:        fragment.Position.Y,
			Properties: map[string]interface{}{
				"kind":      string(fragment.Kind),
				"triggered": fragment.Triggered,
			},
		}
	}

	return objects
}

// LoadFromSession replaces the engine state with a saved game. level is the
// configuration of session.Level.
func (e *Engine) LoadFromSession(session *db.GameSession, level config.LevelConfig) error {
	state := world.State{
		Level:                level,
		RitualItemsCollected: session.Progress.RitualItemsCollected,
		Difficulty:           session.Progress.Difficulty,
		ExitDoorCreated:      session.Progress.ExitDoorCreated,
		NextMemory:           session.Progress.NextMemory,
		Ticks:                session.Progress.Ticks,
	}
	if session.Progress.ExitDoorCreated {
		coord, err := types.ParseChunkKey(session.Progress.ExitDoorChunk)
		if err != nil {
			return fmt.Errorf("loading session %s: %w", session.ID.Hex(), err)
		}
		state.ExitDoorChunk = coord
	}

	keys := make([]string, 0, len(session.WorldMap))
	for key := range session.WorldMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		stored := session.WorldMap[key]
		coord, err := types.ParseChunkKey(key)
		if err != nil {
			return fmt.Errorf("loading session %s: %w", session.ID.Hex(), err)
		}
		chunk := world.NewChunk(coord.X, coord.Y)
		chunk.Generated = true
		loadChunkObjects(chunk, stored.Objects)
		state.Chunks = append(state.Chunks, *chunk)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	w, err := world.Restore(state, world.WithRand(e.rng), world.WithBaseWardenSpeed(e.wardenSpeed))
	if err != nil {
		return fmt.Errorf("loading session %s: %w", session.ID.Hex(), err)
	}

	e.world = w
	e.levelNumber = session.Level
	e.level = level
	e.memory = nil
	e.memoryTimer = 0
	e.tick = 0

	e.phase = types.GamePhase(session.Phase)
	switch e.phase {
	case types.PhaseVictory, types.PhaseGameOver:
	default:
		// A save taken while a memory was showing resumes straight into play.
		e.phase = types.PhasePlaying
	}

	ps := session.Player
	e.player = types.NewPlayer(ps.PlayerID, ps.Name, types.Vector2{X: ps.Position.X, Y: ps.Position.Y})
	e.player.Health = ps.Health
	if ps.MaxHealth > 0 {
		e.player.MaxHealth = ps.MaxHealth
	}
	e.player.Score = ps.Score
	e.player.IsAlive = ps.IsAlive
	e.player.LastSoundTick = ps.LastSoundTick

	e.projectiles = make(map[string]*types.Projectile)
	for id, obj := range session.SharedObjects {
		if obj.Type != objectProjectile {
			continue
		}
		e.projectiles[id] = &types.Projectile{
			ID:       id,
			OwnerID:  obj.OwnerID,
			Position: types.Vector2{X: obj.X, Y: obj.Y},
			Velocity: types.Vector2{X: propFloat(obj.Properties, "vx"), Y: propFloat(obj.Properties, "vy")},
			Lifetime: propInt(obj.Properties, "lifetime"),
			Damage:   propInt(obj.Properties, "damage"),
		}
	}

	e.log.WithFields(logrus.Fields{
		"session": session.ID.Hex(),
		"level":   e.levelNumber,
		"chunks":  len(state.Chunks),
	}).Info("Loaded saved game")

	return nil
}

func loadChunkObjects(chunk *world.Chunk, objects map[string]db.WorldObject) {
	ids := make([]string, 0, len(objects))
	for id := range objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		obj := objects[id]
		props := obj.Properties
		pos := types.Vector2{X: obj.X, Y: obj.Y}

		switch obj.Type {
		case objectCollectable:
			chunk.Collectables = append(chunk.Collectables, types.Collectable{
				ScreenObject: types.ScreenObject{ID: id, Position: pos},
				Kind:         types.CollectableKind(propString(props, "kind")),
				Collected:    propBool(props, "collected"),
				Glow:         propInt(props, "glow"),
				Variant:      propInt(props, "variant"),
			})
		case objectEnemy:
			archetype := types.ParseArchetype(propString(props, "archetype"))
			if archetype == types.ArchetypeUnknown {
				continue
			}
			chunk.Enemies = append(chunk.Enemies, types.Enemy{
				ScreenObject:   types.ScreenObject{ID: id, Position: pos},
				Archetype:      archetype,
				Variant:        propInt(props, "variant"),
				Anchor:         types.Vector2{X: propFloat(props, "anchor_x"), Y: propFloat(props, "anchor_y")},
				PatrolRadius:   propFloat(props, "patrol_radius"),
				PatrolPhase:    propFloat(props, "patrol_phase"),
				DetectionRange: propFloat(props, "detection_range"),
				Speed:          propFloat(props, "speed"),
				State:          types.ParseEnemyState(propString(props, "state")),
				Target:         types.Vector2{X: propFloat(props, "target_x"), Y: propFloat(props, "target_y")},
				HeardSound:     propBool(props, "heard_sound"),
				FireCooldown:   propInt(props, "fire_cooldown"),
				CooldownTimer:  propInt(props, "cooldown_timer"),
			})
		case objectPortal:
			chunk.Portals = append(chunk.Portals, types.Portal{
				ID:     id,
				Bounds: types.RectAt(pos, propFloat(props, "width"), propFloat(props, "height")),
				Destination: types.ChunkOffset{
					DX: propInt(props, "dest_dx"),
					DY: propInt(props, "dest_dy"),
				},
				IsExit: propBool(props, "is_exit"),
				Active: propBool(props, "active"),
			})
		case objectMemory:
			chunk.MemoryFragments = append(chunk.MemoryFragments, types.MemoryFragment{
				ScreenObject: types.ScreenObject{ID: id, Position: pos},
				Kind:         types.MemoryKind(propString(props, "kind")),
				Triggered:    propBool(props, "triggered"),
			})
		}
	}
}

// Property maps come back from BSON with int32/int64 for integers and from
// JSON with float64, so numeric reads accept all of them.
func propFloat(props map[string]interface{}, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func propInt(props map[string]interface{}, key string) int {
	switch v := props[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	}
	return 0
}

func propBool(props map[string]interface{}, key string) bool {
	v, _ := props[key].(bool)
	return v
}

func propString(props map[string]interface{}, key string) string {
	v, _ := props[key].(string)
	return v
}
