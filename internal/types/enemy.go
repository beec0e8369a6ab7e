package types

import "github.com/besuhoff/dark-ritual-go/internal/config"

// Enemy is a hostile entity owned by a chunk. Position is the top-left
// corner of its sprite box.
type Enemy struct {
	ScreenObject
	Archetype      EnemyArchetype `json:"archetype"`
	Variant        int            `json:"variant"`
	Anchor         Vector2        `json:"anchor"`
	PatrolRadius   float64        `json:"patrolRadius"`
	PatrolPhase    float64        `json:"-"`
	DetectionRange float64        `json:"detectionRange"`
	Speed          float64        `json:"speed"`
	State          EnemyState     `json:"state"`
	Target         Vector2        `json:"-"`
	HeardSound     bool           `json:"-"`
	FireCooldown   int            `json:"-"`
	CooldownTimer  int            `json:"-"`
}

// NewEnemy spawns an enemy of the given archetype anchored at pos.
func NewEnemy(id string, archetype EnemyArchetype, pos Vector2, wardenSpeed float64) Enemy {
	speed, exists := SpeedByArchetype[archetype]
	if !exists || archetype == ArchetypeWarden {
		speed = wardenSpeed
	}

	return Enemy{
		ScreenObject:   ScreenObject{ID: id, Position: pos},
		Archetype:      archetype,
		Anchor:         pos,
		DetectionRange: DetectionRangeByArchetype[archetype],
		Speed:          speed,
		State:          InitialEnemyStateByArchetype[archetype],
		Target:         pos,
		FireCooldown:   config.TurretFireCooldown,
	}
}

// Hitbox is the sprite box grown by a small margin so contact feels fair.
func (e *Enemy) Hitbox() Rect {
	return RectAt(e.Position, config.EnemySize, config.EnemySize).Inflate(config.EnemyHitboxPadding)
}

// MuzzlePoint is where turret projectiles spawn.
func (e *Enemy) MuzzlePoint() Vector2 {
	return Vector2{X: e.Position.X + config.TurretMuzzleOffset, Y: e.Position.Y + config.TurretMuzzleOffset}
}

func (e *Enemy) ContactDamage() int {
	return ContactDamageByArchetype[e.Archetype]
}

func (e *Enemy) Knockback() float64 {
	return KnockbackByArchetype[e.Archetype]
}
