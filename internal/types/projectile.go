package types

import (
	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/google/uuid"
)

// Projectile is a ballistic shot fired by a turret. It is owned by the
// session engine, not by any chunk.
type Projectile struct {
	ID       string  `json:"id"`
	OwnerID  string  `json:"ownerId"`
	Position Vector2 `json:"position"`
	Velocity Vector2 `json:"velocity"`
	Lifetime int     `json:"lifetime"`
	Damage   int     `json:"damage"`
}

// NewProjectile aims a projectile from origin at target. A target equal to
// the origin yields a projectile that stays in place until it expires.
func NewProjectile(ownerID string, origin, target Vector2) *Projectile {
	return &Projectile{
		ID:       uuid.New().String(),
		OwnerID:  ownerID,
		Position: origin,
		Velocity: target.Sub(origin).Normalized().Scale(config.ProjectileSpeed),
		Lifetime: config.ProjectileLifetime,
		Damage:   config.ProjectileDamage,
	}
}

// Update advances the projectile one tick and reports whether it is still alive.
func (p *Projectile) Update() bool {
	p.Position = p.Position.Add(p.Velocity)
	p.Lifetime--
	return p.Lifetime > 0
}

func (p *Projectile) Rect() Rect {
	return RectCenteredAt(p.Position, config.ProjectileRadius*2, config.ProjectileRadius*2)
}

func (p *Projectile) CheckCollision(target Rect) bool {
	return p.Rect().Intersects(target)
}
