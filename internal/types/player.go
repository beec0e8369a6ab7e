package types

import "github.com/besuhoff/dark-ritual-go/internal/config"

// Player is the single explorer of a session. Position is the top-left
// corner of the player's box.
type Player struct {
	ScreenObject
	Username      string `json:"username"`
	Health        int    `json:"health"`
	MaxHealth     int    `json:"maxHealth"`
	Score         int    `json:"score"`
	IsAlive       bool   `json:"isAlive"`
	LastSoundTick int64  `json:"-"`
	SoundCooldown int64  `json:"-"`
}

func NewPlayer(id, username string, pos Vector2) *Player {
	return &Player{
		ScreenObject:  ScreenObject{ID: id, Position: pos},
		Username:      username,
		Health:        config.PlayerMaxHealth,
		MaxHealth:     config.PlayerMaxHealth,
		IsAlive:       true,
		LastSoundTick: -config.SoundCooldownTicks - 1,
		SoundCooldown: config.SoundCooldownTicks,
	}
}

func (p *Player) Rect() Rect {
	return RectAt(p.Position, config.PlayerSize, config.PlayerSize)
}

// Move applies one tick of directional input.
func (p *Player) Move(input InputPayload) {
	var dx, dy float64
	if input.Left {
		dx -= config.PlayerSpeed
	}
	if input.Right {
		dx += config.PlayerSpeed
	}
	if input.Up {
		dy -= config.PlayerSpeed
	}
	if input.Down {
		dy += config.PlayerSpeed
	}
	p.Position.X += dx
	p.Position.Y += dy
}

// TakeDamage lowers health and reports whether the player survived.
func (p *Player) TakeDamage(amount int) bool {
	p.Health -= amount
	if p.Health <= 0 {
		p.Health = 0
		p.IsAlive = false
	}
	return p.IsAlive
}

func (p *Player) Heal(amount int) {
	p.Health = min(p.MaxHealth, p.Health+amount)
}

// TryEmitSound succeeds when the cooldown since the last emission has passed.
func (p *Player) TryEmitSound(tick int64) bool {
	if tick-p.LastSoundTick > p.SoundCooldown {
		p.LastSoundTick = tick
		return true
	}
	return false
}

// Respawn restores health for a fresh level while keeping the score.
func (p *Player) Respawn(pos Vector2) {
	p.Position = pos
	p.Health = p.MaxHealth
	p.IsAlive = true
	p.LastSoundTick = -p.SoundCooldown - 1
}
