package types

import "github.com/besuhoff/dark-ritual-go/internal/config"

type CollectableKind string

const (
	CollectableRitual CollectableKind = "ritual"
)

// Collectable represents a pickup item
type Collectable struct {
	ScreenObject
	Kind      CollectableKind `json:"kind"`
	Collected bool            `json:"collected"`
	Glow      int             `json:"glow"`
	Variant   int             `json:"variant"`
}

func (c *Collectable) Rect() Rect {
	return RectAt(c.Position, config.CollectableSize, config.CollectableSize)
}
