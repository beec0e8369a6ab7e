package types

import "github.com/besuhoff/dark-ritual-go/internal/config"

type MemoryKind string

const (
	MemoryOrphanage   MemoryKind = "orphanage"
	MemoryFire        MemoryKind = "fire"
	MemoryWarden      MemoryKind = "warden"
	MemoryExperiments MemoryKind = "experiments"
)

// MemoryKinds lists the memories in the order they are placed in the world.
var MemoryKinds = []MemoryKind{MemoryOrphanage, MemoryFire, MemoryWarden, MemoryExperiments}

var MemoryTextByKind = map[MemoryKind]string{
	MemoryOrphanage:   "I remember the nursery... the sound of music boxes and children crying in the night.",
	MemoryFire:        "The flames... they were everywhere. I couldn't see, but I could feel the heat. I heard the screams.",
	MemoryWarden:      "The Warden's footsteps... always heavy, always angry. We learned to be silent when he approached.",
	MemoryExperiments: "They blindfolded us for the tests. 'Listen carefully,' they'd say. 'Tell us what you hear.' Some children never returned.",
}

// MemoryFragment is a narrative vignette left somewhere in the world.
type MemoryFragment struct {
	ScreenObject
	Kind      MemoryKind `json:"kind"`
	Triggered bool       `json:"triggered"`
}

func (m *MemoryFragment) Rect() Rect {
	return RectAt(m.Position, config.MemoryFragmentSize, config.MemoryFragmentSize)
}

func (m *MemoryFragment) Text() string {
	if text, ok := MemoryTextByKind[m.Kind]; ok {
		return text
	}
	return "A forgotten memory..."
}
