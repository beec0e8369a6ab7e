package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrUnknownLevel = errors.New("unknown level")

// LevelConfig is the per-level tuning handed to a world at construction.
type LevelConfig struct {
	Name                string  `yaml:"name" json:"name"`
	RitualItemsRequired int     `yaml:"ritual_items_required" json:"ritual_items_required"`
	EnemyCount          int     `yaml:"enemy_count" json:"enemy_count"`
	WardenSpeedModifier float64 `yaml:"warden_speed_modifier" json:"warden_speed_modifier"`
	Description         string  `yaml:"description" json:"description"`
}

type levelsFile struct {
	Levels []LevelConfig `yaml:"levels"`
}

func DefaultLevels() []LevelConfig {
	return []LevelConfig{
		{
			Name:                "Nursery",
			RitualItemsRequired: 3,
			EnemyCount:          3,
			WardenSpeedModifier: 1.0,
			Description:         "The abandoned nursery. Find 3 ritual items to unlock the door.",
		},
		{
			Name:                "Dining Hall",
			RitualItemsRequired: 5,
			EnemyCount:          4,
			WardenSpeedModifier: 1.1,
			Description:         "The dining hall where children once gathered. Find 5 ritual items.",
		},
		{
			Name:                "Dormitory",
			RitualItemsRequired: 7,
			EnemyCount:          5,
			WardenSpeedModifier: 1.2,
			Description:         "The dormitory where children slept. Find 7 ritual items.",
		},
		{
			Name:                "Library",
			RitualItemsRequired: 9,
			EnemyCount:          6,
			WardenSpeedModifier: 1.3,
			Description:         "The library holds dark secrets. Find 9 ritual items.",
		},
		{
			Name:                "Ritual Chamber",
			RitualItemsRequired: 12,
			EnemyCount:          8,
			WardenSpeedModifier: 1.5,
			Description:         "The final chamber. Complete the ritual with 12 items to escape.",
		},
	}
}

// LoadLevels reads a YAML file of the form
//
//	levels:
//	  - name: Nursery
//	    ritual_items_required: 3
//	    ...
func LoadLevels(path string) ([]LevelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading levels file: %w", err)
	}
	return ParseLevels(data)
}

func ParseLevels(data []byte) ([]LevelConfig, error) {
	var file levelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing levels: %w", err)
	}
	if len(file.Levels) == 0 {
		return nil, errors.New("levels file defines no levels")
	}

	for i := range file.Levels {
		if err := file.Levels[i].Validate(); err != nil {
			return nil, fmt.Errorf("level %d: %w", i+1, err)
		}
	}
	return file.Levels, nil
}

// Validate fills defaults for omitted fields and rejects impossible values.
func (l *LevelConfig) Validate() error {
	if l.RitualItemsRequired < 0 {
		return fmt.Errorf("ritual_items_required must not be negative, got %d", l.RitualItemsRequired)
	}
	if l.EnemyCount < 0 {
		return fmt.Errorf("enemy_count must not be negative, got %d", l.EnemyCount)
	}
	if l.WardenSpeedModifier < 0 {
		return fmt.Errorf("warden_speed_modifier must not be negative, got %v", l.WardenSpeedModifier)
	}
	if l.WardenSpeedModifier == 0 {
		l.WardenSpeedModifier = 1.0
	}
	return nil
}

// Level returns the 1-based level n.
func (c *Config) Level(n int) (LevelConfig, error) {
	if n < 1 || n > len(c.Levels) {
		return LevelConfig{}, fmt.Errorf("%w: %d", ErrUnknownLevel, n)
	}
	return c.Levels[n-1], nil
}
