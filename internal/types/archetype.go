package types

import (
	"strings"

	"github.com/besuhoff/dark-ritual-go/internal/config"
)

// EnemyArchetype is an enemy's behavioral class.
type EnemyArchetype uint8

const (
	ArchetypeUnknown EnemyArchetype = iota
	ArchetypeCrawler
	ArchetypePhantom
	ArchetypeWarden
	ArchetypeTurret
)

// MobileArchetypes are the archetypes rolled when the turret roll fails.
var MobileArchetypes = []EnemyArchetype{ArchetypeCrawler, ArchetypePhantom, ArchetypeWarden}

var archetypeToString = map[EnemyArchetype]string{
	ArchetypeCrawler: "crawler",
	ArchetypePhantom: "phantom",
	ArchetypeWarden:  "warden",
	ArchetypeTurret:  "turret",
}

var archetypeStringToType = map[string]EnemyArchetype{
	"crawler": ArchetypeCrawler,
	"phantom": ArchetypePhantom,
	"warden":  ArchetypeWarden,
	"turret":  ArchetypeTurret,
}

func (a EnemyArchetype) String() string {
	if val, ok := archetypeToString[a]; ok {
		return val
	}
	return "unknown"
}

func ParseArchetype(s string) EnemyArchetype {
	if val, ok := archetypeStringToType[strings.ToLower(s)]; ok {
		return val
	}
	return ArchetypeUnknown
}

// EnemyState is the behavioral state of a single enemy.
type EnemyState uint8

const (
	EnemyStateIdle EnemyState = iota
	EnemyStateAlerted
	EnemyStatePatrol
	EnemyStateChase
	EnemyStateArmed
)

var enemyStateToString = map[EnemyState]string{
	EnemyStateIdle:    "idle",
	EnemyStateAlerted: "alerted",
	EnemyStatePatrol:  "patrol",
	EnemyStateChase:   "chase",
	EnemyStateArmed:   "armed",
}

var enemyStateStringToType = map[string]EnemyState{
	"idle":    EnemyStateIdle,
	"alerted": EnemyStateAlerted,
	"patrol":  EnemyStatePatrol,
	"chase":   EnemyStateChase,
	"armed":   EnemyStateArmed,
}

func (s EnemyState) String() string {
	if val, ok := enemyStateToString[s]; ok {
		return val
	}
	return "unknown"
}

func ParseEnemyState(s string) EnemyState {
	return enemyStateStringToType[strings.ToLower(s)]
}

// InitialEnemyStateByArchetype is the state an enemy spawns in.
var InitialEnemyStateByArchetype = map[EnemyArchetype]EnemyState{
	ArchetypeCrawler: EnemyStatePatrol,
	ArchetypePhantom: EnemyStatePatrol,
	ArchetypeWarden:  EnemyStateIdle,
	ArchetypeTurret:  EnemyStateIdle,
}

var DetectionRangeByArchetype = map[EnemyArchetype]float64{
	ArchetypeCrawler: config.CrawlerDetectionRange,
	ArchetypePhantom: config.PhantomDetectionRange,
	ArchetypeWarden:  config.WardenDetectionRange,
	ArchetypeTurret:  config.TurretDetectionRange,
}

// SpeedByArchetype holds fixed per-tick speeds. Wardens are missing on
// purpose: their speed comes from the level configuration.
var SpeedByArchetype = map[EnemyArchetype]float64{
	ArchetypeCrawler: config.CrawlerSpeed,
	ArchetypePhantom: config.PhantomSpeed,
	ArchetypeTurret:  0,
}

var ContactDamageByArchetype = map[EnemyArchetype]int{
	ArchetypeCrawler: config.CrawlerContactDamage,
	ArchetypePhantom: config.PhantomContactDamage,
	ArchetypeWarden:  config.WardenContactDamage,
	ArchetypeTurret:  0,
}

var KnockbackByArchetype = map[EnemyArchetype]float64{
	ArchetypeCrawler: config.CrawlerKnockback,
	ArchetypeWarden:  config.WardenKnockback,
}
