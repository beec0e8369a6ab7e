package config

import "time"

const GameVersion = "1.0.0"

// World
const (
	ChunkSize    = 1000.0
	ViewDistance = 2

	// Simulation runs at a fixed step; every duration below is counted in ticks.
	TickRate         = 60
	GameLoopInterval = time.Second / TickRate
	GracePeriod      = 3000 * time.Millisecond

	MaxDifficulty          = 3.0
	DifficultyItemsPerStep = 20.0

	CollectableEdgeMargin = 100
	EnemyEdgeMargin       = 100
	PortalEdgeMargin      = 200

	MinCollectablesPerChunk = 1
	MaxCollectablesPerChunk = 3
	TurretChance            = 0.2
	PortalChance            = 0.3
	PortalMaxOffset         = 5
	MemoryFragmentChance    = 0.15
)

// Sizes
const (
	CollectableSize     = 32.0
	EnemySize           = 32.0
	EnemyHitboxPadding  = 5.0
	PortalSize          = 60.0
	ExitDoorSize        = 80.0
	MemoryFragmentSize  = 20.0
	PlayerSize          = 32.0
	ProjectileRadius    = 6.0
	MaxGlow             = 50
	CollectableVariants = 3
	EnemyVariants       = 3
)

// Enemies
const (
	DefaultWardenSpeed = 1.5
	MinWardenSpeed     = 0.5
	MaxWardenSpeed     = 3.0

	WardenDetectionRange  = 200.0
	PhantomDetectionRange = 150.0
	CrawlerDetectionRange = 100.0
	TurretDetectionRange  = 250.0
	CrawlerHearingRange   = 300.0

	PhantomSpeed = 1.2
	CrawlerSpeed = 0.8

	MinPatrolRadius    = 80
	MaxPatrolRadius    = 150
	PhantomOrbitRadius = 50.0
	CrawlerOrbitRadius = 30.0
	PhantomOrbitPeriod = 5000.0 // ms per radian
	CrawlerOrbitPeriod = 4000.0 // ms per radian
	ArrivalDistance    = 5.0
	TurretFireCooldown = 120
	TurretMuzzleOffset = EnemySize / 2
)

// Projectiles
const (
	ProjectileSpeed    = 5.0
	ProjectileLifetime = 120
	ProjectileDamage   = 15
)

// Player
const (
	PlayerSpeed        = 3.0
	PlayerMaxHealth    = 100
	SoundCooldownTicks = TickRate // 1000ms

	RitualScore       = 100
	ExitScore         = 1000
	HealEveryNItems   = 5
	RitualHealAmount  = 20
	MemoryDisplayTime = 300 // ticks

	WardenContactDamage  = 40
	CrawlerContactDamage = 20
	PhantomContactDamage = 10
	WardenKnockback      = 50.0
	CrawlerKnockback     = 20.0
)

// Server
const (
	SessionSaveInterval    = 30 * time.Second
	DefaultLeaderboardSize = 10
)
