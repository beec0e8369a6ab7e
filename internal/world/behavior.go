package world

import (
	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/types"
	"github.com/besuhoff/dark-ritual-go/internal/utils"
)

// tickInput is what every enemy sees during one simulation tick.
type tickInput struct {
	playerPos    types.Vector2
	soundEmitted bool
	elapsedMs    float64
}

// behaviorFunc advances one enemy by one tick and reports whether it fired.
type behaviorFunc func(e *types.Enemy, in tickInput) bool

var behaviorByArchetype = map[types.EnemyArchetype]behaviorFunc{
	types.ArchetypeWarden:  updateWarden,
	types.ArchetypePhantom: updatePhantom,
	types.ArchetypeCrawler: updateCrawler,
	types.ArchetypeTurret:  updateTurret,
}

func stepToward(e *types.Enemy, target types.Vector2) {
	e.Position.X, e.Position.Y = utils.StepToward(
		e.Position.X, e.Position.Y, target.X, target.Y, e.Speed, config.ArrivalDistance)
}

func orbit(e *types.Enemy, radius, angle float64) {
	e.Position.X, e.Position.Y = utils.OrbitPoint(e.Anchor.X, e.Anchor.Y, radius, angle)
}

// Wardens hear every sound in the world. Once alerted they keep walking to
// the last known player position and never go back to idle.
func updateWarden(e *types.Enemy, in tickInput) bool {
	distance := e.DistanceToPoint(in.playerPos)
	if distance < e.DetectionRange || in.soundEmitted {
		e.Target = in.playerPos
		e.HeardSound = true
		e.State = types.EnemyStateAlerted
	}

	if e.HeardSound {
		stepToward(e, e.Target)
	}
	return false
}

func updatePhantom(e *types.Enemy, in tickInput) bool {
	if e.DistanceToPoint(in.playerPos) < e.DetectionRange {
		e.State = types.EnemyStateChase
		stepToward(e, in.playerPos)
		return false
	}

	e.State = types.EnemyStatePatrol
	orbit(e, config.PhantomOrbitRadius, in.elapsedMs/config.PhantomOrbitPeriod)
	return false
}

// Crawlers are blind: only a sound close enough draws them out.
func updateCrawler(e *types.Enemy, in tickInput) bool {
	if in.soundEmitted && e.DistanceToPoint(in.playerPos) < config.CrawlerHearingRange {
		e.State = types.EnemyStateChase
		stepToward(e, in.playerPos)
		return false
	}

	e.State = types.EnemyStatePatrol
	orbit(e, config.CrawlerOrbitRadius, in.elapsedMs/config.CrawlerOrbitPeriod+e.PatrolPhase)
	return false
}

func updateTurret(e *types.Enemy, in tickInput) bool {
	if e.DistanceToPoint(in.playerPos) >= e.DetectionRange {
		e.State = types.EnemyStateIdle
		return false
	}

	e.State = types.EnemyStateArmed
	if e.CooldownTimer > 0 {
		e.CooldownTimer--
	}
	if e.CooldownTimer > 0 {
		return false
	}

	e.Target = in.playerPos
	e.CooldownTimer = e.FireCooldown
	return true
}
