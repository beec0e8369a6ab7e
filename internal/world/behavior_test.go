package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/types"
)

func TestWardenHearsSoundAnywhere(t *testing.T) {
	e := types.NewEnemy("w", types.ArchetypeWarden, types.Vector2{X: 0, Y: 0}, 2.0)
	player := types.Vector2{X: 5000, Y: 0}

	updateWarden(&e, tickInput{playerPos: player})
	assert.Equal(t, types.EnemyStateIdle, e.State)
	assert.Equal(t, types.Vector2{}, e.Position)

	updateWarden(&e, tickInput{playerPos: player, soundEmitted: true})
	assert.Equal(t, types.EnemyStateAlerted, e.State)
	assert.True(t, e.HeardSound)
	assert.InDelta(t, 2.0, e.Position.X, 1e-9)

	// Keeps walking to the remembered position after the player moves away silently.
	updateWarden(&e, tickInput{playerPos: types.Vector2{X: -5000, Y: 0}})
	assert.InDelta(t, 4.0, e.Position.X, 1e-9)
	assert.Equal(t, player, e.Target)
}

func TestWardenStopsAtTarget(t *testing.T) {
	e := types.NewEnemy("w", types.ArchetypeWarden, types.Vector2{X: 100, Y: 100}, 2.0)
	updateWarden(&e, tickInput{playerPos: types.Vector2{X: 103, Y: 100}})
	assert.Equal(t, types.EnemyStateAlerted, e.State)
	assert.Equal(t, types.Vector2{X: 100, Y: 100}, e.Position)
}

func TestPhantomChasesInRange(t *testing.T) {
	e := types.NewEnemy("p", types.ArchetypePhantom, types.Vector2{X: 0, Y: 0}, 0)

	updatePhantom(&e, tickInput{playerPos: types.Vector2{X: 0, Y: 100}})
	assert.Equal(t, types.EnemyStateChase, e.State)
	assert.InDelta(t, config.PhantomSpeed, e.Position.Y, 1e-9)
}

func TestPhantomPatrolsAroundAnchor(t *testing.T) {
	e := types.NewEnemy("p", types.ArchetypePhantom, types.Vector2{X: 500, Y: 500}, 0)
	e.PatrolPhase = 1.0

	updatePhantom(&e, tickInput{playerPos: types.Vector2{X: 5000, Y: 5000}, elapsedMs: 5000})
	assert.Equal(t, types.EnemyStatePatrol, e.State)
	assert.InDelta(t, config.PhantomOrbitRadius, e.Position.DistanceTo(e.Anchor), 1e-9)
	assert.InDelta(t, 500+math.Cos(1.0)*config.PhantomOrbitRadius, e.Position.X, 1e-9)
}

func TestPhantomOrbitIgnoresPatrolPhase(t *testing.T) {
	a := types.NewEnemy("a", types.ArchetypePhantom, types.Vector2{X: 500, Y: 500}, 0)
	b := types.NewEnemy("b", types.ArchetypePhantom, types.Vector2{X: 500, Y: 500}, 0)
	b.PatrolPhase = 2.5

	in := tickInput{playerPos: types.Vector2{X: 5000, Y: 5000}, elapsedMs: 7500}
	updatePhantom(&a, in)
	updatePhantom(&b, in)
	assert.InDelta(t, a.Position.X, b.Position.X, 1e-9)
	assert.InDelta(t, a.Position.Y, b.Position.Y, 1e-9)
}

func TestCrawlerIgnoresSilentPlayer(t *testing.T) {
	e := types.NewEnemy("c", types.ArchetypeCrawler, types.Vector2{X: 0, Y: 0}, 0)
	player := types.Vector2{X: 40, Y: 0}

	updateCrawler(&e, tickInput{playerPos: player})
	assert.Equal(t, types.EnemyStatePatrol, e.State)
	assert.InDelta(t, config.CrawlerOrbitRadius, e.Position.DistanceTo(e.Anchor), 1e-9)

	updateCrawler(&e, tickInput{playerPos: player, soundEmitted: true})
	assert.Equal(t, types.EnemyStateChase, e.State)
}

func TestCrawlerHearingRange(t *testing.T) {
	e := types.NewEnemy("c", types.ArchetypeCrawler, types.Vector2{X: 0, Y: 0}, 0)
	updateCrawler(&e, tickInput{playerPos: types.Vector2{X: config.CrawlerHearingRange, Y: 0}, soundEmitted: true})
	assert.Equal(t, types.EnemyStatePatrol, e.State)
}

func TestTurretFiresOnCooldown(t *testing.T) {
	e := types.NewEnemy("t", types.ArchetypeTurret, types.Vector2{X: 0, Y: 0}, 0)
	player := types.Vector2{X: 100, Y: 0}

	fired := 0
	for i := 0; i < 2*config.TurretFireCooldown+1; i++ {
		if updateTurret(&e, tickInput{playerPos: player}) {
			fired++
		}
	}
	assert.Equal(t, 3, fired)
	assert.Equal(t, types.EnemyStateArmed, e.State)
	assert.Equal(t, player, e.Target)
	assert.Equal(t, types.Vector2{}, e.Position)
}

func TestTurretIdleOutOfRange(t *testing.T) {
	e := types.NewEnemy("t", types.ArchetypeTurret, types.Vector2{X: 0, Y: 0}, 0)
	assert.False(t, updateTurret(&e, tickInput{playerPos: types.Vector2{X: config.TurretDetectionRange, Y: 0}}))
	assert.Equal(t, types.EnemyStateIdle, e.State)
}
