package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/besuhoff/dark-ritual-go/internal/game"
	"github.com/besuhoff/dark-ritual-go/internal/types"
)

func TestDecodeTextInput(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"input","input":{"up":true,"emit_sound":true}}`), false)
	require.NoError(t, err)

	assert.Equal(t, types.MsgTypeInput, MessageTypeOf(msg))
	assert.Equal(t, types.InputPayload{Up: true, EmitSound: true}, FromProtoInput(msg))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte(`{"type":`), false)
	assert.Error(t, err)

	_, err = Decode([]byte{0xff, 0xff, 0xff}, true)
	assert.Error(t, err)
}

func TestFromProtoInputWithoutInput(t *testing.T) {
	msg, err := NewMessage(types.MsgTypeRestart, nil)
	require.NoError(t, err)
	assert.Equal(t, types.InputPayload{}, FromProtoInput(msg))
	assert.Equal(t, types.MsgTypeRestart, MessageTypeOf(msg))
}

func TestGameStateRoundTrip(t *testing.T) {
	snap := &game.Snapshot{
		Tick:      12,
		Phase:     types.PhasePlaying,
		Level:     2,
		LevelName: "Dormitory",
		Player: types.Player{
			ScreenObject: types.ScreenObject{ID: "p1", Position: types.Vector2{X: 10, Y: -4}},
			Username:     "ana",
			Health:       80,
			MaxHealth:    100,
			IsAlive:      true,
		},
		Chunks: []game.ChunkView{{
			Coord: types.ChunkCoord{X: -1, Y: 0},
			Enemies: []types.Enemy{{
				ScreenObject: types.ScreenObject{ID: "e1", Position: types.Vector2{X: -500, Y: 300}},
				Archetype:    types.ArchetypeTurret,
				State:        types.EnemyStateArmed,
			}},
		}},
		RitualItemsCollected: 3,
		RitualItemsRequired:  5,
		Exit:                 &game.ExitIndicator{Position: types.Vector2{X: 1500, Y: 500}, Distance: 100},
	}
	pos := types.Vector2{X: 1, Y: 2}
	events := []types.GameEvent{{Type: types.EventTurretFired, Tick: 12, EntityID: "e1", Position: &pos}}

	for _, binary := range []bool{false, true} {
		msg, err := NewGameStateMessage(snap, events)
		require.NoError(t, err)

		data, err := Encode(msg, binary)
		require.NoError(t, err)
		decoded, err := Decode(data, binary)
		require.NoError(t, err)

		assert.Equal(t, types.MsgTypeGameState, MessageTypeOf(decoded))

		state := decoded.GetFields()["state"].GetStructValue().GetFields()
		assert.Equal(t, "playing", state["phase"].GetStringValue())
		assert.Equal(t, 3.0, state["ritualItemsCollected"].GetNumberValue())
		assert.Equal(t, types.Vector2{X: 10, Y: -4}, FromProtoVector2(state["player"].GetStructValue().GetFields()["position"]))
		assert.NotNil(t, state["exit"])
		_, hasMemory := state["memory"]
		assert.False(t, hasMemory)

		chunks := state["chunks"].GetListValue().GetValues()
		require.Len(t, chunks, 1)
		enemies := chunks[0].GetStructValue().GetFields()["enemies"].GetListValue().GetValues()
		require.Len(t, enemies, 1)
		assert.Equal(t, "turret", enemies[0].GetStructValue().GetFields()["archetype"].GetStringValue())

		evs := decoded.GetFields()["events"].GetListValue().GetValues()
		require.Len(t, evs, 1)
		ev := evs[0].GetStructValue().GetFields()
		assert.Equal(t, "turret_fired", ev["type"].GetStringValue())
		assert.Equal(t, pos, FromProtoVector2(ev["position"]))
		_, hasDetail := ev["detail"]
		assert.False(t, hasDetail)
	}
}

func TestErrorMessage(t *testing.T) {
	msg, err := NewErrorMessage("session not found")
	require.NoError(t, err)
	assert.Equal(t, types.MsgTypeError, MessageTypeOf(msg))
	assert.Equal(t, "session not found", msg.GetFields()["error"].GetStringValue())
}
