package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/besuhoff/dark-ritual-go/internal/game"
	"github.com/besuhoff/dark-ritual-go/internal/types"
)

// Messages are google.protobuf.Struct values. Binary clients get the proto
// wire format, text clients get the canonical JSON mapping of the same
// message, which is a plain JSON object.

// ToProtoVector2 converts types.Vector2 to its message form
func ToProtoVector2(v types.Vector2) map[string]interface{} {
	return map[string]interface{}{
		"x": v.X,
		"y": v.Y,
	}
}

// FromProtoVector2 reads a vector written by ToProtoVector2
func FromProtoVector2(v *structpb.Value) types.Vector2 {
	s := v.GetStructValue()
	if s == nil {
		return types.Vector2{}
	}
	return types.Vector2{
		X: s.GetFields()["x"].GetNumberValue(),
		Y: s.GetFields()["y"].GetNumberValue(),
	}
}

func toProtoRect(r types.Rect) map[string]interface{} {
	return map[string]interface{}{
		"x":      r.X,
		"y":      r.Y,
		"width":  r.Width,
		"height": r.Height,
	}
}

// ToProtoPlayer converts types.Player
func ToProtoPlayer(p *types.Player) map[string]interface{} {
	return map[string]interface{}{
		"id":        p.ID,
		"username":  p.Username,
		"position":  ToProtoVector2(p.Position),
		"health":    p.Health,
		"maxHealth": p.MaxHealth,
		"score":     p.Score,
		"isAlive":   p.IsAlive,
	}
}

// ToProtoEnemy converts types.Enemy
func ToProtoEnemy(e *types.Enemy) map[string]interface{} {
	return map[string]interface{}{
		"id":        e.ID,
		"archetype": e.Archetype.String(),
		"variant":   e.Variant,
		"position":  ToProtoVector2(e.Position),
		"state":     e.State.String(),
	}
}

// ToProtoCollectable converts types.Collectable
func ToProtoCollectable(c *types.Collectable) map[string]interface{} {
	return map[string]interface{}{
		"id":       c.ID,
		"kind":     string(c.Kind),
		"position": ToProtoVector2(c.Position),
		"glow":     c.Glow,
		"variant":  c.Variant,
	}
}

// ToProtoPortal converts types.Portal
func ToProtoPortal(p *types.Portal) map[string]interface{} {
	return map[string]interface{}{
		"id":     p.ID,
		"bounds": toProtoRect(p.Bounds),
		"isExit": p.IsExit,
		"active": p.Active,
	}
}

// ToProtoMemoryFragment converts types.MemoryFragment
func ToProtoMemoryFragment(m *types.MemoryFragment) map[string]interface{} {
	return map[string]interface{}{
		"id":       m.ID,
		"kind":     string(m.Kind),
		"position": ToProtoVector2(m.Position),
	}
}

// ToProtoProjectile converts types.Projectile
func ToProtoProjectile(p *types.Projectile) map[string]interface{} {
	return map[string]interface{}{
		"id":       p.ID,
		"ownerId":  p.OwnerID,
		"position": ToProtoVector2(p.Position),
		"velocity": ToProtoVector2(p.Velocity),
	}
}

func toProtoChunk(c *game.ChunkView) map[string]interface{} {
	collectables := make([]interface{}, len(c.Collectables))
	for i := range c.Collectables {
		collectables[i] = ToProtoCollectable(&c.Collectables[i])
	}
	enemies := make([]interface{}, len(c.Enemies))
	for i := range c.Enemies {
		enemies[i] = ToProtoEnemy(&c.Enemies[i])
	}
	portals := make([]interface{}, len(c.Portals))
	for i := range c.Portals {
		portals[i] = ToProtoPortal(&c.Portals[i])
	}
	memories := make([]interface{}, len(c.MemoryFragments))
	for i := range c.MemoryFragments {
		memories[i] = ToProtoMemoryFragment(&c.MemoryFragments[i])
	}

	return map[string]interface{}{
		"x":               c.Coord.X,
		"y":               c.Coord.Y,
		"collectables":    collectables,
		"enemies":         enemies,
		"portals":         portals,
		"memoryFragments": memories,
	}
}

// ToProtoEvent converts types.GameEvent
func ToProtoEvent(ev *types.GameEvent) map[string]interface{} {
	m := map[string]interface{}{
		"type": string(ev.Type),
		"tick": ev.Tick,
	}
	if ev.EntityID != "" {
		m["entityId"] = ev.EntityID
	}
	if ev.Detail != "" {
		m["detail"] = ev.Detail
	}
	if ev.Amount != 0 {
		m["amount"] = ev.Amount
	}
	if ev.Position != nil {
		m["position"] = ToProtoVector2(*ev.Position)
	}
	return m
}

// ToProtoGameState converts a snapshot to the state payload
func ToProtoGameState(snap *game.Snapshot) map[string]interface{} {
	chunks := make([]interface{}, len(snap.Chunks))
	for i := range snap.Chunks {
		chunks[i] = toProtoChunk(&snap.Chunks[i])
	}
	projectiles := make([]interface{}, len(snap.Projectiles))
	for i := range snap.Projectiles {
		projectiles[i] = ToProtoProjectile(&snap.Projectiles[i])
	}

	state := map[string]interface{}{
		"tick":                 snap.Tick,
		"phase":                string(snap.Phase),
		"level":                snap.Level,
		"levelName":            snap.LevelName,
		"player":               ToProtoPlayer(&snap.Player),
		"chunks":               chunks,
		"projectiles":          projectiles,
		"ritualItemsCollected": snap.RitualItemsCollected,
		"ritualItemsRequired":  snap.RitualItemsRequired,
		"difficulty":           snap.Difficulty,
		"gracePeriod":          snap.GracePeriod,
	}
	if snap.Exit != nil {
		state["exit"] = map[string]interface{}{
			"position":  ToProtoVector2(snap.Exit.Position),
			"direction": snap.Exit.Direction,
			"distance":  snap.Exit.Distance,
			"unlocked":  snap.Exit.Unlocked,
		}
	}
	if snap.Memory != "" {
		state["memory"] = snap.Memory
	}
	return state
}

// NewMessage builds a message of the given type. Payload keys are merged
// into the top level next to "type".
func NewMessage(msgType types.MessageType, payload map[string]interface{}) (*structpb.Struct, error) {
	fields := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		fields[k] = v
	}
	fields["type"] = string(msgType)

	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("building %s message: %w", msgType, err)
	}
	return msg, nil
}

// NewGameStateMessage wraps a snapshot and the events of its tick
func NewGameStateMessage(snap *game.Snapshot, events []types.GameEvent) (*structpb.Struct, error) {
	protoEvents := make([]interface{}, len(events))
	for i := range events {
		protoEvents[i] = ToProtoEvent(&events[i])
	}
	return NewMessage(types.MsgTypeGameState, map[string]interface{}{
		"state":  ToProtoGameState(snap),
		"events": protoEvents,
	})
}

// NewErrorMessage reports a problem to the client
func NewErrorMessage(text string) (*structpb.Struct, error) {
	return NewMessage(types.MsgTypeError, map[string]interface{}{"error": text})
}

// Encode serializes a message for the wire
func Encode(msg *structpb.Struct, binary bool) ([]byte, error) {
	if binary {
		return proto.Marshal(msg)
	}
	return protojson.Marshal(msg)
}

// Decode parses a client message
func Decode(data []byte, binary bool) (*structpb.Struct, error) {
	msg := &structpb.Struct{}
	if binary {
		if err := proto.Unmarshal(data, msg); err != nil {
			return nil, fmt.Errorf("unmarshaling proto message: %w", err)
		}
		return msg, nil
	}
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("unmarshaling JSON message: %w", err)
	}
	return msg, nil
}

// MessageTypeOf returns the "type" field of a message
func MessageTypeOf(msg *structpb.Struct) types.MessageType {
	return types.MessageType(msg.GetFields()["type"].GetStringValue())
}

// FromProtoInput converts the "input" field to types.InputPayload. Missing
// keys read as false.
func FromProtoInput(msg *structpb.Struct) types.InputPayload {
	input := msg.GetFields()["input"].GetStructValue()
	if input == nil {
		return types.InputPayload{}
	}
	f := input.GetFields()
	return types.InputPayload{
		Up:        f["up"].GetBoolValue(),
		Down:      f["down"].GetBoolValue(),
		Left:      f["left"].GetBoolValue(),
		Right:     f["right"].GetBoolValue(),
		EmitSound: f["emit_sound"].GetBoolValue(),
		Dismiss:   f["dismiss"].GetBoolValue(),
	}
}
