package types

// MessageType represents different types of messages
type MessageType string

const (
	// Client -> Server
	MsgTypeInput     MessageType = "input"
	MsgTypeNextLevel MessageType = "next_level"
	MsgTypeRestart   MessageType = "restart"

	// Server -> Client
	MsgTypeGameState     MessageType = "game_state"
	MsgTypeLevelStart    MessageType = "level_start"
	MsgTypeLevelComplete MessageType = "level_complete"
	MsgTypeGameOver      MessageType = "game_over"
	MsgTypeError         MessageType = "error"
)

// EventType names a semantic result of one simulation tick.
type EventType string

const (
	EventItemCollected   EventType = "item_collected"
	EventPortalEntered   EventType = "portal_entered"
	EventExitReached     EventType = "exit_reached"
	EventEnemyHit        EventType = "enemy_hit"
	EventProjectileHit   EventType = "projectile_hit"
	EventTurretFired     EventType = "turret_fired"
	EventMemoryTriggered EventType = "memory_triggered"
	EventPlayerHealed    EventType = "player_healed"
	EventPlayerDied      EventType = "player_died"
)

// GameEvent is emitted by the session engine and consumed once by the transport.
type GameEvent struct {
	Type     EventType `json:"type"`
	Tick     int64     `json:"tick"`
	EntityID string    `json:"entityId,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	Amount   int       `json:"amount,omitempty"`
	Position *Vector2  `json:"position,omitempty"`
}
