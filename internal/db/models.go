package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// User represents a guest player in the database
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlayerID       string             `bson:"player_id" json:"player_id"`
	Username       string             `bson:"username" json:"username"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	LastSeenAt     time.Time          `bson:"last_seen_at" json:"last_seen_at"`
	CurrentSession string             `bson:"current_session,omitempty" json:"current_session,omitempty"`
}

// PlayerState represents the explorer's state in a saved game
type PlayerState struct {
	PlayerID      string    `bson:"player_id" json:"player_id"`
	Name          string    `bson:"name" json:"name"`
	Position      Position  `bson:"position" json:"position"`
	Health        int       `bson:"health" json:"health"`
	MaxHealth     int       `bson:"max_health" json:"max_health"`
	Score         int       `bson:"score" json:"score"`
	ItemsTotal    int       `bson:"items_total" json:"items_total"`
	IsAlive       bool      `bson:"is_alive" json:"is_alive"`
	LastSoundTick int64     `bson:"last_sound_tick" json:"last_sound_tick"`
	LastUpdated   time.Time `bson:"last_updated" json:"last_updated"`
}

// Position represents x, y coordinates
type Position struct {
	X float64 `bson:"x" json:"x"`
	Y float64 `bson:"y" json:"y"`
}

// WorldObject represents an object in the game world
type WorldObject struct {
	ObjectID   string                 `bson:"object_id" json:"object_id"`
	Type       string                 `bson:"type" json:"type"` // collectable, enemy, portal, memory, projectile
	X          float64                `bson:"x" json:"x"`
	Y          float64                `bson:"y" json:"y"`
	Properties map[string]interface{} `bson:"properties,omitempty" json:"properties,omitempty"`
	OwnerID    string                 `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
}

// Chunk represents a chunk of the game world
type Chunk struct {
	ChunkID string                 `bson:"chunk_id" json:"chunk_id"`
	X       int                    `bson:"x" json:"x"`
	Y       int                    `bson:"y" json:"y"`
	Objects map[string]WorldObject `bson:"objects" json:"objects"`
}

// WorldProgress holds the world counters that are not tied to a chunk
type WorldProgress struct {
	RitualItemsCollected int     `bson:"ritual_items_collected" json:"ritual_items_collected"`
	Difficulty           float64 `bson:"difficulty" json:"difficulty"`
	ExitDoorCreated      bool    `bson:"exit_door_created" json:"exit_door_created"`
	ExitDoorChunk        string  `bson:"exit_door_chunk,omitempty" json:"exit_door_chunk,omitempty"`
	NextMemory           int     `bson:"next_memory" json:"next_memory"`
	Ticks                int64   `bson:"ticks" json:"ticks"`
}

// GameSession represents a saved single-player run
type GameSession struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Name          string                 `bson:"name" json:"name"`
	HostID        string                 `bson:"host_id" json:"host_id"`
	Level         int                    `bson:"level" json:"level"`
	Phase         string                 `bson:"phase" json:"phase"`
	Player        PlayerState            `bson:"player" json:"player"`
	Progress      WorldProgress          `bson:"progress" json:"progress"`
	WorldMap      map[string]Chunk       `bson:"world_map" json:"world_map"`
	SharedObjects map[string]WorldObject `bson:"shared_objects" json:"shared_objects"`
	GameVersion   string                 `bson:"game_version" json:"game_version"`
	CreatedAt     time.Time              `bson:"created_at" json:"created_at"`
	LastUpdated   time.Time              `bson:"last_updated" json:"last_updated"`
	IsActive      bool                   `bson:"is_active" json:"is_active"`
}

// UserRepository provides database operations for users
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		collection: Database.Collection("users"),
	}
}

// FindByPlayerID finds a user by the ID carried in their token
func (r *UserRepository) FindByPlayerID(ctx context.Context, playerID string) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, bson.M{"player_id": playerID}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *User) error {
	user.CreatedAt = time.Now()
	user.LastSeenAt = user.CreatedAt
	user.IsActive = true

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return err
	}

	user.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// Touch records that the user connected and which session they are playing
func (r *UserRepository) Touch(ctx context.Context, playerID, sessionID string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"player_id": playerID},
		bson.M{"$set": bson.M{"last_seen_at": time.Now(), "current_session": sessionID}},
	)
	return err
}

// GameSessionRepository provides database operations for game sessions
type GameSessionRepository struct {
	collection *mongo.Collection
}

// NewGameSessionRepository creates a new game session repository
func NewGameSessionRepository() *GameSessionRepository {
	return &GameSessionRepository{
		collection: Database.Collection("game_sessions"),
	}
}

// FindByID finds a game session by ID
func (r *GameSessionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*GameSession, error) {
	var session GameSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByHost lists the saved games of one player, newest first. The world
// map is left out; callers that need it load the session by ID.
func (r *GameSessionRepository) FindByHost(ctx context.Context, hostID string) ([]GameSession, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "last_updated", Value: -1}}).
		SetProjection(bson.M{"world_map": 0, "shared_objects": 0})
	cursor, err := r.collection.Find(ctx, bson.M{"host_id": hostID, "is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []GameSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Create creates a new game session
func (r *GameSessionRepository) Create(ctx context.Context, session *GameSession) error {
	session.CreatedAt = time.Now()
	session.LastUpdated = time.Now()
	session.IsActive = true

	if session.WorldMap == nil {
		session.WorldMap = make(map[string]Chunk)
	}
	if session.SharedObjects == nil {
		session.SharedObjects = make(map[string]WorldObject)
	}

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return err
	}

	session.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// Update updates a game session
func (r *GameSessionRepository) Update(ctx context.Context, session *GameSession) error {
	session.LastUpdated = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": session.ID},
		bson.M{"$set": session},
	)
	return err
}

// Delete deletes a game session owned by hostID
func (r *GameSessionRepository) Delete(ctx context.Context, id primitive.ObjectID, hostID string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "host_id": hostID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
