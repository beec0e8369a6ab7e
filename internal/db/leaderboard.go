package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LeaderboardEntry is a player's best score on one level
type LeaderboardEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlayerID  string             `bson:"player_id" json:"player_id"`
	Username  string             `bson:"username" json:"username"`
	Level     int                `bson:"level" json:"level"`
	LevelName string             `bson:"level_name" json:"level_name"`
	Score     int                `bson:"score" json:"score"`
	Wins      int                `bson:"wins" json:"wins"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// ScoreStore keeps per-level high scores. Recording a score lower than the
// stored one leaves the best score untouched.
type ScoreStore interface {
	RecordScore(ctx context.Context, entry *LeaderboardEntry) error
	TopScores(ctx context.Context, level, limit int) ([]LeaderboardEntry, error)
	BestScore(ctx context.Context, playerID string, level int) (*LeaderboardEntry, error)
}

type LeaderboardRepository struct {
	collection *mongo.Collection
}

// NewLeaderboardRepository creates a new leaderboard repository
func NewLeaderboardRepository() *LeaderboardRepository {
	return &LeaderboardRepository{
		collection: Database.Collection("leaderboard"),
	}
}

// RecordScore creates or updates the entry of a player on a level
func (r *LeaderboardRepository) RecordScore(ctx context.Context, entry *LeaderboardEntry) error {
	filter := bson.M{
		"player_id": entry.PlayerID,
		"level":     entry.Level,
	}

	update := bson.M{
		"$max": bson.M{
			"score": entry.Score, // Only update if new score is higher
		},
		"$set": bson.M{
			"username":   entry.Username,
			"level_name": entry.LevelName,
			"updated_at": time.Now(),
		},
		"$inc": bson.M{
			"wins": 1,
		},
		"$setOnInsert": bson.M{
			"created_at": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// TopScores returns the top N scores of a level
func (r *LeaderboardRepository) TopScores(ctx context.Context, level, limit int) ([]LeaderboardEntry, error) {
	filter := bson.M{"level": level}
	opts := options.Find().SetSort(bson.D{{Key: "score", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []LeaderboardEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// BestScore returns a player's entry for a level
func (r *LeaderboardRepository) BestScore(ctx context.Context, playerID string, level int) (*LeaderboardEntry, error) {
	var entry LeaderboardEntry
	err := r.collection.FindOne(ctx, bson.M{
		"player_id": playerID,
		"level":     level,
	}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}
