package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/besuhoff/dark-ritual-go/internal/logger"
)

var Client *mongo.Client
var Database *mongo.Database

// ErrNotConfigured is returned for features that need MongoDB when no
// MONGODB_URL is set.
var ErrNotConfigured = errors.New("mongodb not configured")

// Connect establishes a connection to MongoDB
func Connect(mongoURL, database string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURL)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return err
	}

	Client = client
	Database = client.Database(database)

	logger.Log.WithField("database", database).Info("Connected to MongoDB successfully")

	if err := createIndexes(ctx); err != nil {
		logger.Log.WithError(err).Warn("Failed to create indexes")
	}

	return nil
}

// Connected reports whether Connect succeeded
func Connected() bool {
	return Database != nil
}

// createIndexes creates necessary database indexes
func createIndexes(ctx context.Context) error {
	userCollection := Database.Collection("users")
	_, err := userCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "player_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	sessionCollection := Database.Collection("game_sessions")
	_, err = sessionCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "host_id", Value: 1}, {Key: "last_updated", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "is_active", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	leaderboardCollection := Database.Collection("leaderboard")
	_, err = leaderboardCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "player_id", Value: 1}, {Key: "level", Value: 1}},
			Options: options.Index().SetUnique(true), // One entry per player per level
		},
		{
			Keys: bson.D{{Key: "level", Value: 1}, {Key: "score", Value: -1}}, // Per-level leaderboards
		},
	})

	return err
}

// Disconnect closes the MongoDB connection
func Disconnect() error {
	if Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return Client.Disconnect(ctx)
	}
	return nil
}
