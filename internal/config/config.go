package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/besuhoff/dark-ritual-go/internal/logger"
)

type Config struct {
	Host                     string
	Port                     string
	MongoDBURL               string
	MongoDBDatabase          string
	SecretKey                string
	FrontendURL              string
	AccessTokenExpireMinutes int
	UseTLS                   bool
	TLSCert                  string
	TLSKey                   string
	LevelsFile               string
	HighScoresFile           string
	BaseWardenSpeed          float64
	Levels                   []LevelConfig
}

var AppConfig *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("No .env file found, using environment variables")
	}

	expireMinutes := 11520 // Default: 8 days
	if expireStr := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); expireStr != "" {
		if val, err := strconv.Atoi(expireStr); err == nil {
			expireMinutes = val
		}
	}

	wardenSpeed := DefaultWardenSpeed
	if speedStr := os.Getenv("BASE_WARDEN_SPEED"); speedStr != "" {
		if val, err := strconv.ParseFloat(speedStr, 64); err == nil {
			wardenSpeed = ClampWardenSpeed(val)
		} else {
			logger.Log.WithError(err).Warn("Ignoring invalid BASE_WARDEN_SPEED")
		}
	}

	config := &Config{
		Host:                     getEnvOrDefault("HOST", "localhost"),
		Port:                     getEnvOrDefault("PORT", "8080"),
		MongoDBURL:               getEnvOrDefault("MONGODB_URL", ""),
		MongoDBDatabase:          getEnvOrDefault("MONGODB_DATABASE", "dark_ritual"),
		SecretKey:                getEnvOrDefault("SECRET_KEY", ""),
		FrontendURL:              getEnvOrDefault("FRONTEND_URL", "http://localhost:9000"),
		AccessTokenExpireMinutes: expireMinutes,
		UseTLS:                   os.Getenv("USE_TLS") == "true",
		TLSCert:                  getEnvOrDefault("TLS_CERT", ""),
		TLSKey:                   getEnvOrDefault("TLS_KEY", ""),
		LevelsFile:               getEnvOrDefault("LEVELS_FILE", ""),
		HighScoresFile:           getEnvOrDefault("HIGH_SCORES_FILE", "save/high_scores.json"),
		BaseWardenSpeed:          wardenSpeed,
		Levels:                   DefaultLevels(),
	}

	// Validate required fields
	if config.SecretKey == "" {
		logger.Log.Fatal("SECRET_KEY is required")
	}

	if config.LevelsFile != "" {
		levels, err := LoadLevels(config.LevelsFile)
		if err != nil {
			logger.Log.WithError(err).WithField("file", config.LevelsFile).Fatal("Failed to load levels")
		}
		config.Levels = levels
	}

	if config.MongoDBURL == "" {
		logger.Log.WithField("file", config.HighScoresFile).Warn("MONGODB_URL not set, persisting to local file")
	}

	logger.Log.WithFields(logrus.Fields{
		"levels":       len(config.Levels),
		"warden_speed": config.BaseWardenSpeed,
	}).Info("Configuration loaded")

	AppConfig = config
	return config
}

// ClampWardenSpeed keeps the base warden speed inside the range the
// settings screen allows.
func ClampWardenSpeed(speed float64) float64 {
	if speed < MinWardenSpeed {
		return MinWardenSpeed
	}
	if speed > MaxWardenSpeed {
		return MaxWardenSpeed
	}
	return speed
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
