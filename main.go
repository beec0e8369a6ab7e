package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/besuhoff/dark-ritual-go/internal/auth"
	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/db"
	"github.com/besuhoff/dark-ritual-go/internal/handlers"
	"github.com/besuhoff/dark-ritual-go/internal/logger"
	"github.com/besuhoff/dark-ritual-go/internal/server"
)

var (
	host     = flag.String("host", "", "Host to listen on (overrides HOST)")
	port     = flag.String("port", "", "Port to listen on (overrides PORT)")
	certFile = flag.String("cert", "", "TLS certificate file (overrides TLS_CERT)")
	keyFile  = flag.String("key", "", "TLS key file (overrides TLS_KEY)")
	useTLS   = flag.Bool("tls", false, "Enable TLS/HTTPS")
)

// CORS middleware
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Parse frontend domain from config
		frontendDomain := config.AppConfig.FrontendURL
		if idx := strings.Index(frontendDomain, "://"); idx != -1 {
			if pathIdx := strings.Index(frontendDomain[idx+3:], "/"); pathIdx != -1 {
				frontendDomain = frontendDomain[:idx+3+pathIdx]
			}
		}
		w.Header().Set("Access-Control-Allow-Origin", frontendDomain)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func main() {
	flag.Parse()

	logger.Init()
	cfg := config.LoadConfig()

	if *host != "" {
		cfg.Host = *host
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *certFile != "" {
		cfg.TLSCert = *certFile
	}
	if *keyFile != "" {
		cfg.TLSKey = *keyFile
	}
	if *useTLS {
		cfg.UseTLS = true
	}

	var (
		scores      db.ScoreStore
		sessionRepo *db.GameSessionRepository
		userRepo    *db.UserRepository
	)

	if cfg.MongoDBURL != "" {
		if err := db.Connect(cfg.MongoDBURL, cfg.MongoDBDatabase); err != nil {
			logger.Log.WithError(err).Fatal("Failed to connect to MongoDB")
		}
		defer db.Disconnect()

		scores = db.NewLeaderboardRepository()
		sessionRepo = db.NewGameSessionRepository()
		userRepo = db.NewUserRepository()
	} else {
		store, err := db.NewFileScoreStore(cfg.HighScoresFile)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to open high score file")
		}
		scores = store
	}

	// Create game server
	gameServer := server.NewGameServer(scores, sessionRepo, userRepo)

	// Start game loop in background
	go gameServer.Run()

	guestAuth := auth.NewGuestAuthHandler(userRepo)
	sessionHandler := handlers.NewSessionHandler(sessionRepo)
	leaderboardHandler := handlers.NewLeaderboardHandler(scores)

	// Setup HTTP routes
	http.HandleFunc("/ws", gameServer.HandleWebSocket)

	http.HandleFunc("/api/v1/auth/guest", corsMiddleware(guestAuth.HandleGuestLogin))
	http.HandleFunc("/api/v1/levels", corsMiddleware(handlers.HandleGetLevels))
	http.HandleFunc("/api/v1/leaderboard", corsMiddleware(leaderboardHandler.HandleGetLeaderboard))
	http.HandleFunc("/api/v1/leaderboard/me", corsMiddleware(leaderboardHandler.HandleGetPersonalBest))
	http.HandleFunc("/api/v1/sessions", corsMiddleware(sessionHandler.HandleSessions))
	http.HandleFunc("/api/v1/sessions/", corsMiddleware(sessionHandler.HandleSessions))

	// Health check
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      nil, // Uses DefaultServeMux
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if cfg.UseTLS {
			if cfg.TLSCert == "" || cfg.TLSKey == "" {
				logger.Log.Fatal("TLS enabled but certificate or key file not provided. Use -cert and -key flags or TLS_CERT and TLS_KEY environment variables.")
			}
			logger.Log.WithField("addr", addr).Info("Starting game server with TLS")
			if err := httpServer.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey); err != nil && err != http.ErrServerClosed {
				logger.Log.WithError(err).Fatal("ListenAndServeTLS error")
			}
		} else {
			logger.Log.WithField("addr", addr).Info("Starting game server")
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Log.WithError(err).Fatal("ListenAndServe error")
			}
		}
	}()

	scheme := "ws"
	if cfg.UseTLS {
		scheme = "wss"
	}
	logger.Log.WithField("levels", len(cfg.Levels)).Info("Server started successfully")
	logger.Log.Infof("WebSocket (JSON): %s://%s/ws?token=...", scheme, addr)
	logger.Log.Infof("WebSocket (Binary): %s://%s/ws?token=...&protocol=binary", scheme, addr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Log.Info("Received shutdown signal, shutting down gracefully")

	// Shutdown game server first (save sessions, close websockets)
	gameServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("HTTP server shutdown error")
	} else {
		logger.Log.Info("HTTP server shut down successfully")
	}

	logger.Log.Info("Server stopped")
}
