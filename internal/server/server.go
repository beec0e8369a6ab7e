package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/besuhoff/dark-ritual-go/internal/auth"
	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/db"
	"github.com/besuhoff/dark-ritual-go/internal/game"
	"github.com/besuhoff/dark-ritual-go/internal/logger"
	"github.com/besuhoff/dark-ritual-go/internal/protocol"
	"github.com/besuhoff/dark-ritual-go/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

var errForbidden = errors.New("session belongs to another player")

// Session is one connected player's run
type Session struct {
	ID     string // saved game ID, empty when saves are disabled
	Engine *game.Engine
	Client *WebsocketClient

	mu           sync.Mutex
	input        types.InputPayload
	doc          db.GameSession
	lastSaveTime time.Time
}

// SetInput stores the latest client input. Sound and dismiss are one-shot
// and stay set until a tick consumes them.
func (s *Session) SetInput(in types.InputPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in.EmitSound = in.EmitSound || s.input.EmitSound
	in.Dismiss = in.Dismiss || s.input.Dismiss
	s.input = in
}

func (s *Session) takeInput() types.InputPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.input
	s.input.EmitSound = false
	s.input.Dismiss = false
	return in
}

// GameServer runs every session on one tick loop
type GameServer struct {
	clients    map[string]*WebsocketClient
	sessions   map[string]*Session // clientID -> Session
	register   chan *Session
	unregister chan *WebsocketClient
	shutdown   chan struct{}
	done       chan struct{}
	mu         sync.RWMutex

	scores      db.ScoreStore
	sessionRepo *db.GameSessionRepository // nil without MongoDB
	userRepo    *db.UserRepository        // nil without MongoDB
	saves       sync.WaitGroup
	log         *logrus.Entry
}

// NewGameServer creates a new game server. The repositories may be nil.
func NewGameServer(scores db.ScoreStore, sessionRepo *db.GameSessionRepository, userRepo *db.UserRepository) *GameServer {
	return &GameServer{
		clients:     make(map[string]*WebsocketClient),
		sessions:    make(map[string]*Session),
		register:    make(chan *Session),
		unregister:  make(chan *WebsocketClient),
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		scores:      scores,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		log:         logger.Log.WithField("component", "server"),
	}
}

// Run starts the game server loop
func (gs *GameServer) Run() {
	defer close(gs.done)

	ticker := time.NewTicker(config.GameLoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-gs.shutdown:
			gs.log.Info("Game server loop shutting down")
			return

		case session := <-gs.register:
			gs.registerSession(session)

		case client := <-gs.unregister:
			gs.unregisterClient(client)

		case <-ticker.C:
			gs.tick()
		}
	}
}

func (gs *GameServer) tick() {
	gs.mu.RLock()
	sessions := make([]*Session, 0, len(gs.sessions))
	for _, session := range gs.sessions {
		sessions = append(sessions, session)
	}
	gs.mu.RUnlock()

	for _, session := range sessions {
		gs.updateSession(session)
	}
}

func (gs *GameServer) updateSession(session *Session) {
	engine := session.Engine
	prevPhase := engine.Phase()

	if err := engine.Update(session.takeInput()); err != nil {
		gs.log.WithError(err).WithField("session_id", session.ID).Warn("Tick rejected")
	}

	events := engine.DrainEvents()
	phase := engine.Phase()

	if phase == types.PhasePlaying || len(events) > 0 || phase != prevPhase {
		snap := engine.Snapshot()
		if msg, err := protocol.NewGameStateMessage(&snap, events); err == nil {
			session.Client.Enqueue(msg)
		} else {
			gs.log.WithError(err).Error("Failed to build game state")
		}
	}

	if phase != prevPhase {
		switch phase {
		case types.PhaseVictory:
			gs.completeLevel(session)
		case types.PhaseGameOver:
			player := engine.GetPlayer()
			session.Client.SendMessage(types.MsgTypeGameOver, map[string]interface{}{
				"level": engine.LevelNumber(),
				"score": player.Score,
			})
			gs.saveSession(session)
		}
	}

	if time.Since(session.lastSaveTime) > config.SessionSaveInterval {
		gs.saveSession(session)
	}
}

func (gs *GameServer) completeLevel(session *Session) {
	engine := session.Engine
	player := engine.GetPlayer()
	levelNumber := engine.LevelNumber()
	level := engine.Level()

	nextLevel := 0
	if _, err := config.AppConfig.Level(levelNumber + 1); err == nil {
		nextLevel = levelNumber + 1
	}

	session.Client.SendMessage(types.MsgTypeLevelComplete, map[string]interface{}{
		"level":     levelNumber,
		"levelName": level.Name,
		"score":     player.Score,
		"nextLevel": nextLevel,
	})

	gs.log.WithFields(logrus.Fields{
		"player": player.Username,
		"level":  levelNumber,
		"score":  player.Score,
	}).Debug("Recording high score")

	entry := &db.LeaderboardEntry{
		PlayerID:  player.ID,
		Username:  player.Username,
		Level:     levelNumber,
		LevelName: level.Name,
		Score:     player.Score,
	}
	gs.saves.Add(1)
	go func() {
		defer gs.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := gs.scores.RecordScore(ctx, entry); err != nil {
			gs.log.WithError(err).WithField("player", entry.Username).Error("Failed to record high score")
		}
	}()

	gs.saveSession(session)
}

// saveSession snapshots the engine on the loop goroutine and writes the
// document in the background.
func (gs *GameServer) saveSession(session *Session) {
	session.lastSaveTime = time.Now()
	if gs.sessionRepo == nil || session.ID == "" {
		return
	}

	doc := session.doc
	session.Engine.SaveToSession(&doc)

	gs.saves.Add(1)
	go func() {
		defer gs.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := gs.sessionRepo.Update(ctx, &doc); err != nil {
			gs.log.WithError(err).WithField("session_id", session.ID).Error("Failed to save session")
			return
		}
		gs.log.WithField("session_id", session.ID).Debug("Session saved")
	}()
}

// Shutdown gracefully shuts down the server
func (gs *GameServer) Shutdown() {
	gs.log.Info("Starting graceful shutdown")

	close(gs.shutdown)
	<-gs.done

	gs.mu.Lock()
	gs.log.WithField("clients", len(gs.clients)).Info("Closing client connections")
	for id, client := range gs.clients {
		if client.Conn != nil {
			client.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Server shutting down"),
				time.Now().Add(time.Second))
			client.Conn.Close()
		}
		delete(gs.clients, id)
	}

	for id, session := range gs.sessions {
		gs.saveSession(session)
		delete(gs.sessions, id)
	}
	gs.mu.Unlock()

	gs.saves.Wait()
	gs.log.Info("Graceful shutdown complete")
}

func (gs *GameServer) registerSession(session *Session) {
	client := session.Client

	gs.mu.Lock()
	gs.clients[client.ID] = client
	gs.sessions[client.ID] = session
	gs.mu.Unlock()

	session.lastSaveTime = time.Now()
	gs.sendLevelStart(session)

	snap := session.Engine.Snapshot()
	if msg, err := protocol.NewGameStateMessage(&snap, nil); err == nil {
		client.Enqueue(msg)
	}

	if gs.userRepo != nil {
		gs.saves.Add(1)
		go func() {
			defer gs.saves.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := gs.userRepo.Touch(ctx, client.PlayerID, session.ID); err != nil {
				gs.log.WithError(err).Warn("Failed to update user")
			}
		}()
	}

	gs.log.WithFields(logrus.Fields{
		"client":     client.ID,
		"player":     client.Username,
		"session_id": session.ID,
		"level":      session.Engine.LevelNumber(),
	}).Info("Player joined")
}

func (gs *GameServer) sendLevelStart(session *Session) {
	level := session.Engine.Level()
	session.Client.SendMessage(types.MsgTypeLevelStart, map[string]interface{}{
		"level":               session.Engine.LevelNumber(),
		"name":                level.Name,
		"description":         level.Description,
		"ritualItemsRequired": level.RitualItemsRequired,
		"sessionId":           session.ID,
	})
}

func (gs *GameServer) unregisterClient(client *WebsocketClient) {
	gs.mu.Lock()
	_, exists := gs.clients[client.ID]
	session := gs.sessions[client.ID]
	delete(gs.clients, client.ID)
	delete(gs.sessions, client.ID)
	gs.mu.Unlock()

	if !exists {
		return
	}

	if session != nil {
		gs.saveSession(session)
	}
	close(client.Send)

	gs.log.WithFields(logrus.Fields{
		"client":     client.ID,
		"player":     client.Username,
		"session_id": client.SessionID,
	}).Info("Player left")
}

func (gs *GameServer) sessionForClient(clientID string) (*Session, bool) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	session, ok := gs.sessions[clientID]
	return session, ok
}

// openSession builds the engine for a new connection, resuming the saved
// game sessionID when one is given.
func (gs *GameServer) openSession(ctx context.Context, claims *auth.Claims, levelNumber int, sessionID string) (*Session, error) {
	if sessionID != "" {
		if gs.sessionRepo == nil {
			return nil, db.ErrNotConfigured
		}
		objID, err := primitive.ObjectIDFromHex(sessionID)
		if err != nil {
			return nil, fmt.Errorf("invalid session ID %q: %w", sessionID, err)
		}
		doc, err := gs.sessionRepo.FindByID(ctx, objID)
		if err != nil {
			return nil, err
		}
		if doc.HostID != claims.PlayerID {
			return nil, errForbidden
		}
		level, err := config.AppConfig.Level(doc.Level)
		if err != nil {
			return nil, err
		}

		engine := game.NewEngine(claims.PlayerID, claims.Username, doc.Level, level,
			game.WithBaseWardenSpeed(config.AppConfig.BaseWardenSpeed))
		if err := engine.LoadFromSession(doc, level); err != nil {
			return nil, err
		}
		return &Session{ID: sessionID, Engine: engine, doc: *doc}, nil
	}

	level, err := config.AppConfig.Level(levelNumber)
	if err != nil {
		return nil, err
	}
	engine := game.NewEngine(claims.PlayerID, claims.Username, levelNumber, level,
		game.WithBaseWardenSpeed(config.AppConfig.BaseWardenSpeed))
	session := &Session{Engine: engine}

	if gs.sessionRepo != nil {
		doc := db.GameSession{
			Name:   fmt.Sprintf("%s - %s", claims.Username, level.Name),
			HostID: claims.PlayerID,
		}
		engine.SaveToSession(&doc)
		if err := gs.sessionRepo.Create(ctx, &doc); err != nil {
			return nil, fmt.Errorf("creating session: %w", err)
		}
		session.ID = doc.ID.Hex()
		session.doc = doc
	}
	return session, nil
}

// HandleWebSocket handles WebSocket connections
func (gs *GameServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.FromRequest(r)
	if err != nil {
		gs.log.WithError(err).Debug("Token validation error")
		http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
		return
	}

	levelNumber := 1
	if levelStr := r.URL.Query().Get("level"); levelStr != "" {
		if levelNumber, err = strconv.Atoi(levelStr); err != nil {
			http.Error(w, "Invalid level", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	session, err := gs.openSession(ctx, claims, levelNumber, r.URL.Query().Get("sessionId"))
	switch {
	case err == nil:
	case errors.Is(err, db.ErrNotConfigured):
		http.Error(w, "Saved games are unavailable", http.StatusServiceUnavailable)
		return
	case errors.Is(err, errForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	case errors.Is(err, config.ErrUnknownLevel):
		http.Error(w, "Invalid level", http.StatusBadRequest)
		return
	default:
		gs.log.WithError(err).Error("Failed to open session")
		http.Error(w, "Failed to open session", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		gs.log.WithError(err).Error("WebSocket upgrade error")
		return
	}

	client := &WebsocketClient{
		ID:        uuid.New().String(),
		PlayerID:  claims.PlayerID,
		Username:  claims.Username,
		SessionID: session.ID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		Server:    gs,
		UseBinary: r.URL.Query().Get("protocol") == "binary",
	}
	session.Client = client

	gs.log.WithFields(logrus.Fields{
		"client":     client.ID,
		"player":     client.Username,
		"session_id": client.SessionID,
		"binary":     client.UseBinary,
	}).Info("New client connected")

	select {
	case gs.register <- session:
	case <-gs.shutdown:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
