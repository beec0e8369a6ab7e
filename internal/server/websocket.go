package server

import (
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/besuhoff/dark-ritual-go/internal/config"
	"github.com/besuhoff/dark-ritual-go/internal/protocol"
	"github.com/besuhoff/dark-ritual-go/internal/types"
)

// WebsocketClient represents a connected client
type WebsocketClient struct {
	ID        string
	PlayerID  string
	Username  string
	SessionID string // saved game ID, may be empty
	Conn      *websocket.Conn
	Send      chan []byte
	Server    *GameServer
	UseBinary bool // Whether client prefers binary protocol
}

// Client methods
func (c *WebsocketClient) readPump() {
	defer func() {
		select {
		case c.Server.unregister <- c:
		case <-c.Server.shutdown:
		}
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		messageType, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Server.log.WithError(err).WithField("client", c.ID).Warn("WebSocket error")
			}
			break
		}

		msg, err := protocol.Decode(data, messageType == websocket.BinaryMessage)
		if err != nil {
			c.Server.log.WithError(err).WithField("client", c.ID).Debug("Dropping malformed message")
			c.SendError("malformed message")
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *WebsocketClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Send as binary or text based on client preference
			msgType := websocket.TextMessage
			if c.UseBinary {
				msgType = websocket.BinaryMessage
			}

			if err := c.Conn.WriteMessage(msgType, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WebsocketClient) handleMessage(msg *structpb.Struct) {
	session, exists := c.Server.sessionForClient(c.ID)
	if !exists {
		c.Server.log.WithField("client", c.ID).Warn("Session not found for client")
		return
	}

	switch protocol.MessageTypeOf(msg) {
	case types.MsgTypeInput:
		session.SetInput(protocol.FromProtoInput(msg))

	case types.MsgTypeNextLevel:
		engine := session.Engine
		if engine.Phase() != types.PhaseVictory {
			c.SendError("level not complete")
			return
		}
		next := engine.LevelNumber() + 1
		level, err := config.AppConfig.Level(next)
		if err != nil {
			c.SendError("no more levels")
			return
		}
		engine.StartLevel(next, level)
		c.Server.sendLevelStart(session)

	case types.MsgTypeRestart:
		session.Engine.Restart()
		c.Server.sendLevelStart(session)

	default:
		c.SendError("unknown message type")
	}
}

// Enqueue queues a message, dropping it when the client is too slow
func (c *WebsocketClient) Enqueue(msg *structpb.Struct) {
	data, err := protocol.Encode(msg, c.UseBinary)
	if err != nil {
		c.Server.log.WithError(err).Error("Error marshaling message")
		return
	}
	select {
	case c.Send <- data:
	default:
		// Buffer full
	}
}

// SendMessage queues a message of msgType with payload merged in
func (c *WebsocketClient) SendMessage(msgType types.MessageType, payload map[string]interface{}) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		c.Server.log.WithError(err).Error("Error building message")
		return
	}
	c.Enqueue(msg)
}

func (c *WebsocketClient) SendError(text string) {
	c.SendMessage(types.MsgTypeError, map[string]interface{}{"error": text})
}
