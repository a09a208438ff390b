package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sbcapp/tictactoe-chain/backend/internal/domain"
	"github.com/sbcapp/tictactoe-chain/backend/internal/service/game"
	"github.com/sbcapp/tictactoe-chain/backend/internal/service/match"
)

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager    *ConnectionManager
	Matchmaking    *match.Engine
	SessionManager *game.Manager
	Upgrader       websocket.Upgrader
}

func NewHandler(cm *ConnectionManager, engine *match.Engine, sm *game.Manager) *Handler {
	return &Handler{
		ConnManager:    cm,
		Matchmaking:    engine,
		SessionManager: sm,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket is the HTTP handler that upgrades the connection
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	h.handleConnection(conn)
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(conn *websocket.Conn) {
	connID := h.ConnManager.Register(conn)
	log.Printf("[WS] Client connected: conn %d", connID)

	// Set read deadline to detect stale connections
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))

	// Keep-alive pinger
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}()

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Cleanup on exit: drop any queued request, forfeit any active
	// session, then purge the registry entry unconditionally.
	defer func() {
		log.Printf("[WS] Client disconnected: conn %d", connID)
		h.Matchmaking.Remove(connID)
		h.SessionManager.HandleDisconnect(connID)
		h.ConnManager.Unregister(connID)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Conn %d closed unexpectedly: %v", connID, err)
			}
			break
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message format from conn %d: %v", connID, err)
			continue
		}

		h.processMessage(connID, msg)
	}
}

// processMessage routes specific actions
func (h *Handler) processMessage(connID int64, msg domain.ClientMessage) {
	switch msg.Method {
	case "connect":
		h.ConnManager.AssociateAccount(connID, msg.Account)
		log.Printf("[WS] Wallet connected: conn %d - account %s", connID, msg.Account)

	case "start":
		err := h.Matchmaking.Enqueue(match.Request{
			ConnID:    connID,
			GameID:    msg.GameID,
			BetAmount: msg.BetAmount,
		})
		if err != nil {
			log.Printf("[WS] Conn %d could not start game %s: %v", connID, msg.GameID, err)
			return
		}
		// Announce the open game so other clients can list and join it
		h.ConnManager.Broadcast(domain.ServerMessage{
			Method:    "gameCreated",
			GameID:    msg.GameID,
			Player1:   msg.Account,
			BetAmount: msg.BetAmount,
		})

	case "join":
		if err := h.Matchmaking.Enqueue(match.Request{
			ConnID:    connID,
			GameID:    msg.GameID,
			BetAmount: msg.BetAmount,
		}); err != nil {
			log.Printf("[WS] Conn %d could not join game %s: %v", connID, msg.GameID, err)
		}

	case "move":
		h.SessionManager.ApplyMove(connID, msg.Symbol, msg.Field, msg.GameID)
	}
}
