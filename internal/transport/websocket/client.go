package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sbcapp/tictactoe-chain/backend/internal/domain"
)

// ConnectionManager handles active WebSocket connections thread-safely.
// Connection identifiers are process-local and monotonically assigned.
type ConnectionManager struct {
	connections map[int64]*websocket.Conn
	accounts    map[int64]string

	// writeMu ensures only one goroutine writes to a specific socket at a time.
	// This is CRITICAL because conn.WriteJSON is not thread-safe.
	writeMu map[int64]*sync.Mutex

	nextID int64
	mu     sync.RWMutex // Protects the maps themselves
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[int64]*websocket.Conn),
		accounts:    make(map[int64]string),
		writeMu:     make(map[int64]*sync.Mutex),
	}
}

// Register stores a new connection, assigns it a fresh identifier and
// initializes its write lock.
func (cm *ConnectionManager) Register(conn *websocket.Conn) int64 {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.nextID++
	connID := cm.nextID

	cm.connections[connID] = conn
	cm.writeMu[connID] = &sync.Mutex{}
	return connID
}

// AssociateAccount binds a wallet account to a connection. Last write
// wins; a stale identifier is ignored since the disconnect path already
// purged it.
func (cm *ConnectionManager) AssociateAccount(connID int64, account string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.connections[connID]; !exists {
		return
	}
	cm.accounts[connID] = account
}

// Account returns the wallet account bound to a connection, if any.
func (cm *ConnectionManager) Account(connID int64) (string, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	account, exists := cm.accounts[connID]
	return account, exists
}

// Unregister removes a connection and all its per-connection state.
// Idempotent.
func (cm *ConnectionManager) Unregister(connID int64) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn, exists := cm.connections[connID]; exists {
		conn.Close()
		delete(cm.connections, connID)
		delete(cm.accounts, connID)
		delete(cm.writeMu, connID)
	}
}

// Send delivers a JSON message to a specific connection. Best effort:
// an unknown identifier or a closed socket drops the message, cleanup
// belongs to the disconnect path.
func (cm *ConnectionManager) Send(connID int64, message domain.ServerMessage) error {
	// 1. Acquire global read lock to find the socket & its mutex
	cm.mu.RLock()
	conn, exists := cm.connections[connID]
	mu, muExists := cm.writeMu[connID]
	cm.mu.RUnlock()

	if !exists || !muExists {
		return nil // Connection gone, ignore
	}

	// 2. Acquire the PER-CONNECTION write lock
	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(message)
}

// Broadcast sends a message to all connected parties.
func (cm *ConnectionManager) Broadcast(message domain.ServerMessage) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	for connID := range cm.connections {
		// We launch goroutines so one slow socket doesn't block the broadcast
		go func(id int64) {
			cm.Send(id, message)
		}(connID)
	}
}
