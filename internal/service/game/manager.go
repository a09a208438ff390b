package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sbcapp/tictactoe-chain/backend/internal/domain"
)

// ConnectionManagerInterface defines the interface for delivering messages
type ConnectionManagerInterface interface {
	Send(connID int64, message domain.ServerMessage) error
	Broadcast(message domain.ServerMessage)
	Account(connID int64) (string, bool)
}

// ResultRecorder persists terminal game results. Calls are best effort:
// the manager never blocks session progression on them.
type ResultRecorder interface {
	RecordResult(ctx context.Context, gameID, account string) error
}

// Manager owns every active session. All mutation happens under one
// coarse lock; the recorder is only ever invoked from goroutines that
// touch no session state.
type Manager struct {
	sessions   map[string]*Session // gameID -> session
	connToGame map[int64]string    // connID -> gameID (doubles as the active set)
	conns      ConnectionManagerInterface
	recorder   ResultRecorder
	mu         sync.Mutex
}

func NewManager(conns ConnectionManagerInterface, recorder ResultRecorder) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		connToGame: make(map[int64]string),
		conns:      conns,
		recorder:   recorder,
	}
}

// InSession reports whether a connection currently participates in an
// active session. The pairing engine uses this to reject duplicate
// start/join requests.
func (m *Manager) InSession(connID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.connToGame[connID]
	return exists
}

// StartSession instantiates a session for a matched pair. The first
// mover is assigned X and both participants receive the pairing
// notification; the board starts empty with X to move. A pair whose
// game identifier already has a live session, or whose participants
// already play elsewhere, is refused: the game identifier is the
// session key and a connection belongs to at most one session.
func (m *Manager) StartSession(gameID, betAmount string, firstMover, secondMover int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[gameID]; exists {
		log.Printf("[SESSION] Game %s already has an active session, dropping pairing of conn %d and conn %d",
			gameID, firstMover, secondMover)
		return
	}
	for _, connID := range []int64{firstMover, secondMover} {
		if existing, busy := m.connToGame[connID]; busy {
			log.Printf("[SESSION] Conn %d already plays game %s, dropping pairing for game %s",
				connID, existing, gameID)
			return
		}
	}

	session := newSession(gameID, betAmount, firstMover, secondMover)
	m.sessions[gameID] = session
	m.connToGame[firstMover] = gameID
	m.connToGame[secondMover] = gameID

	m.conns.Send(firstMover, domain.ServerMessage{
		Method:    "join",
		Symbol:    domain.MarkX,
		Turn:      domain.MarkX,
		GameID:    gameID,
		BetAmount: betAmount,
	})
	m.conns.Send(secondMover, domain.ServerMessage{
		Method:    "join",
		Symbol:    domain.MarkO,
		Turn:      domain.MarkX,
		GameID:    gameID,
		BetAmount: betAmount,
	})

	log.Printf("[SESSION] Game paired: conn %d (X) vs conn %d (O) for game %s with bet amount %s",
		firstMover, secondMover, gameID, betAmount)
}

// ApplyMove processes a move from a participant. Moves from connections
// outside any session, out of turn, or carrying a malformed board are
// silently dropped; no feedback is sent.
func (m *Manager) ApplyMove(connID int64, symbol domain.Mark, field domain.Board, gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	currentGameID, exists := m.connToGame[connID]
	if !exists {
		return
	}
	session, ok := m.sessions[currentGameID]
	if !ok {
		// stale mapping, the session is already gone
		delete(m.connToGame, connID)
		return
	}
	if gameID != session.GameID {
		log.Printf("[SESSION] Ignoring move from conn %d for game %s, conn plays game %s", connID, gameID, session.GameID)
		return
	}

	// The claimed symbol is not trusted; the mark assigned at pairing
	// decides whose turn it is.
	mark, isPlayer := session.MarkOf(connID)
	if !isPlayer || mark != session.Turn || symbol != mark {
		log.Printf("[SESSION] Ignoring out-of-turn move from conn %d in game %s", connID, session.GameID)
		return
	}
	if !field.IsValid() {
		log.Printf("[SESSION] Ignoring malformed board from conn %d in game %s", connID, session.GameID)
		return
	}

	// The submitted board replaces the session board wholesale. Only
	// turn identity is checked, not move legality.
	session.Board = append(domain.Board(nil), field...)

	outcome, winner := domain.Evaluate(session.Board)
	switch outcome {
	case domain.OutcomeWin:
		winnerAccount, _ := m.conns.Account(session.Players[winner])
		m.finishLocked(session, winnerAccount, string(winner)+" wins", session.Board)
		log.Printf("[SESSION] Game result: %s wins game %s", winner, session.GameID)

	case domain.OutcomeDraw:
		m.finishLocked(session, domain.DrawAccount, "Draw! Game over.", session.Board)
		log.Printf("[SESSION] Game draw: game %s ended with a draw", session.GameID)

	default:
		session.Turn = domain.Opponent(mark)
		update := domain.ServerMessage{
			Method: "update",
			Turn:   session.Turn,
			Field:  session.Board,
			GameID: session.GameID,
		}
		for _, id := range session.Players {
			m.conns.Send(id, update)
		}
	}
}

// HandleDisconnect forfeits any session owned by the lost connection.
// The opponent, if still tracked, is declared the winner. Registry
// cleanup is the caller's responsibility and happens regardless.
func (m *Manager) HandleDisconnect(connID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gameID, exists := m.connToGame[connID]
	if !exists {
		return
	}
	session, ok := m.sessions[gameID]
	if !ok {
		delete(m.connToGame, connID)
		return
	}
	if _, isPlayer := session.MarkOf(connID); !isPlayer {
		// stale mapping: never forfeit a session this conn is not part of
		delete(m.connToGame, connID)
		return
	}

	opponentID, tracked := session.OpponentOf(connID)
	if !tracked {
		m.removeLocked(session)
		return
	}

	opponentAccount, _ := m.conns.Account(opponentID)
	m.persist(session.GameID, opponentAccount)

	m.conns.Send(opponentID, domain.ServerMessage{
		Method:  "result",
		Message: "Opponent disconnected. You win!",
		Field:   domain.NewBoard(),
		GameID:  session.GameID,
	})
	m.removeLocked(session)

	log.Printf("[SESSION] Game result: opponent disconnected, conn %d wins game %s", opponentID, gameID)
}

// LiveGame describes an in-progress session for listing endpoints.
type LiveGame struct {
	GameID    string
	BetAmount string
	StartedAt time.Time
}

// LiveGames returns a snapshot of all active sessions.
func (m *Manager) LiveGames() []LiveGame {
	m.mu.Lock()
	defer m.mu.Unlock()

	games := make([]LiveGame, 0, len(m.sessions))
	for _, s := range m.sessions {
		games = append(games, LiveGame{
			GameID:    s.GameID,
			BetAmount: s.BetAmount,
			StartedAt: s.CreatedAt,
		})
	}
	return games
}

// finishLocked runs the terminal path: persist the result, notify both
// participants, tear the session down and announce the ending globally.
// The persistence write never blocks or aborts the in-memory path.
func (m *Manager) finishLocked(session *Session, account, message string, field domain.Board) {
	m.persist(session.GameID, account)

	result := domain.ServerMessage{
		Method:  "result",
		Message: message,
		Field:   field,
		GameID:  session.GameID,
	}
	for _, id := range session.Players {
		m.conns.Send(id, result)
	}

	m.removeLocked(session)

	// so spectator UIs can prune their listings
	m.conns.Broadcast(domain.ServerMessage{
		Method: "gameEnded",
		GameID: session.GameID,
	})
}

func (m *Manager) removeLocked(session *Session) {
	for _, id := range session.Players {
		delete(m.connToGame, id)
	}
	delete(m.sessions, session.GameID)
}

// persist submits a result write and forgets it. Failures are logged
// only; the in-memory game state is authoritative.
func (m *Manager) persist(gameID, account string) {
	if account == "" {
		log.Printf("[SESSION] No account to persist for game %s, skipping result write", gameID)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.recorder.RecordResult(ctx, gameID, account); err != nil {
			log.Printf("[SESSION] Failed to save result for game %s: %v", gameID, err)
		}
	}()
}
