package game

import (
	"time"

	"github.com/sbcapp/tictactoe-chain/backend/internal/domain"
)

// Session is the authoritative state of one paired game: the board,
// whose mark moves next and which connection holds which mark. Only the
// Manager mutates it.
type Session struct {
	GameID    string
	BetAmount string
	Board     domain.Board
	Turn      domain.Mark
	Players   map[domain.Mark]int64 // mark -> connection ID
	CreatedAt time.Time
}

func newSession(gameID, betAmount string, xConn, oConn int64) *Session {
	return &Session{
		GameID:    gameID,
		BetAmount: betAmount,
		Board:     domain.NewBoard(),
		Turn:      domain.MarkX,
		Players: map[domain.Mark]int64{
			domain.MarkX: xConn,
			domain.MarkO: oConn,
		},
		CreatedAt: time.Now(),
	}
}

// MarkOf returns the mark assigned to a participant connection.
func (s *Session) MarkOf(connID int64) (domain.Mark, bool) {
	for mark, id := range s.Players {
		if id == connID {
			return mark, true
		}
	}
	return domain.Empty, false
}

// OpponentOf returns the other participant's connection ID.
func (s *Session) OpponentOf(connID int64) (int64, bool) {
	for _, id := range s.Players {
		if id != connID {
			return id, true
		}
	}
	return 0, false
}
