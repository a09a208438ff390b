package match

import (
	"context"
	"log"
	"math/big"
	"time"
)

// SeedSource reads the pair of turn-order seeds recorded on chain for a
// game. It may fail; a failed read abandons the pairing.
type SeedSource interface {
	GetTurnSeeds(ctx context.Context, gameID string) (*big.Int, *big.Int, error)
}

// SessionStarter instantiates a session for a resolved pair. The first
// mover receives mark X.
type SessionStarter interface {
	StartSession(gameID, betAmount string, firstMover, secondMover int64)
}

const seedTimeout = 30 * time.Second

// Listen drains the engine's match channel. Each pair resolves its turn
// order independently so one slow chain read never stalls the others.
func Listen(engine *Engine, seeds SeedSource, sessions SessionStarter) {
	for match := range engine.MatchChannel {
		go ResolvePair(match, seeds, sessions)
	}
}

// ResolvePair asks the randomness source for the game's seeds and hands
// the pair to the session coordinator. The strictly greater seed moves
// first; on a tie the second request's owner moves first. A seed read
// failure aborts this pairing only; the pair is not re-queued.
func ResolvePair(match Match, seeds SeedSource, sessions SessionStarter) {
	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	seedA, seedB, err := seeds.GetTurnSeeds(ctx, match.First.GameID)
	if err != nil {
		log.Printf("[MATCH] Failed to retrieve random words for game %s: %v", match.First.GameID, err)
		return
	}

	log.Printf("[MATCH] Random words for game %s: [%s, %s]", match.First.GameID, seedA, seedB)

	firstMover, secondMover := match.Second.ConnID, match.First.ConnID
	if seedA.Cmp(seedB) > 0 {
		firstMover, secondMover = match.First.ConnID, match.Second.ConnID
	}

	sessions.StartSession(match.First.GameID, match.First.BetAmount, firstMover, secondMover)
}
