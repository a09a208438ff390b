package match

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSeeds struct {
	seedA, seedB *big.Int
	err          error
	askedGameID  string
}

func (f *fakeSeeds) GetTurnSeeds(ctx context.Context, gameID string) (*big.Int, *big.Int, error) {
	f.askedGameID = gameID
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.seedA, f.seedB, nil
}

type fakeStarter struct {
	started     bool
	gameID      string
	betAmount   string
	firstMover  int64
	secondMover int64
}

func (f *fakeStarter) StartSession(gameID, betAmount string, firstMover, secondMover int64) {
	f.started = true
	f.gameID = gameID
	f.betAmount = betAmount
	f.firstMover = firstMover
	f.secondMover = secondMover
}

func testMatch() Match {
	return Match{
		First:  Request{ConnID: 1, GameID: "42", BetAmount: "1"},
		Second: Request{ConnID: 2, GameID: "42", BetAmount: "1"},
	}
}

func TestResolvePair_GreaterSeedMovesFirst(t *testing.T) {
	seeds := &fakeSeeds{seedA: big.NewInt(7), seedB: big.NewInt(3)}
	starter := &fakeStarter{}

	ResolvePair(testMatch(), seeds, starter)

	require.True(t, starter.started)
	assert.Equal(t, "42", seeds.askedGameID, "seeds are keyed by the shared game identifier")
	assert.Equal(t, "42", starter.gameID)
	assert.Equal(t, "1", starter.betAmount)
	assert.Equal(t, int64(1), starter.firstMover, "the greater seed's owner gets X")
	assert.Equal(t, int64(2), starter.secondMover)
}

func TestResolvePair_LesserSeedMovesSecond(t *testing.T) {
	seeds := &fakeSeeds{seedA: big.NewInt(3), seedB: big.NewInt(7)}
	starter := &fakeStarter{}

	ResolvePair(testMatch(), seeds, starter)

	require.True(t, starter.started)
	assert.Equal(t, int64(2), starter.firstMover)
	assert.Equal(t, int64(1), starter.secondMover)
}

func TestResolvePair_TieFavorsSecondRequest(t *testing.T) {
	seeds := &fakeSeeds{seedA: big.NewInt(5), seedB: big.NewInt(5)}
	starter := &fakeStarter{}

	ResolvePair(testMatch(), seeds, starter)

	require.True(t, starter.started)
	assert.Equal(t, int64(2), starter.firstMover)
}

func TestResolvePair_SeedFailureAbandonsPairing(t *testing.T) {
	seeds := &fakeSeeds{err: errors.New("rpc timeout")}
	starter := &fakeStarter{}

	ResolvePair(testMatch(), seeds, starter)

	assert.False(t, starter.started, "a failed seed read must not create a session")
}
