package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbcapp/tictactoe-chain/backend/internal/domain"
)

type fakeConns struct {
	mu         sync.Mutex
	sent       map[int64][]domain.ServerMessage
	broadcasts []domain.ServerMessage
	accounts   map[int64]string
}

func newFakeConns(accounts map[int64]string) *fakeConns {
	if accounts == nil {
		accounts = map[int64]string{}
	}
	return &fakeConns{sent: make(map[int64][]domain.ServerMessage), accounts: accounts}
}

func (f *fakeConns) Send(connID int64, message domain.ServerMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[connID] = append(f.sent[connID], message)
	return nil
}

func (f *fakeConns) Broadcast(message domain.ServerMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, message)
}

func (f *fakeConns) Account(connID int64) (string, bool) {
	account, ok := f.accounts[connID]
	return account, ok
}

func (f *fakeConns) sentTo(connID int64) []domain.ServerMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ServerMessage(nil), f.sent[connID]...)
}

func (f *fakeConns) lastSentTo(t *testing.T, connID int64) domain.ServerMessage {
	t.Helper()
	msgs := f.sentTo(connID)
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func (f *fakeConns) broadcastMethods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	methods := make([]string, 0, len(f.broadcasts))
	for _, b := range f.broadcasts {
		methods = append(methods, b.Method)
	}
	return methods
}

type recordedResult struct {
	gameID  string
	account string
}

type fakeRecorder struct {
	calls chan recordedResult
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{calls: make(chan recordedResult, 8)}
}

func (f *fakeRecorder) RecordResult(ctx context.Context, gameID, account string) error {
	f.calls <- recordedResult{gameID: gameID, account: account}
	return nil
}

func (f *fakeRecorder) waitForResult(t *testing.T) recordedResult {
	t.Helper()
	select {
	case call := <-f.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("expected a persisted result")
		return recordedResult{}
	}
}

func (f *fakeRecorder) assertNoResult(t *testing.T) {
	t.Helper()
	select {
	case call := <-f.calls:
		t.Fatalf("unexpected persisted result: %+v", call)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestManager(accounts map[int64]string) (*Manager, *fakeConns, *fakeRecorder) {
	conns := newFakeConns(accounts)
	recorder := newFakeRecorder()
	return NewManager(conns, recorder), conns, recorder
}

func TestManager_StartSessionNotifiesBothPlayers(t *testing.T) {
	m, conns, _ := newTestManager(nil)

	m.StartSession("42", "1", 1, 2)

	first := conns.lastSentTo(t, 1)
	assert.Equal(t, "join", first.Method)
	assert.Equal(t, domain.MarkX, first.Symbol)
	assert.Equal(t, domain.MarkX, first.Turn)
	assert.Equal(t, "42", first.GameID)
	assert.Equal(t, "1", first.BetAmount)

	second := conns.lastSentTo(t, 2)
	assert.Equal(t, "join", second.Method)
	assert.Equal(t, domain.MarkO, second.Symbol)
	assert.Equal(t, domain.MarkX, second.Turn, "X always opens")

	assert.True(t, m.InSession(1))
	assert.True(t, m.InSession(2))
}

func TestManager_StartSessionRefusesDuplicateGameID(t *testing.T) {
	m, conns, _ := newTestManager(map[int64]string{1: "0xaaa", 2: "0xbbb"})
	m.StartSession("42", "1", 1, 2)
	m.StartSession("42", "1", 3, 4)

	assert.Empty(t, conns.sentTo(3), "second pairing for the same game is dropped")
	assert.Empty(t, conns.sentTo(4))
	assert.False(t, m.InSession(3))
	assert.False(t, m.InSession(4))

	// the original session is untouched and forfeits to its own opponent
	m.HandleDisconnect(1)
	msg := conns.lastSentTo(t, 2)
	assert.Equal(t, "result", msg.Method)
	assert.Equal(t, "Opponent disconnected. You win!", msg.Message)

	// and the second disconnect finds nothing left to forfeit
	before := len(conns.sentTo(1))
	m.HandleDisconnect(2)
	assert.Len(t, conns.sentTo(1), before)
	assert.False(t, m.InSession(2))
}

func TestManager_StartSessionRefusesBusyParticipant(t *testing.T) {
	m, conns, _ := newTestManager(nil)
	m.StartSession("42", "1", 1, 2)
	joins := len(conns.sentTo(2))

	m.StartSession("43", "1", 2, 3)

	assert.Len(t, conns.sentTo(2), joins, "conn 2 stays in its first session")
	assert.Empty(t, conns.sentTo(3))
	assert.False(t, m.InSession(3))
	require.Len(t, m.LiveGames(), 1)
	assert.Equal(t, "42", m.LiveGames()[0].GameID)
}

func TestManager_ApplyMoveBroadcastsUpdate(t *testing.T) {
	m, conns, _ := newTestManager(nil)
	m.StartSession("42", "1", 1, 2)

	board := domain.Board{"X", "", "", "", "", "", "", "", ""}
	m.ApplyMove(1, domain.MarkX, board, "42")

	for _, connID := range []int64{1, 2} {
		msg := conns.lastSentTo(t, connID)
		assert.Equal(t, "update", msg.Method)
		assert.Equal(t, domain.MarkO, msg.Turn, "turn flips to the other mark")
		assert.Equal(t, board, msg.Field)
		assert.Equal(t, "42", msg.GameID)
	}

	// the opponent can now move
	board2 := domain.Board{"X", "O", "", "", "", "", "", "", ""}
	m.ApplyMove(2, domain.MarkO, board2, "42")
	assert.Equal(t, domain.MarkX, conns.lastSentTo(t, 1).Turn)
}

func TestManager_ApplyMoveIgnoresNonParticipant(t *testing.T) {
	m, conns, recorder := newTestManager(nil)
	m.StartSession("42", "1", 1, 2)
	before := len(conns.sentTo(1))

	m.ApplyMove(99, domain.MarkX, domain.NewBoard(), "42")

	assert.Len(t, conns.sentTo(1), before, "no feedback is sent for ignored moves")
	assert.Empty(t, conns.sentTo(99))
	recorder.assertNoResult(t)
}

func TestManager_ApplyMoveIgnoresMismatchedGameID(t *testing.T) {
	m, conns, _ := newTestManager(nil)
	m.StartSession("42", "1", 1, 2)
	before := len(conns.sentTo(2))

	m.ApplyMove(1, domain.MarkX, domain.Board{"X", "", "", "", "", "", "", "", ""}, "99")
	assert.Len(t, conns.sentTo(2), before, "a move tagged with another game is dropped")

	// the same move addressed to the right game still lands
	m.ApplyMove(1, domain.MarkX, domain.Board{"X", "", "", "", "", "", "", "", ""}, "42")
	assert.Equal(t, "update", conns.lastSentTo(t, 2).Method)
}

func TestManager_ApplyMoveIgnoresOutOfTurn(t *testing.T) {
	m, conns, _ := newTestManager(nil)
	m.StartSession("42", "1", 1, 2)
	before := len(conns.sentTo(2))

	// O tries to open; X has the turn
	m.ApplyMove(2, domain.MarkO, domain.Board{"O", "", "", "", "", "", "", "", ""}, "42")

	assert.Len(t, conns.sentTo(2), before)
}

func TestManager_ApplyMoveIgnoresMalformedBoard(t *testing.T) {
	m, conns, _ := newTestManager(nil)
	m.StartSession("42", "1", 1, 2)
	before := len(conns.sentTo(1))

	m.ApplyMove(1, domain.MarkX, domain.Board{"X", "X"}, "42")

	assert.Len(t, conns.sentTo(1), before)
	assert.True(t, m.InSession(1), "session survives a malformed move")
}

func TestManager_WinEndsSession(t *testing.T) {
	m, conns, recorder := newTestManager(map[int64]string{1: "0xaaa", 2: "0xbbb"})
	m.StartSession("42", "1", 1, 2)

	board := domain.Board{"X", "X", "X", "O", "O", "", "", "", ""}
	m.ApplyMove(1, domain.MarkX, board, "42")

	for _, connID := range []int64{1, 2} {
		msg := conns.lastSentTo(t, connID)
		assert.Equal(t, "result", msg.Method)
		assert.Equal(t, "X wins", msg.Message)
		assert.Equal(t, board, msg.Field)
		assert.Equal(t, "42", msg.GameID)
	}

	saved := recorder.waitForResult(t)
	assert.Equal(t, "42", saved.gameID)
	assert.Equal(t, "0xaaa", saved.account, "the result is keyed by the winner's wallet")

	assert.False(t, m.InSession(1))
	assert.False(t, m.InSession(2))
	assert.Contains(t, conns.broadcastMethods(), "gameEnded")
}

func TestManager_DrawEndsSession(t *testing.T) {
	m, conns, recorder := newTestManager(map[int64]string{1: "0xaaa", 2: "0xbbb"})
	m.StartSession("42", "1", 1, 2)

	board := domain.Board{"X", "O", "X", "O", "X", "O", "O", "X", "O"}
	m.ApplyMove(1, domain.MarkX, board, "42")

	for _, connID := range []int64{1, 2} {
		msg := conns.lastSentTo(t, connID)
		assert.Equal(t, "result", msg.Method)
		assert.Equal(t, "Draw! Game over.", msg.Message)
	}

	saved := recorder.waitForResult(t)
	assert.Equal(t, domain.DrawAccount, saved.account)

	assert.False(t, m.InSession(1))
	assert.Contains(t, conns.broadcastMethods(), "gameEnded")
}

func TestManager_FinishedSessionRejectsFurtherMoves(t *testing.T) {
	m, conns, _ := newTestManager(map[int64]string{1: "0xaaa", 2: "0xbbb"})
	m.StartSession("42", "1", 1, 2)

	m.ApplyMove(1, domain.MarkX, domain.Board{"X", "X", "X", "O", "O", "", "", "", ""}, "42")
	before := len(conns.sentTo(2))

	m.ApplyMove(2, domain.MarkO, domain.NewBoard(), "42")
	assert.Len(t, conns.sentTo(2), before)
}

func TestManager_DisconnectForfeitsToOpponent(t *testing.T) {
	m, conns, recorder := newTestManager(map[int64]string{1: "0xaaa", 2: "0xbbb"})
	m.StartSession("42", "1", 1, 2)

	m.HandleDisconnect(1)

	msg := conns.lastSentTo(t, 2)
	assert.Equal(t, "result", msg.Method)
	assert.Equal(t, "Opponent disconnected. You win!", msg.Message)
	assert.Equal(t, domain.NewBoard(), msg.Field, "the forfeit notice carries an empty board")
	assert.Equal(t, "42", msg.GameID)

	saved := recorder.waitForResult(t)
	assert.Equal(t, "42", saved.gameID)
	assert.Equal(t, "0xbbb", saved.account, "the remaining player is the winner")

	assert.False(t, m.InSession(1))
	assert.False(t, m.InSession(2))
}

func TestManager_DisconnectOfIdleConnIsNoop(t *testing.T) {
	m, conns, recorder := newTestManager(nil)

	m.HandleDisconnect(7)

	assert.Empty(t, conns.sentTo(7))
	recorder.assertNoResult(t)
}

func TestManager_ForfeitWithoutOpponentAccountSkipsPersistence(t *testing.T) {
	// opponent never sent "connect": nothing sensible to persist
	m, conns, recorder := newTestManager(map[int64]string{1: "0xaaa"})
	m.StartSession("42", "1", 1, 2)

	m.HandleDisconnect(1)

	msg := conns.lastSentTo(t, 2)
	assert.Equal(t, "result", msg.Method)
	recorder.assertNoResult(t)
	assert.False(t, m.InSession(2), "cleanup runs regardless of persistence")
}

func TestManager_LiveGames(t *testing.T) {
	m, _, _ := newTestManager(nil)
	assert.Empty(t, m.LiveGames())

	m.StartSession("42", "1", 1, 2)
	m.StartSession("43", "5", 3, 4)

	games := m.LiveGames()
	require.Len(t, games, 2)

	ids := []string{games[0].GameID, games[1].GameID}
	assert.ElementsMatch(t, []string{"42", "43"}, ids)
}
