package match

import (
	"log"
	"sync"

	"github.com/sbcapp/tictactoe-chain/backend/internal/domain"
)

// Request is a queued pairing request. The game identifier correlates
// with the stake escrow on the contract; two requests only pair when
// they reference the same escrow with the same stake.
type Request struct {
	ConnID    int64
	GameID    string
	BetAmount string
}

// Match is a compatible pair pulled from the head of the queue. Turn
// order is still unresolved at this point.
type Match struct {
	First  Request
	Second Request
}

// AccountResolver looks up the wallet account bound to a connection.
type AccountResolver interface {
	Account(connID int64) (string, bool)
}

// ActiveGate reports whether a connection already plays in a session.
type ActiveGate interface {
	InSession(connID int64) bool
}

// Engine holds the FIFO waiting queue and pushes matched pairs onto
// MatchChannel for the listener to resolve.
type Engine struct {
	waiting      []Request
	accounts     AccountResolver
	gate         ActiveGate
	MatchChannel chan Match
	mu           sync.Mutex
}

func NewEngine(accounts AccountResolver, gate ActiveGate) *Engine {
	return &Engine{
		accounts:     accounts,
		gate:         gate,
		MatchChannel: make(chan Match, 100),
	}
}

// Enqueue appends a pairing request and scans for matches. Requests
// from connections that already play, or that already wait, are
// rejected as no-ops.
func (e *Engine) Enqueue(req Request) error {
	if e.gate.InSession(req.ConnID) {
		return domain.ErrAlreadyQueued
	}

	e.mu.Lock()
	for _, waiting := range e.waiting {
		if waiting.ConnID == req.ConnID {
			e.mu.Unlock()
			return domain.ErrAlreadyQueued
		}
	}

	e.waiting = append(e.waiting, req)
	log.Printf("[MATCH] Conn %d queued for game %s with bet amount %s", req.ConnID, req.GameID, req.BetAmount)

	matches := e.tryPairLocked()
	e.mu.Unlock()

	// Hand matches off outside the lock so a stalled listener can never
	// wedge the queue.
	for _, match := range matches {
		e.MatchChannel <- match
	}
	return nil
}

// Remove discards any queued request owned by the connection, leaving
// the rest of the queue order unchanged. Idempotent.
func (e *Engine) Remove(connID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, req := range e.waiting {
		if req.ConnID == connID {
			e.waiting = append(e.waiting[:i], e.waiting[i+1:]...)
			return
		}
	}
}

// Waiting returns the number of queued requests.
func (e *Engine) Waiting() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.waiting)
}

// tryPairLocked repeatedly inspects the two head entries. An
// incompatible head is shifted off alone so it can still pair with a
// later entry; a compatible pair is removed whole and returned for
// hand-off once the lock is released.
func (e *Engine) tryPairLocked() []Match {
	var matches []Match
	for len(e.waiting) >= 2 {
		first, second := e.waiting[0], e.waiting[1]

		if !e.compatible(first, second) {
			e.waiting = e.waiting[1:]
			continue
		}

		e.waiting = e.waiting[2:]
		matches = append(matches, Match{First: first, Second: second})
	}
	return matches
}

// compatible requires distinct connections, distinct accounts, the same
// game identifier and the same stake. Two connections that both lack an
// account compare equal and do not pair.
func (e *Engine) compatible(first, second Request) bool {
	if first.ConnID == second.ConnID {
		return false
	}

	firstAccount, _ := e.accounts.Account(first.ConnID)
	secondAccount, _ := e.accounts.Account(second.ConnID)
	if firstAccount == secondAccount {
		return false
	}

	return first.GameID == second.GameID && first.BetAmount == second.BetAmount
}
