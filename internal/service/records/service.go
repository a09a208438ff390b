package records

import (
	"context"
	"log"
	"time"
)

// WinnerStore persists terminal game results keyed by game ID.
type WinnerStore interface {
	UpsertWinner(ctx context.Context, gameID, winnerAccount string) error
	GetWinner(ctx context.Context, gameID string) (string, error)
}

// AvatarStore persists avatar images keyed by wallet account.
type AvatarStore interface {
	UpsertAvatar(ctx context.Context, account, avatarData string) error
	GetAvatar(ctx context.Context, account string) (string, error)
}

// Cache is an optional read-through cache in front of the stores.
type Cache interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

const cacheTTL = 10 * time.Minute

// Service is the record store the coordinator and HTTP layer talk to.
// All cache traffic is best effort: a cache failure falls through to
// Postgres and is never surfaced.
type Service struct {
	winners WinnerStore
	avatars AvatarStore
	cache   Cache // may be nil when Redis is unavailable
}

func NewService(winners WinnerStore, avatars AvatarStore, cache Cache) *Service {
	return &Service{winners: winners, avatars: avatars, cache: cache}
}

// RecordResult upserts the outcome for a game and refreshes the cache.
func (s *Service) RecordResult(ctx context.Context, gameID, winnerAccount string) error {
	if err := s.winners.UpsertWinner(ctx, gameID, winnerAccount); err != nil {
		return err
	}
	log.Printf("[RECORDS] Result for game %s saved as: %s", gameID, winnerAccount)

	if s.cache != nil {
		if err := s.cache.Set(ctx, winnerKey(gameID), winnerAccount, cacheTTL); err != nil {
			log.Printf("[RECORDS] Cache write failed for game %s: %v", gameID, err)
		}
	}
	return nil
}

// GetResult returns the recorded outcome for a game, or "" when none
// exists yet.
func (s *Service) GetResult(ctx context.Context, gameID string) (string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, winnerKey(gameID)); err == nil && cached != "" {
			return cached, nil
		}
	}

	winnerAccount, err := s.winners.GetWinner(ctx, gameID)
	if err != nil {
		return "", err
	}

	if winnerAccount != "" && s.cache != nil {
		if err := s.cache.Set(ctx, winnerKey(gameID), winnerAccount, cacheTTL); err != nil {
			log.Printf("[RECORDS] Cache write failed for game %s: %v", gameID, err)
		}
	}
	return winnerAccount, nil
}

// SaveAvatar stores avatar data for an account and drops any stale
// cache entry.
func (s *Service) SaveAvatar(ctx context.Context, account, avatarData string) error {
	if err := s.avatars.UpsertAvatar(ctx, account, avatarData); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, avatarKey(account)); err != nil {
			log.Printf("[RECORDS] Cache invalidation failed for account %s: %v", account, err)
		}
	}
	return nil
}

// GetAvatar returns the stored avatar for an account, or "" when none
// exists.
func (s *Service) GetAvatar(ctx context.Context, account string) (string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, avatarKey(account)); err == nil && cached != "" {
			return cached, nil
		}
	}

	avatarData, err := s.avatars.GetAvatar(ctx, account)
	if err != nil {
		return "", err
	}

	if avatarData != "" && s.cache != nil {
		if err := s.cache.Set(ctx, avatarKey(account), avatarData, cacheTTL); err != nil {
			log.Printf("[RECORDS] Cache write failed for account %s: %v", account, err)
		}
	}
	return avatarData, nil
}

func winnerKey(gameID string) string {
	return "winner:" + gameID
}

func avatarKey(account string) string {
	return "avatar:" + account
}
