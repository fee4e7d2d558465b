package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/predictlive/sanrentan/internal/tournament"
)

// Ranker produces the authoritative ranking from the answer store.
type Ranker interface {
	GetRanking(ctx context.Context) ([]tournament.RankingEntry, error)
}

// ServiceOptions configures ranking cache behavior.
type ServiceOptions struct {
	CacheTTL time.Duration
	CacheKey string
}

// Service serves leaderboard reads for polling viewers. When a Redis client
// is configured it keeps a short-lived JSON snapshot of the ranking so a
// crowd refreshing the page does not hammer the store; the snapshot is
// dropped whenever scores change. Ordering always comes from the Ranker, so
// the total-descending/name-ascending contract is preserved verbatim.
type Service struct {
	ranker Ranker
	redis  *redis.Client
	ttl    time.Duration
	key    string
	logger zerolog.Logger
}

// NewService constructs a leaderboard service. redisClient may be nil, in
// which case every read goes to the ranker.
func NewService(ranker Ranker, redisClient *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	key := opts.CacheKey
	if key == "" {
		key = "ranking:snapshot"
	}
	return &Service{
		ranker: ranker,
		redis:  redisClient,
		ttl:    ttl,
		key:    key,
		logger: logger.With().Str("component", "leaderboard").Logger(),
	}
}

// Ranking returns the current leaderboard, from cache when fresh.
func (s *Service) Ranking(ctx context.Context) ([]tournament.RankingEntry, error) {
	if s.redis != nil {
		data, err := s.redis.Get(ctx, s.key).Bytes()
		if err == nil {
			var entries []tournament.RankingEntry
			uerr := json.Unmarshal(data, &entries)
			if uerr == nil {
				return entries, nil
			}
			s.logger.Warn().Err(uerr).Msg("discarding corrupt ranking snapshot")
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("ranking cache read failed, falling back to store")
		}
	}

	entries, err := s.ranker.GetRanking(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute ranking: %w", err)
	}

	if s.redis != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.redis.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("ranking cache write failed")
			}
		}
	}
	return entries, nil
}

// Invalidate drops the cached snapshot. Called whenever stored scores may
// have changed, so viewers never poll a stale scoreboard past the next
// refresh.
func (s *Service) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("ranking cache invalidation failed")
	}
}
