package service

import (
	"context"
	"errors"
	"fmt"
	"ladder_backend/internal/model"
	"ladder_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const leaderboardCacheKey = "leaderboard:top"

// DenseRank assigns ranks to rows already ordered by points then rungs. Ties share a rank
// and the next distinct row takes the following rank.
func DenseRank(rows []model.RankedEntry) {
	rank := 0
	for i := range rows {
		if i == 0 || rows[i].TotalPoints != rows[i-1].TotalPoints || rows[i].RungsCompleted != rows[i-1].RungsCompleted {
			rank++
		}
		rows[i].Rank = rank
	}
}

type LeaderboardService struct {
	Board LeaderboardStore
	Cache PageCache
	Rules *RuleSet
}

func NewLeaderboardService(board LeaderboardStore, cache PageCache, rules *RuleSet) *LeaderboardService {
	return &LeaderboardService{Board: board, Cache: cache, Rules: rules}
}

func (s *LeaderboardService) cacheKey(limit int) string {
	return fmt.Sprintf("%s:%d", leaderboardCacheKey, limit)
}

// Top returns the ranked top of the board, served from the page cache when fresh.
func (s *LeaderboardService) Top(ctx context.Context) ([]model.RankedEntry, error) {
	rules := s.Rules.Load()
	key := s.cacheKey(rules.LeaderboardLimit)

	cached := s.Cache != nil && rules.LeaderboardCacheTTL > 0
	if cached {
		var page []model.RankedEntry
		hit, err := s.Cache.GetJSON(ctx, key, &page)
		if err != nil {
			logger.Log.Warn("Leaderboard cache read failed", zap.Error(err))
		} else if hit {
			return page, nil
		}
	}

	rows, err := s.Board.ListTop(ctx, rules.LeaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	DenseRank(rows)
	if err := s.Board.UpdateRanks(ctx, rankMap(rows)); err != nil {
		return nil, fmt.Errorf("persist ranks: %w", err)
	}

	if cached {
		if err := s.Cache.SetJSON(ctx, key, rows, rules.LeaderboardCacheTTL); err != nil {
			logger.Log.Warn("Leaderboard cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}

// Refresh re-ranks every active user and drops the cached page.
func (s *LeaderboardService) Refresh(ctx context.Context) error {
	rows, err := s.Board.ListTop(ctx, -1)
	if err != nil {
		return fmt.Errorf("list leaderboard: %w", err)
	}
	DenseRank(rows)
	if err := s.Board.UpdateRanks(ctx, rankMap(rows)); err != nil {
		return fmt.Errorf("persist ranks: %w", err)
	}
	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, s.cacheKey(s.Rules.Load().LeaderboardLimit)); err != nil {
			logger.Log.Warn("Leaderboard cache invalidation failed", zap.Error(err))
		}
	}
	logger.Log.Debug("Leaderboard ranks refreshed", zap.Int("users", len(rows)))
	return nil
}

// Entry returns the user's own row; users without one get an empty bronze entry.
func (s *LeaderboardService) Entry(ctx context.Context, userID uint) (*model.LeaderboardEntry, error) {
	entry, err := s.Board.FindByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.LeaderboardEntry{UserID: userID, League: model.LeagueBronze}, nil
	}
	return entry, err
}

func rankMap(rows []model.RankedEntry) map[uint]int {
	ranks := make(map[uint]int, len(rows))
	for _, r := range rows {
		ranks[r.UserID] = r.Rank
	}
	return ranks
}
