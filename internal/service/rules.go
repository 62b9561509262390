package service

import (
	"ladder_backend/internal/config"
	"sync/atomic"
	"time"
)

// Rules are the tunable numbers of the engine, read from the gamification config section.
// A zero LeaderboardCacheTTL turns the page cache off.
type Rules struct {
	DefaultPassPercentage float64
	TestDayPoints         int
	BossBonusPoints       int
	HotspotTolerance      float64
	LeaderboardLimit      int
	LeaderboardCacheTTL   time.Duration
}

func DefaultRules() Rules {
	return Rules{
		DefaultPassPercentage: 80,
		TestDayPoints:         10,
		BossBonusPoints:       100,
		HotspotTolerance:      50,
		LeaderboardLimit:      100,
		LeaderboardCacheTTL:   30 * time.Second,
	}
}

// RulesFromConfig falls back to DefaultRules for unset or invalid values.
func RulesFromConfig(cfg config.GamificationConfig) Rules {
	r := DefaultRules()
	if cfg.DefaultPassPercentage > 0 && cfg.DefaultPassPercentage <= 100 {
		r.DefaultPassPercentage = cfg.DefaultPassPercentage
	}
	if cfg.TestDayPoints > 0 {
		r.TestDayPoints = cfg.TestDayPoints
	}
	if cfg.BossBonusPoints > 0 {
		r.BossBonusPoints = cfg.BossBonusPoints
	}
	if cfg.HotspotTolerance > 0 {
		r.HotspotTolerance = cfg.HotspotTolerance
	}
	if cfg.LeaderboardLimit > 0 {
		r.LeaderboardLimit = cfg.LeaderboardLimit
	}
	if cfg.LeaderboardCacheSeconds > 0 {
		r.LeaderboardCacheTTL = time.Duration(cfg.LeaderboardCacheSeconds) * time.Second
	}
	if cfg.DisableLeaderboardCache {
		r.LeaderboardCacheTTL = 0
	}
	return r
}

// RuleSet 保存当前生效的规则，配置热更新时整体替换
type RuleSet struct {
	current atomic.Pointer[Rules]
}

func NewRuleSet(r Rules) *RuleSet {
	s := &RuleSet{}
	s.Store(r)
	return s
}

func (s *RuleSet) Load() Rules {
	if s == nil {
		return DefaultRules()
	}
	if r := s.current.Load(); r != nil {
		return *r
	}
	return DefaultRules()
}

func (s *RuleSet) Store(r Rules) {
	s.current.Store(&r)
}
