package service

import (
	"context"
	"fmt"
	"ladder_backend/internal/util"
	"time"
)

type TeamMember struct {
	UserID         uint       `json:"userId"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	RungsCompleted int        `json:"rungsCompleted"`
	TotalPoints    int        `json:"totalPoints"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
}

// TeamService serves a boss's view of their direct reports.
type TeamService struct {
	Users       UserStore
	Leaderboard *LeaderboardService
	Progress    *ProgressService
}

func NewTeamService(users UserStore, leaderboard *LeaderboardService, progress *ProgressService) *TeamService {
	return &TeamService{Users: users, Leaderboard: leaderboard, Progress: progress}
}

func (s *TeamService) Team(ctx context.Context, bossID uint) ([]TeamMember, error) {
	users, err := s.Users.ListTeam(ctx, bossID)
	if err != nil {
		return nil, fmt.Errorf("list team: %w", err)
	}
	team := make([]TeamMember, 0, len(users))
	for _, u := range users {
		entry, err := s.Leaderboard.Entry(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		team = append(team, TeamMember{
			UserID:         u.ID,
			Name:           u.Name,
			Email:          u.Email,
			RungsCompleted: entry.RungsCompleted,
			TotalPoints:    entry.TotalPoints,
			LastLogin:      u.LastLogin,
		})
	}
	return team, nil
}

// MemberProgress returns the ladder of a direct report.
func (s *TeamService) MemberProgress(ctx context.Context, bossID, userID uint) ([]LadderRung, error) {
	ok, err := s.Users.IsDirectReport(ctx, bossID, userID)
	if err != nil {
		return nil, fmt.Errorf("check relationship: %w", err)
	}
	if !ok {
		return nil, util.ErrNotDirectReport
	}
	return s.Progress.Ladder(ctx, userID)
}
