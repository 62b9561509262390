package service

import (
	"context"
	"testing"

	"ladder_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualify(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want []string
	}{
		{"nothing happened", Snapshot{PassedTests: 5, CompletedLevels: 30}, nil},
		{"first pass", Snapshot{TestPassed: true, PassedTests: 1}, []string{"first_test"}},
		{"perfect pass", Snapshot{TestPassed: true, PerfectScore: true, PassedTests: 4}, []string{"first_test", "perfect_score"}},
		{"ninth level", Snapshot{LevelCompleted: true, CompletedLevels: 9}, nil},
		{"tenth level", Snapshot{LevelCompleted: true, CompletedLevels: 10}, []string{"level_10"}},
		{"past a threshold", Snapshot{LevelCompleted: true, CompletedLevels: 27}, []string{"level_10", "level_25"}},
		{"login streak", Snapshot{LoginStreak: 50}, []string{"streak_10", "streak_50"}},
		{"boss completed", Snapshot{BossReviewed: true, CompletedBoss: 1, ApprovedBossLevels: 1, ActiveBossLevels: 2}, []string{"boss_complete"}},
		{"all bosses clean", Snapshot{BossReviewed: true, CompletedBoss: 2, ApprovedBossLevels: 2, ActiveBossLevels: 2}, []string{"boss_complete", "boss_perfect"}},
		{"all bosses after a rejection", Snapshot{BossReviewed: true, CompletedBoss: 2, RejectedBoss: 1, ApprovedBossLevels: 2, ActiveBossLevels: 2}, []string{"boss_complete"}},
		{"no boss levels exist", Snapshot{BossReviewed: true}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Qualify(tc.snap))
		})
	}
}

func completeLevels(e *engine, userID uint, n int) {
	for i := 0; i < n; i++ {
		p := &model.UserProgress{UserID: userID, LevelID: e.db.id(), Status: model.StatusCompleted}
		e.db.progress[pairKey{p.UserID, p.LevelID}] = p
	}
}

func TestReactGrantsLevelMilestoneOnce(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	uid := e.addUser("dan", model.Consultant)

	completeLevels(e, uid, 9)
	granted, err := e.achievements.React(ctx, uid, []Outcome{LevelCompleted{UserID: uid}})
	require.NoError(t, err)
	assert.Empty(t, granted)

	completeLevels(e, uid, 1)
	granted, err = e.achievements.React(ctx, uid, []Outcome{LevelCompleted{UserID: uid}})
	require.NoError(t, err)
	assert.Equal(t, []string{"level_10"}, codes(granted))
	assert.Equal(t, 100, e.pointsOf(uid))

	for i := 0; i < 3; i++ {
		completeLevels(e, uid, 1)
		granted, err = e.achievements.React(ctx, uid, []Outcome{LevelCompleted{UserID: uid}})
		require.NoError(t, err)
		assert.Empty(t, granted, "level_10 is held after %d levels", 11+i)
	}
	assert.Equal(t, 100, e.pointsOf(uid), "points are paid once")
}

func TestReactIsIdempotent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	uid := e.addUser("eve", model.Consultant)
	e.db.attempts = append(e.db.attempts, model.TestAttempt{UserID: uid, TestID: 1, Passed: true})

	outcomes := []Outcome{TestPassed{UserID: uid, TestID: 1, Perfect: true}}
	granted, err := e.achievements.React(ctx, uid, outcomes)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first_test", "perfect_score"}, codes(granted))

	granted, err = e.achievements.React(ctx, uid, outcomes)
	require.NoError(t, err)
	assert.Empty(t, granted)
	assert.Equal(t, 35, e.pointsOf(uid))
	assert.Equal(t, 35, e.db.board[uid].TotalPoints)
}

func TestReactSkipsCodesMissingFromCatalog(t *testing.T) {
	e := newEngine(t)
	delete(e.db.catalog, "first_test")
	uid := e.addUser("fay", model.Consultant)
	e.db.attempts = append(e.db.attempts, model.TestAttempt{UserID: uid, TestID: 1, Passed: true})

	granted, err := e.achievements.React(context.Background(), uid, []Outcome{TestPassed{UserID: uid, TestID: 1}})
	require.NoError(t, err)
	assert.Empty(t, granted)
	assert.Zero(t, e.pointsOf(uid))
}

func TestLoginStreakEarnsStreak10(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	uid := e.addUser("gus", model.Consultant)

	var granted []model.Achievement
	for day := 0; day < 10; day++ {
		login, err := e.streaks.RecordLogin(ctx, uid)
		require.NoError(t, err)
		granted, err = e.achievements.React(ctx, uid, []Outcome{login})
		require.NoError(t, err)
		if day < 9 {
			require.Empty(t, granted, "day %d", day+1)
		}
		e.nextDay(1)
	}
	assert.Equal(t, []string{"streak_10"}, codes(granted))
	assert.Equal(t, 50, e.pointsOf(uid))
}
