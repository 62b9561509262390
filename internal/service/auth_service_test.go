package service

import (
	"context"
	"testing"

	"ladder_backend/internal/model"
	"ladder_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	user, err := e.auth.Register(ctx, RegisterInput{Name: " Wes ", Email: "Wes@Example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "wes@example.com", user.Email)
	assert.Equal(t, model.Consultant, user.Role)
	assert.NotEqual(t, "correct horse", e.db.users[user.ID].Password)

	_, err = e.auth.Register(ctx, RegisterInput{Name: "Wes", Email: "wes@example.com", Password: "another one"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	_, err = e.auth.Login(ctx, "wes@example.com", "wrong password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, err = e.auth.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	res, err := e.auth.Login(ctx, " WES@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, 1, res.LoginStreak)
	require.NotNil(t, e.db.users[user.ID].LastLogin)

	claims, err := util.ParseJWT(res.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Consultant, claims.Role)

	e.db.users[user.ID].Active = false
	_, err = e.auth.Login(ctx, "wes@example.com", "correct horse")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestTeamAndMemberProgress(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	boss := e.addUser("boss", model.Boss)
	uid := e.addUser("xia", model.Consultant)
	outsider := e.addUser("yan", model.Consultant)
	e.relate(boss, uid)
	lvl := e.addLevel(1, false)

	_, err := e.tests.SubmitTest(ctx, uid, lvl.testID, lvl.perfect())
	require.NoError(t, err)

	team := NewTeamService(memUsers{e.db}, e.board, e.progress)
	members, err := team.Team(ctx, boss)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, uid, members[0].UserID)
	assert.Equal(t, 1, members[0].RungsCompleted)
	assert.Equal(t, e.pointsOf(uid), members[0].TotalPoints)

	ladder, err := team.MemberProgress(ctx, boss, uid)
	require.NoError(t, err)
	require.Len(t, ladder, 1)
	assert.Equal(t, model.StatusCompleted, ladder[0].Status)

	_, err = team.MemberProgress(ctx, boss, outsider)
	assert.ErrorIs(t, err, util.ErrNotDirectReport)
}

func TestStatsForUser(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	uid := e.addUser("zed", model.Consultant)
	lvl := e.addLevel(1, false)
	_, err := e.tests.SubmitTest(ctx, uid, lvl.testID, lvl.perfect())
	require.NoError(t, err)

	stats := NewStatsService(memStreaks{e.db}, memPoints{e.db}, e.achievements, e.board)
	got, err := stats.ForUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Streak.CurrentTestStreak)
	assert.Equal(t, 45, got.Streak.TotalPoints)
	assert.Len(t, got.Achievements, 2)
	assert.Len(t, got.Points, 3)
	assert.Equal(t, 45, got.Leaderboard.TotalPoints)
}
