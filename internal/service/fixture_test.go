package service

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"ladder_backend/internal/model"
)

var catalog = []struct {
	code   string
	points int
}{
	{"first_test", 10},
	{"streak_10", 50},
	{"streak_50", 200},
	{"streak_100", 500},
	{"level_10", 100},
	{"level_25", 250},
	{"level_50", 500},
	{"perfect_score", 25},
	{"speed_demon", 30},
	{"comeback", 20},
	{"boss_complete", 75},
	{"boss_perfect", 150},
	{"top_10", 100},
	{"top_3", 200},
	{"rank_1", 500},
}

// engine wires every service over one memDB and a clock the test can move.
type engine struct {
	db  *memDB
	now time.Time

	rules        *RuleSet
	ledger       *PointsLedger
	streaks      *StreakService
	achievements *AchievementService
	cascade      *CompletionCascade
	progress     *ProgressService
	tests        *TestService
	signoffs     *SignoffService
	board        *LeaderboardService
	enrollment   *EnrollmentService
	auth         *AuthService
	cache        *memCache
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	db := newMemDB()
	e := &engine{db: db, now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return e.now }

	for _, c := range catalog {
		a := &model.Achievement{Code: c.code, Title: c.code, Points: c.points}
		a.ID = db.id()
		db.catalog[c.code] = a
	}

	levels, tests, attempts := memLevels{db}, memTests{db}, memAttempts{db}
	progress, streaks, activity := memProgress{db}, memStreaks{db}, memActivity{db}
	points, board, users := memPoints{db}, memBoard{db}, memUsers{db}

	e.rules = NewRuleSet(DefaultRules())
	e.ledger = NewPointsLedger(points, streaks, board)
	e.ledger.Now = clock
	e.streaks = NewStreakService(streaks, activity, e.ledger, e.rules)
	e.streaks.Now = clock
	e.achievements = NewAchievementService(memAchievements{db}, attempts, progress, streaks, memSignoffs{db}, levels, e.ledger)
	e.achievements.Now = clock
	e.cascade = NewCompletionCascade(levels, progress, activity, board, e.ledger, e.rules)
	e.cascade.Now = clock
	e.progress = NewProgressService(levels, tests, attempts, progress, e.cascade)
	e.progress.Now = clock
	e.tests = NewTestService(tests, attempts, activity, e.progress, e.streaks, e.achievements, e.rules)
	e.tests.Now = clock
	e.signoffs = NewSignoffService(memSignoffs{db}, users, levels, attempts, e.progress, e.achievements)
	e.signoffs.Now = clock
	e.cache = newMemCache()
	e.board = NewLeaderboardService(board, e.cache, e.rules)
	e.enrollment = NewEnrollmentService(memPathways{db}, memCohorts{db}, users, progress)
	e.enrollment.Now = clock
	e.auth = NewAuthService(users, e.streaks, e.achievements, "test-secret", time.Hour)
	e.auth.Now = clock
	return e
}

func (e *engine) nextDay(n int) { e.now = e.now.AddDate(0, 0, n) }

func (e *engine) addUser(name string, role model.UserRole) uint {
	u := &model.User{Name: name, Email: name + "@example.com", Role: role, Active: true}
	u.ID = e.db.id()
	e.db.users[u.ID] = u
	return u.ID
}

func (e *engine) relate(bossID, consultantID uint) {
	r := model.BossRelationship{BossID: bossID, ConsultantID: consultantID, Active: true}
	r.ID = e.db.id()
	e.db.relations = append(e.db.relations, r)
}

// ladderLevel is an active level with one test of two multiple choice questions worth 17 and 3 points.
type ladderLevel struct {
	level  *model.Level
	testID uint
	big    uint
	small  uint
	right  map[uint]uint
	wrong  map[uint]uint
}

func (e *engine) addLevel(order int, boss bool) *ladderLevel {
	l := &model.Level{Title: fmt.Sprintf("Level %d", order), OrderIndex: order, IsBossLevel: boss, Active: true}
	l.ID = e.db.id()
	e.db.levels[l.ID] = l

	t := &model.Test{LevelID: l.ID, Title: fmt.Sprintf("Test %d", order), PassPercentage: 80}
	t.ID = e.db.id()
	e.db.tests[t.ID] = t

	ll := &ladderLevel{level: l, testID: t.ID, right: map[uint]uint{}, wrong: map[uint]uint{}}
	for i, points := range []int{17, 3} {
		q := model.Question{TestID: t.ID, QuestionText: "q", QuestionType: model.QuestionMultipleChoice, Points: points, OrderIndex: i}
		q.ID = e.db.id()
		right := model.AnswerOption{QuestionID: q.ID, OptionText: "right", IsCorrect: true, OrderIndex: 1}
		right.ID = e.db.id()
		wrong := model.AnswerOption{QuestionID: q.ID, OptionText: "wrong", OrderIndex: 2}
		wrong.ID = e.db.id()
		q.Options = []model.AnswerOption{right, wrong}
		e.db.questions[t.ID] = append(e.db.questions[t.ID], q)
		ll.right[q.ID], ll.wrong[q.ID] = right.ID, wrong.ID
		if i == 0 {
			ll.big = q.ID
		} else {
			ll.small = q.ID
		}
	}
	return ll
}

// addBareLevel adds an active level that has no tests.
func (e *engine) addBareLevel(order int, boss bool) *model.Level {
	l := &model.Level{Title: fmt.Sprintf("Level %d", order), OrderIndex: order, IsBossLevel: boss, Active: true}
	l.ID = e.db.id()
	e.db.levels[l.ID] = l
	return l
}

func answer(choices map[uint]uint) map[uint]json.RawMessage {
	out := make(map[uint]json.RawMessage, len(choices))
	for q, opt := range choices {
		out[q] = json.RawMessage(fmt.Sprint(opt))
	}
	return out
}

// perfect answers every question correctly.
func (l *ladderLevel) perfect() map[uint]json.RawMessage { return answer(l.right) }

// passing scores 17/20 = 85%.
func (l *ladderLevel) passing() map[uint]json.RawMessage {
	return answer(map[uint]uint{l.big: l.right[l.big], l.small: l.wrong[l.small]})
}

// failing scores 3/20 = 15%.
func (l *ladderLevel) failing() map[uint]json.RawMessage {
	return answer(map[uint]uint{l.big: l.wrong[l.big], l.small: l.right[l.small]})
}

func (e *engine) status(userID, levelID uint) model.ProgressStatus {
	p, ok := e.db.progress[pairKey{userID, levelID}]
	if !ok {
		return model.StatusLocked
	}
	return p.Status
}

func (e *engine) pointsOf(userID uint) int {
	total := 0
	for _, p := range e.db.points {
		if p.UserID == userID {
			total += p.Amount
		}
	}
	return total
}

func (e *engine) hasPointKey(userID uint, key string) bool {
	for _, p := range e.db.points {
		if p.UserID == userID && p.Key == key {
			return true
		}
	}
	return false
}

func (e *engine) activityCount(userID uint, t model.ActivityType) int {
	n := 0
	for _, a := range e.db.activity {
		if a.UserID == userID && a.ActivityType == t {
			n++
		}
	}
	return n
}

func codes(achievements []model.Achievement) []string {
	out := make([]string, 0, len(achievements))
	for _, a := range achievements {
		out = append(out, a.Code)
	}
	return out
}
