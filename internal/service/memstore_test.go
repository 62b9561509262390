package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"ladder_backend/internal/model"

	"gorm.io/gorm"
)

type pairKey [2]uint

// memDB is an in-memory stand-in for the gorm repositories.
type memDB struct {
	mu     sync.Mutex
	nextID uint

	levels      map[uint]*model.Level
	tests       map[uint]*model.Test
	questions   map[uint][]model.Question
	attempts    []model.TestAttempt
	progress    map[pairKey]*model.UserProgress
	streaks     map[uint]*model.UserStreak
	activity    []model.ActivityLog
	points      []model.PointEvent
	catalog     map[string]*model.Achievement
	earned      map[pairKey]time.Time
	board       map[uint]*model.LeaderboardEntry
	signoffs    map[uint]*model.SignoffRequest
	users       map[uint]*model.User
	relations   []model.BossRelationship
	pathways    map[uint]*model.Pathway
	pathLevels  []model.PathwayLevel
	enrollments map[uint]*model.PathwayEnrollment
	cohorts     map[uint]*model.Cohort
	members     map[uint][]uint
	cohortPaths map[pairKey]bool
}

func newMemDB() *memDB {
	return &memDB{
		nextID:      1000,
		levels:      map[uint]*model.Level{},
		tests:       map[uint]*model.Test{},
		questions:   map[uint][]model.Question{},
		progress:    map[pairKey]*model.UserProgress{},
		streaks:     map[uint]*model.UserStreak{},
		catalog:     map[string]*model.Achievement{},
		earned:      map[pairKey]time.Time{},
		board:       map[uint]*model.LeaderboardEntry{},
		signoffs:    map[uint]*model.SignoffRequest{},
		users:       map[uint]*model.User{},
		pathways:    map[uint]*model.Pathway{},
		enrollments: map[uint]*model.PathwayEnrollment{},
		cohorts:     map[uint]*model.Cohort{},
		members:     map[uint][]uint{},
		cohortPaths: map[pairKey]bool{},
	}
}

func (db *memDB) id() uint {
	db.nextID++
	return db.nextID
}

type (
	memLevels       struct{ *memDB }
	memTests        struct{ *memDB }
	memAttempts     struct{ *memDB }
	memProgress     struct{ *memDB }
	memStreaks      struct{ *memDB }
	memActivity     struct{ *memDB }
	memPoints       struct{ *memDB }
	memAchievements struct{ *memDB }
	memBoard        struct{ *memDB }
	memSignoffs     struct{ *memDB }
	memUsers        struct{ *memDB }
	memPathways     struct{ *memDB }
	memCohorts      struct{ *memDB }
)

// levels

func (m memLevels) FindByID(_ context.Context, id uint) (*model.Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.levels[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (m memLevels) FindActiveByOrderIndex(_ context.Context, orderIndex int) (*model.Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.levels {
		if l.Active && l.OrderIndex == orderIndex {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m memLevels) ListActive(_ context.Context) ([]model.Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Level
	for _, l := range m.levels {
		if !l.Active {
			continue
		}
		cp := *l
		for _, t := range m.tests {
			if t.LevelID == l.ID {
				cp.Tests = append(cp.Tests, *t)
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m memLevels) CountActiveBoss(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, l := range m.levels {
		if l.Active && l.IsBossLevel {
			n++
		}
	}
	return n, nil
}

// tests

func (m memTests) FindByID(_ context.Context, id uint) (*model.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (m memTests) ListByLevel(_ context.Context, levelID uint) ([]model.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Test
	for _, t := range m.tests {
		if t.LevelID == levelID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memTests) ListQuestions(_ context.Context, testID uint) ([]model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Question(nil), m.questions[testID]...), nil
}

// attempts

func (m memAttempts) Create(_ context.Context, a *model.TestAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.id()
	for i := range a.Answers {
		a.Answers[i].ID = m.id()
		a.Answers[i].AttemptID = a.ID
	}
	m.attempts = append(m.attempts, *a)
	return nil
}

func (m memAttempts) HasPassed(_ context.Context, userID, testID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attempts {
		if a.UserID == userID && a.TestID == testID && a.Passed {
			return true, nil
		}
	}
	return false, nil
}

func (m memAttempts) CountPassedTests(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[uint]bool{}
	for _, a := range m.attempts {
		if a.UserID == userID && a.Passed {
			seen[a.TestID] = true
		}
	}
	return int64(len(seen)), nil
}

func (m memAttempts) summaries(match func(a model.TestAttempt, t *model.Test) bool) []model.AttemptSummary {
	var out []model.AttemptSummary
	for i := len(m.attempts) - 1; i >= 0; i-- {
		a := m.attempts[i]
		t := m.tests[a.TestID]
		if t == nil || !match(a, t) {
			continue
		}
		s := model.AttemptSummary{TestAttempt: a, TestTitle: t.Title, LevelID: t.LevelID}
		if l := m.levels[t.LevelID]; l != nil {
			s.LevelTitle = l.Title
		}
		out = append(out, s)
	}
	return out
}

func (m memAttempts) ListRecent(_ context.Context, userID uint, limit int) ([]model.AttemptSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.summaries(func(a model.TestAttempt, _ *model.Test) bool { return a.UserID == userID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memAttempts) ListPassedForLevel(_ context.Context, userID, levelID uint) ([]model.AttemptSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summaries(func(a model.TestAttempt, t *model.Test) bool {
		return a.UserID == userID && a.Passed && t.LevelID == levelID
	}), nil
}

// progress

func (m memProgress) Find(_ context.Context, userID, levelID uint) (*model.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.progress[pairKey{userID, levelID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m memProgress) CreateIfAbsent(_ context.Context, p *model.UserProgress) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{p.UserID, p.LevelID}
	if _, ok := m.progress[key]; ok {
		return false, nil
	}
	p.ID = m.id()
	cp := *p
	m.progress[key] = &cp
	return true, nil
}

func (m memProgress) UpdateStatus(_ context.Context, userID, levelID uint, from, to model.ProgressStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.progress[pairKey{userID, levelID}]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	switch {
	case to == model.StatusInProgress && from == model.StatusUnlocked:
		p.StartedAt = &at
	case to == model.StatusCompleted:
		p.CompletedAt = &at
	}
	return true, nil
}

func (m memProgress) CountByStatus(_ context.Context, userID uint, status model.ProgressStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, p := range m.progress {
		if k[0] == userID && p.Status == status {
			n++
		}
	}
	return n, nil
}

func (m memProgress) CountCompletedBoss(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, p := range m.progress {
		if l := m.levels[k[1]]; k[0] == userID && p.Status == model.StatusCompleted && l != nil && l.IsBossLevel {
			n++
		}
	}
	return n, nil
}

func (m memProgress) ListByUser(_ context.Context, userID uint) ([]model.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.UserProgress
	for k, p := range m.progress {
		if k[0] == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// streaks

func (m memStreaks) Find(_ context.Context, userID uint) (*model.UserStreak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.streaks[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m memStreaks) FindOrCreate(_ context.Context, userID uint) (*model.UserStreak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.streaks[userID]
	if !ok {
		s = &model.UserStreak{UserID: userID}
		s.ID = m.id()
		m.streaks[userID] = s
	}
	cp := *s
	return &cp, nil
}

func (m memStreaks) UpdateLoginTrack(_ context.Context, userID uint, current, longest int, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.streaks[userID]
	s.CurrentLoginStreak, s.LongestLoginStreak, s.LastLoginDate = current, longest, day
	return nil
}

func (m memStreaks) UpdateTestTrack(_ context.Context, userID uint, current, longest int, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.streaks[userID]
	s.CurrentTestStreak, s.LongestTestStreak, s.LastTestDate = current, longest, day
	return nil
}

func (m memStreaks) SetTotalPoints(_ context.Context, userID uint, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.streaks[userID]
	if !ok {
		s = &model.UserStreak{UserID: userID}
		m.streaks[userID] = s
	}
	s.TotalPoints = total
	return nil
}

// activity

func (m memActivity) Append(_ context.Context, e *model.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.id()
	m.activity = append(m.activity, *e)
	return nil
}

func (m memActivity) Exists(_ context.Context, userID uint, t model.ActivityType, refID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.activity {
		if e.UserID == userID && e.ActivityType == t && e.RefID != nil && *e.RefID == refID {
			return true, nil
		}
	}
	return false, nil
}

// points

func (m memPoints) Insert(_ context.Context, e *model.PointEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.points {
		if p.UserID == e.UserID && p.Key == e.Key {
			return false, nil
		}
	}
	e.ID = m.id()
	m.points = append(m.points, *e)
	return true, nil
}

func (m memPoints) Sum(_ context.Context, userID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, p := range m.points {
		if p.UserID == userID {
			total += p.Amount
		}
	}
	return total, nil
}

func (m memPoints) ListRecent(_ context.Context, userID uint, limit int) ([]model.PointEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PointEvent
	for i := len(m.points) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.points[i].UserID == userID {
			out = append(out, m.points[i])
		}
	}
	return out, nil
}

// achievements

func (m memAchievements) FindByCode(_ context.Context, code string) (*model.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.catalog[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m memAchievements) Grant(_ context.Context, userID, achievementID uint, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{userID, achievementID}
	if _, ok := m.earned[key]; ok {
		return false, nil
	}
	m.earned[key] = at
	return true, nil
}

func (m memAchievements) ListEarned(_ context.Context, userID uint) ([]model.EarnedAchievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.EarnedAchievement
	for _, a := range m.catalog {
		if at, ok := m.earned[pairKey{userID, a.ID}]; ok {
			out = append(out, model.EarnedAchievement{Achievement: *a, EarnedAt: at})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// leaderboard

func (m memBoard) entry(userID uint) *model.LeaderboardEntry {
	e, ok := m.board[userID]
	if !ok {
		e = &model.LeaderboardEntry{UserID: userID, League: model.LeagueBronze}
		m.board[userID] = e
	}
	return e
}

func (m memBoard) Upsert(_ context.Context, userID uint, rungs, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(userID)
	e.RungsCompleted, e.TotalPoints = rungs, points
	return nil
}

func (m memBoard) SetTotalPoints(_ context.Context, userID uint, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(userID).TotalPoints = points
	return nil
}

func (m memBoard) FindByUser(_ context.Context, userID uint) (*model.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.board[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (m memBoard) ListTop(_ context.Context, limit int) ([]model.RankedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RankedEntry
	for _, e := range m.board {
		u := m.users[e.UserID]
		if u == nil || !u.Active {
			continue
		}
		out = append(out, model.RankedEntry{
			UserID: e.UserID, Name: u.Name, Email: u.Email,
			RungsCompleted: e.RungsCompleted, TotalPoints: e.TotalPoints, Rank: e.Rank, League: e.League,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		if out[i].RungsCompleted != out[j].RungsCompleted {
			return out[i].RungsCompleted > out[j].RungsCompleted
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memBoard) UpdateRanks(_ context.Context, ranks map[uint]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, rank := range ranks {
		if e, ok := m.board[userID]; ok {
			e.Rank = rank
		}
	}
	return nil
}

// sign-offs

func (m memSignoffs) Create(_ context.Context, r *model.SignoffRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.id()
	cp := *r
	m.signoffs[r.ID] = &cp
	return nil
}

func (m memSignoffs) FindByID(_ context.Context, id uint) (*model.SignoffRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.signoffs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m memSignoffs) FindPending(_ context.Context, userID, levelID uint) (*model.SignoffRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.signoffs {
		if r.UserID == userID && r.LevelID == levelID && r.Status == model.SignoffPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m memSignoffs) Decide(_ context.Context, id uint, status model.SignoffStatus, feedback string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.signoffs[id]
	if !ok || r.Status != model.SignoffPending {
		return false, nil
	}
	r.Status, r.BossFeedback, r.ReviewedAt = status, feedback, &at
	return true, nil
}

func (m memSignoffs) CountRejectedBoss(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.signoffs {
		if r.UserID == userID && r.Status == model.SignoffRejected {
			n++
		}
	}
	return n, nil
}

func (m memSignoffs) CountApprovedBossLevels(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[uint]bool{}
	for _, r := range m.signoffs {
		if l := m.levels[r.LevelID]; r.UserID == userID && r.Status == model.SignoffApproved && l != nil && l.Active && l.IsBossLevel {
			seen[r.LevelID] = true
		}
	}
	return int64(len(seen)), nil
}

func (m memSignoffs) view(r *model.SignoffRequest) model.SignoffView {
	v := model.SignoffView{SignoffRequest: *r}
	if u := m.users[r.UserID]; u != nil {
		v.ConsultantName, v.ConsultantEmail = u.Name, u.Email
	}
	if b := m.users[r.BossID]; b != nil {
		v.BossName = b.Name
	}
	if l := m.levels[r.LevelID]; l != nil {
		v.LevelTitle = l.Title
	}
	return v
}

func (m memSignoffs) list(match func(r *model.SignoffRequest) bool, limit int) []model.SignoffView {
	var out []model.SignoffView
	for _, r := range m.signoffs {
		if match(r) {
			out = append(out, m.view(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m memSignoffs) ListByBoss(_ context.Context, bossID uint, status model.SignoffStatus, limit int) ([]model.SignoffView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(r *model.SignoffRequest) bool {
		return r.BossID == bossID && (status == "" || r.Status == status)
	}, limit), nil
}

func (m memSignoffs) ListByUser(_ context.Context, userID uint) ([]model.SignoffView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(r *model.SignoffRequest) bool { return r.UserID == userID }, 0), nil
}

func (m memSignoffs) FindView(_ context.Context, id uint) (*model.SignoffView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.signoffs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	v := m.view(r)
	return &v, nil
}

// users

func (m memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.id()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m memUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m memUsers) TouchLastLogin(_ context.Context, id uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (m memUsers) related(match func(r model.BossRelationship) (uint, bool)) []model.User {
	var out []model.User
	for _, r := range m.relations {
		if id, ok := match(r); ok && r.Active {
			if u := m.users[id]; u != nil && u.Active {
				out = append(out, *u)
			}
		}
	}
	return out
}

func (m memUsers) ListBossesOf(_ context.Context, consultantID uint) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.related(func(r model.BossRelationship) (uint, bool) { return r.BossID, r.ConsultantID == consultantID }), nil
}

func (m memUsers) IsDirectReport(_ context.Context, bossID, consultantID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.relations {
		if r.Active && r.BossID == bossID && r.ConsultantID == consultantID {
			return true, nil
		}
	}
	return false, nil
}

func (m memUsers) ListTeam(_ context.Context, bossID uint) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.related(func(r model.BossRelationship) (uint, bool) { return r.ConsultantID, r.BossID == bossID }), nil
}

// pathways

func (m memPathways) FindByID(_ context.Context, id uint) (*model.Pathway, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pathways[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m memPathways) FirstLevelID(_ context.Context, pathwayID uint) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *model.PathwayLevel
	for i := range m.pathLevels {
		pl := &m.pathLevels[i]
		if l := m.levels[pl.LevelID]; pl.PathwayID != pathwayID || l == nil || !l.Active {
			continue
		}
		if best == nil || pl.OrderIndex < best.OrderIndex {
			best = pl
		}
	}
	if best == nil {
		return 0, gorm.ErrRecordNotFound
	}
	return best.LevelID, nil
}

func (m memPathways) CreateEnrollment(_ context.Context, e *model.PathwayEnrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.id()
	cp := *e
	m.enrollments[e.ID] = &cp
	return nil
}

func (m memPathways) FindEnrollmentByID(_ context.Context, id uint) (*model.PathwayEnrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (m memPathways) HasEnrollment(_ context.Context, userID, pathwayID uint, status model.EnrollmentStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.enrollments {
		if e.UserID == userID && e.PathwayID == pathwayID && e.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (m memPathways) DecideEnrollment(_ context.Context, id uint, status model.EnrollmentStatus, note string, reviewer uint, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok || e.Status != model.EnrollmentPending {
		return false, nil
	}
	e.Status, e.ResponseNote, e.ReviewedBy, e.ReviewedAt = status, note, &reviewer, &at
	return true, nil
}

func (m memPathways) ListPendingEnrollments(_ context.Context) ([]model.PathwayEnrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PathwayEnrollment
	for _, e := range m.enrollments {
		if e.Status == model.EnrollmentPending {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// cohorts

func (m memCohorts) FindByID(_ context.Context, id uint) (*model.Cohort, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cohorts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memCohorts) ListMemberIDs(_ context.Context, cohortID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint(nil), m.members[cohortID]...), nil
}

func (m memCohorts) AssignPathway(_ context.Context, cp *model.CohortPathway) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{cp.CohortID, cp.PathwayID}
	if m.cohortPaths[key] {
		return false, nil
	}
	m.cohortPaths[key] = true
	return true, nil
}

// memCache is a PageCache without expiry.
type memCache struct {
	mu    sync.Mutex
	pages map[string][]model.RankedEntry
	hits  int
}

func newMemCache() *memCache { return &memCache{pages: map[string][]model.RankedEntry{}} }

func (c *memCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	page, ok := c.pages[key]
	if !ok {
		return false, nil
	}
	c.hits++
	*dst.(*[]model.RankedEntry) = append([]model.RankedEntry(nil), page...)
	return true, nil
}

func (c *memCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key] = append([]model.RankedEntry(nil), v.([]model.RankedEntry)...)
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.pages, k)
	}
	return nil
}

var errStorageDown = errors.New("storage down")

// flakyBoard fails the next Upsert calls, then behaves like the store it wraps.
type flakyBoard struct {
	LeaderboardStore
	failures int
}

func (f *flakyBoard) Upsert(ctx context.Context, userID uint, rungs, points int) error {
	if f.failures > 0 {
		f.failures--
		return errStorageDown
	}
	return f.LeaderboardStore.Upsert(ctx, userID, rungs, points)
}
