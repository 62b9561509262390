package service

// Outcome is a fact produced by a state change. Producers return outcomes and
// AchievementService reacts to them once the change is stored.
type Outcome interface {
	outcome()
}

type TestPassed struct {
	UserID  uint
	TestID  uint
	Perfect bool
}

// LevelCompleted is reported by every cascade run; Repeat marks a run on an already completed level.
type LevelCompleted struct {
	UserID  uint
	LevelID uint
	Boss    bool
	Repeat  bool
}

type LevelAwaitingSignoff struct {
	UserID  uint
	LevelID uint
}

type SignoffApproved struct {
	UserID    uint
	LevelID   uint
	RequestID uint
}

type LoginRecorded struct {
	UserID uint
	Streak int
}

func (TestPassed) outcome()           {}
func (LevelCompleted) outcome()       {}
func (LevelAwaitingSignoff) outcome() {}
func (SignoffApproved) outcome()      {}
func (LoginRecorded) outcome()        {}
