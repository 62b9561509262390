package database

import (
	"ladder_backend/internal/model"
	applog "ladder_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 成就目录，按 code 幂等写入
var defaultAchievements = []model.Achievement{
	{Code: "first_test", Title: "First Steps", Description: "Complete your first test", Icon: "🎯", Points: 10},
	{Code: "streak_10", Title: "Dedicated Learner", Description: "Maintain a 10-day streak", Icon: "🔥", Points: 50},
	{Code: "streak_50", Title: "Training Master", Description: "Maintain a 50-day streak", Icon: "💪", Points: 200},
	{Code: "streak_100", Title: "Legend", Description: "Maintain a 100-day streak", Icon: "👑", Points: 500},
	{Code: "level_10", Title: "Rising Star", Description: "Complete 10 levels", Icon: "⭐", Points: 100},
	{Code: "level_25", Title: "Expert", Description: "Complete 25 levels", Icon: "🏆", Points: 250},
	{Code: "level_50", Title: "Master", Description: "Complete 50 levels", Icon: "💎", Points: 500},
	{Code: "perfect_score", Title: "Perfectionist", Description: "Get 100% on a test", Icon: "💯", Points: 25},
	{Code: "speed_demon", Title: "Speed Demon", Description: "Complete a test in under 5 minutes", Icon: "⚡", Points: 30},
	{Code: "comeback", Title: "Never Give Up", Description: "Pass a test after failing", Icon: "💪", Points: 20},
	{Code: "boss_complete", Title: "Boss Slayer", Description: "Complete your first boss level", Icon: "🐉", Points: 75},
	{Code: "boss_perfect", Title: "Boss Master", Description: "Get all boss levels approved without rejection", Icon: "👑", Points: 150},
	{Code: "top_10", Title: "Elite Performer", Description: "Reach top 10 on leaderboard", Icon: "🥇", Points: 100},
	{Code: "top_3", Title: "Podium Finisher", Description: "Reach top 3 on leaderboard", Icon: "🥈", Points: 200},
	{Code: "rank_1", Title: "Champion", Description: "Reach #1 on leaderboard", Icon: "🏅", Points: 500},
}

func SeedAchievements(db *gorm.DB) error {
	rows := make([]model.Achievement, len(defaultAchievements))
	copy(rows, defaultAchievements)
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&rows)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		applog.Log.Info("Achievement catalog seeded", zap.Int64("inserted", res.RowsAffected))
	}
	return nil
}

type seedQuestion struct {
	text    string
	qtype   model.QuestionType
	points  int
	options []model.AnswerOption
}

type seedLevel struct {
	title, description string
	boss               bool
	test               *model.Test
	questions          []seedQuestion
}

// 示例天梯：仅在 levels 表为空时写入
var sampleLadder = []seedLevel{
	{
		title:       "Introduction to Consulting",
		description: "Basic consulting principles and methodologies",
		test:        &model.Test{Title: "Consulting Fundamentals Test", Description: "Test your knowledge of basic consulting principles", PassPercentage: 80, TimeLimitMinutes: 30},
		questions: []seedQuestion{
			{"What is the primary goal of management consulting?", model.QuestionMultipleChoice, 1, []model.AnswerOption{
				{OptionText: "To maximize consultant billable hours", OrderIndex: 1},
				{OptionText: "To help clients solve problems and improve performance", IsCorrect: true, OrderIndex: 2},
				{OptionText: "To replace client management teams", OrderIndex: 3},
				{OptionText: "To audit client finances", OrderIndex: 4},
			}},
			{"The consulting process typically starts with problem identification.", model.QuestionTrueFalse, 1, []model.AnswerOption{
				{OptionText: "True", IsCorrect: true, OrderIndex: 1},
				{OptionText: "False", OrderIndex: 2},
			}},
			{"Describe the key steps in a typical consulting engagement.", model.QuestionOpenText, 2, []model.AnswerOption{
				{OptionText: "Discovery, Analysis, Recommendation, Implementation, Follow-up", IsCorrect: true, OrderIndex: 1},
			}},
		},
	},
	{
		title:       "Client Communication",
		description: "Effective communication strategies with clients",
		test:        &model.Test{Title: "Communication Skills Assessment", Description: "Assess your understanding of client communication", PassPercentage: 80, TimeLimitMinutes: 20},
	},
	{
		title:       "Data Analysis Basics",
		description: "Introduction to data analysis techniques",
		test:        &model.Test{Title: "Data Analysis Quiz", Description: "Test your data analysis knowledge", PassPercentage: 80, TimeLimitMinutes: 25},
	},
	{
		title:       "Boss Level 1: First Project Review",
		description: "Demonstrate your learning from levels 1-3",
		boss:        true,
	},
	{
		title:       "Advanced Problem Solving",
		description: "Complex problem-solving frameworks",
	},
}

func SeedLadder(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Level{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i, sl := range sampleLadder {
			level := &model.Level{
				Title:       sl.title,
				Description: sl.description,
				OrderIndex:  i + 1,
				IsBossLevel: sl.boss,
				Active:      true,
			}
			if err := tx.Create(level).Error; err != nil {
				return err
			}
			if sl.test == nil {
				continue
			}

			test := *sl.test
			test.LevelID = level.ID
			for j, sq := range sl.questions {
				q := model.Question{
					QuestionText: sq.text,
					QuestionType: sq.qtype,
					OrderIndex:   j + 1,
					Points:       sq.points,
					Options:      append([]model.AnswerOption(nil), sq.options...),
				}
				test.Questions = append(test.Questions, q)
			}
			if err := tx.Create(&test).Error; err != nil {
				return err
			}
		}
		applog.Log.Info("Sample ladder seeded", zap.Int("levels", len(sampleLadder)))
		return nil
	})
}
