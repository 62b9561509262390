package database

import (
	"fmt"
	"ladder_backend/internal/config"
	"ladder_backend/internal/model"
	applog "ladder_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dialector picks the gorm driver for cfg.Driver; an empty driver means mysql.
func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	applog.Log.Info("Database connection established", zap.String("driver", d.Name()))
	return db, nil
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.BossRelationship{},
		&model.Level{},
		&model.Test{},
		&model.Question{},
		&model.AnswerOption{},
		&model.TestAttempt{},
		&model.UserAnswer{},
		&model.UserProgress{},
		&model.UserStreak{},
		&model.ActivityLog{},
		&model.PointEvent{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.LeaderboardEntry{},
		&model.SignoffRequest{},
		&model.Pathway{},
		&model.PathwayLevel{},
		&model.PathwayEnrollment{},
		&model.Cohort{},
		&model.CohortMember{},
		&model.CohortPathway{},
	}
}

// Migrate creates or updates the schema and seeds reference data.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	applog.Log.Info("Database migration completed")

	if err := SeedAchievements(db); err != nil {
		return fmt.Errorf("seed achievements: %w", err)
	}
	if err := SeedLadder(db); err != nil {
		return fmt.Errorf("seed ladder: %w", err)
	}
	return nil
}
