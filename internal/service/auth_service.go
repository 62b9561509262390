package service

import (
	"context"
	"errors"
	"fmt"
	"ladder_backend/internal/model"
	"ladder_backend/internal/util"
	"ladder_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginResult struct {
	Token           string              `json:"token"`
	User            *model.User         `json:"user"`
	LoginStreak     int                 `json:"loginStreak"`
	NewAchievements []model.Achievement `json:"newAchievements,omitempty"`
}

type AuthService struct {
	Users        UserStore
	Streaks      *StreakService
	Achievements *AchievementService
	JWTSecret    string
	JWTExpire    time.Duration
	Now          func() time.Time
}

func NewAuthService(users UserStore, streaks *StreakService, achievements *AchievementService, secret string, expire time.Duration) *AuthService {
	return &AuthService{
		Users:        users,
		Streaks:      streaks,
		Achievements: achievements,
		JWTSecret:    secret,
		JWTExpire:    expire,
		Now:          time.Now,
	}
}

// Register 注册新的顾问账号
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	_, err := s.Users.FindByEmail(ctx, email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hashed),
		Role:     model.Consultant,
		Active:   true,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials, records the login streak and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.Active {
		return nil, util.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	now := s.Now()
	if err := s.Users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("touch last login: %w", err)
	}
	user.LastLogin = &now

	login, err := s.Streaks.RecordLogin(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	granted, err := s.Achievements.React(ctx, user.ID, []Outcome{login})
	if err != nil {
		return nil, err
	}

	token, err := util.GenerateJWT(user, s.JWTSecret, s.JWTExpire)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	logger.Log.Info("User logged in", zap.Uint("userID", user.ID), zap.Int("loginStreak", login.Streak))
	return &LoginResult{Token: token, User: user, LoginStreak: login.Streak, NewAchievements: granted}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}
