package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"ladder_backend/internal/config"
	"ladder_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "0", Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "ladder.db")},
		JWT:      config.JWTConfig{Secret: "app-test-secret", ExpireTime: time.Hour},
		Storage:  config.StorageConfig{Type: "local", LocalPath: t.TempDir(), MaxUploadMB: 1},
		Gamification: config.GamificationConfig{
			DefaultPassPercentage: 80,
			TestDayPoints:         10,
			BossBonusPoints:       100,
			HotspotTolerance:      50,
			LeaderboardLimit:      10,
		},
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, database.Migrate(db))
	return build(cfg, db, nil)
}

func call(t *testing.T, a *App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func TestRegisterLoginAndBrowseLadder(t *testing.T) {
	a := newTestApp(t)

	code, _ := call(t, a, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Quinn", "email": "Quinn@Example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := call(t, a, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "quinn@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var login struct {
		Token       string `json:"token"`
		LoginStreak int    `json:"loginStreak"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, 1, login.LoginStreak)

	code, env = call(t, a, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "quinn@example.com", me.Email)
	assert.Equal(t, "consultant", me.Role)

	code, env = call(t, a, http.MethodGet, "/api/consultant/ladder", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var ladder []struct {
		LevelID     uint   `json:"levelId"`
		OrderIndex  int    `json:"orderIndex"`
		IsBossLevel bool   `json:"isBossLevel"`
		Status      string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ladder))
	require.Len(t, ladder, 5)
	for i, rung := range ladder {
		assert.Equal(t, i+1, rung.OrderIndex)
		assert.Equal(t, "locked", rung.Status)
	}
	assert.True(t, ladder[3].IsBossLevel)

	code, env = call(t, a, http.MethodPost, "/api/consultant/levels/"+itoa(ladder[0].LevelID)+"/start", login.Token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = call(t, a, http.MethodPost, "/api/consultant/levels/"+itoa(ladder[1].LevelID)+"/start", login.Token, nil)
	assert.Equal(t, http.StatusForbidden, code, env.Message)
}

func TestRoutesEnforceAuthAndRoles(t *testing.T) {
	a := newTestApp(t)

	code, _ := call(t, a, http.MethodGet, "/api/consultant/ladder", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, a, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ira", "email": "ira@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, code)
	_, env := call(t, a, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ira@example.com", "password": "correct-horse",
	})
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))

	code, _ = call(t, a, http.MethodGet, "/api/boss/team", login.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = call(t, a, http.MethodPost, "/api/admin/leaderboard/refresh", login.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, a, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ira@example.com", "password": "wrong-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHealthReportsDatabase(t *testing.T) {
	a := newTestApp(t)

	code, env := call(t, a, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, code)
	var health struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "up", health.Components["database"])
	assert.Equal(t, "disabled", health.Components["cache"])
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
