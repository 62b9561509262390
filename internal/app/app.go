package app

import (
	"context"
	"errors"
	"ladder_backend/internal/config"
	"ladder_backend/internal/controller"
	"ladder_backend/internal/repository"
	"ladder_backend/internal/service"
	"ladder_backend/internal/util"
	"ladder_backend/pkg/cache"
	"ladder_backend/pkg/configwatcher"
	"ladder_backend/pkg/database"
	"ladder_backend/pkg/logger"
	"ladder_backend/pkg/monitoring"
	"ladder_backend/pkg/security"
	"ladder_backend/pkg/tracing"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	limiter         *security.Limiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	level       *repository.LevelRepository
	test        *repository.TestRepository
	attempt     *repository.AttemptRepository
	progress    *repository.ProgressRepository
	streak      *repository.StreakRepository
	activity    *repository.ActivityRepository
	point       *repository.PointRepository
	achievement *repository.AchievementRepository
	leaderboard *repository.LeaderboardRepository
	signoff     *repository.SignoffRepository
	pathway     *repository.PathwayRepository
	cohort      *repository.CohortRepository
}

type services struct {
	rules       *service.RuleSet
	ledger      *service.PointsLedger
	streak      *service.StreakService
	achievement *service.AchievementService
	leaderboard *service.LeaderboardService
	cascade     *service.CompletionCascade
	progress    *service.ProgressService
	test        *service.TestService
	signoff     *service.SignoffService
	team        *service.TeamService
	stats       *service.StatsService
	enrollment  *service.EnrollmentService
	auth        *service.AuthService
	storage     *service.StorageService
}

type controllers struct {
	auth        *controller.AuthController
	level       *controller.LevelController
	test        *controller.TestController
	signoff     *controller.SignoffController
	boss        *controller.BossController
	achievement *controller.AchievementController
	enrollment  *controller.EnrollmentController
	health      *controller.HealthController
}

// RegisterConfigCallback runs callback with every configuration reloaded from disk.
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		level:       repository.NewLevelRepository(db),
		test:        repository.NewTestRepository(db),
		attempt:     repository.NewAttemptRepository(db),
		progress:    repository.NewProgressRepository(db),
		streak:      repository.NewStreakRepository(db),
		activity:    repository.NewActivityRepository(db),
		point:       repository.NewPointRepository(db),
		achievement: repository.NewAchievementRepository(db),
		leaderboard: repository.NewLeaderboardRepository(db),
		signoff:     repository.NewSignoffRepository(db),
		pathway:     repository.NewPathwayRepository(db),
		cohort:      repository.NewCohortRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.rules = service.NewRuleSet(service.RulesFromConfig(cfg.Gamification))
	s.ledger = service.NewPointsLedger(repos.point, repos.streak, repos.leaderboard)
	s.streak = service.NewStreakService(repos.streak, repos.activity, s.ledger, s.rules)
	s.achievement = service.NewAchievementService(
		repos.achievement,
		repos.attempt,
		repos.progress,
		repos.streak,
		repos.signoff,
		repos.level,
		s.ledger,
	)

	var pages service.PageCache
	if rdb != nil {
		pages = cache.NewRedisCache(rdb, "ladder")
	}
	s.leaderboard = service.NewLeaderboardService(repos.leaderboard, pages, s.rules)

	s.cascade = service.NewCompletionCascade(
		repos.level,
		repos.progress,
		repos.activity,
		repos.leaderboard,
		s.ledger,
		s.rules,
	)
	s.progress = service.NewProgressService(repos.level, repos.test, repos.attempt, repos.progress, s.cascade)
	s.test = service.NewTestService(
		repos.test,
		repos.attempt,
		repos.activity,
		s.progress,
		s.streak,
		s.achievement,
		s.rules,
	)
	s.signoff = service.NewSignoffService(
		repos.signoff,
		repos.user,
		repos.level,
		repos.attempt,
		s.progress,
		s.achievement,
	)
	s.team = service.NewTeamService(repos.user, s.leaderboard, s.progress)
	s.stats = service.NewStatsService(repos.streak, repos.point, s.achievement, s.leaderboard)
	s.enrollment = service.NewEnrollmentService(repos.pathway, repos.cohort, repos.user, repos.progress)
	s.auth = service.NewAuthService(repos.user, s.streak, s.achievement, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	s.storage = service.NewStorageService(&cfg.Storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		level:       controller.NewLevelController(s.progress),
		test:        controller.NewTestController(s.test),
		signoff:     controller.NewSignoffController(s.signoff, s.storage),
		boss:        controller.NewBossController(s.team, s.signoff),
		achievement: controller.NewAchievementController(s.achievement, s.stats, s.leaderboard),
		enrollment:  controller.NewEnrollmentController(s.enrollment),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the periodic jobs until ctx is done.
func (a *App) startBackgroundTasks(ctx context.Context) {
	go a.limiter.Run(ctx)

	interval := time.Duration(a.Config.Gamification.RankRefreshMinutes) * time.Minute
	if interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := a.services.leaderboard.Refresh(ctx); err != nil {
						logger.Log.Error("Leaderboard refresh failed", zap.Error(err))
					}
				}
			}
		}()
	}

	if a.Config.Path != "" {
		go func() {
			err := configwatcher.WatchConfig(ctx, a.Config.Path, func(cfg *config.Config) {
				for _, callback := range a.configCallbacks {
					callback(cfg)
				}
			})
			if err != nil {
				logger.Log.Warn("Config watcher stopped", zap.Error(err))
			}
		}()
	}
}

// build assembles the application around an open database. Redis is optional.
func build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		limiter: security.NewLimiter(cfg.RateLimit),
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	app.RegisterConfigCallback(func(c *config.Config) {
		app.services.rules.Store(service.RulesFromConfig(c.Gamification))
		logger.Log.Info("Gamification rules reloaded",
			zap.Int("testDayPoints", c.Gamification.TestDayPoints),
			zap.Int("bossBonusPoints", c.Gamification.BossBonusPoints))
	})

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}
	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Log.Info("Database migrated")
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			// the leaderboard works uncached
			logger.Log.Warn("Redis unavailable, leaderboard cache disabled", zap.Error(err))
			rdb = nil
		}
	}

	// 监控初始化
	monitoring.Init()

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app := build(cfg, db, rdb)
	app.tracer = tp
	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.startBackgroundTasks(ctx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
	_ = logger.Log.Sync()
}
