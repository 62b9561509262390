package app

import (
	"ladder_backend/internal/config"
	"ladder_backend/internal/middleware"
	"ladder_backend/internal/model"
	"ladder_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret), a.limiter.Middleware())
	{
		authGroup.GET("/auth/me", c.auth.Me)

		// 顾问接口
		a.registerConsultantRoutes(authGroup, c)

		// 上级接口
		a.registerBossRoutes(authGroup, c)

		// 管理员接口
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api/auth")
	public.Use(a.limiter.Middleware())
	{
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerConsultantRoutes(group *gin.RouterGroup, c *controllers) {
	consultant := group.Group("/consultant")
	{
		consultant.GET("/ladder", c.level.GetLadder)
		consultant.GET("/levels/:levelId", c.level.GetLevel)
		consultant.POST("/levels/:levelId/start", c.level.StartLevel)
		consultant.POST("/levels/:levelId/request-signoff", c.signoff.RequestSignoff)

		consultant.GET("/tests/:testId", c.test.GetTest)
		consultant.POST("/tests/:testId/submit", c.test.SubmitTest)
		consultant.GET("/test-history", c.test.GetHistory)

		consultant.GET("/my-bosses", c.signoff.GetMyBosses)
		consultant.GET("/signoff-requests", c.signoff.GetMyRequests)
		consultant.POST("/evidence", c.signoff.UploadEvidence)

		consultant.GET("/achievements", c.achievement.GetAchievements)
		consultant.GET("/stats", c.achievement.GetStats)
		consultant.GET("/leaderboard", c.achievement.GetLeaderboard)

		consultant.POST("/pathways/:id/request", c.enrollment.RequestEnrollment)
	}
}

func (a *App) registerBossRoutes(group *gin.RouterGroup, c *controllers) {
	boss := group.Group("/boss")
	boss.Use(middleware.RoleMiddleware(model.Boss))
	{
		boss.GET("/team", c.boss.GetTeam)
		boss.GET("/team/:userId/progress", c.boss.GetMemberProgress)

		boss.GET("/signoff-requests", c.boss.GetPending)
		boss.GET("/signoff-requests/all", c.boss.GetAll)
		boss.GET("/signoff-requests/:requestId", c.boss.GetDetail)
		boss.POST("/signoff-requests/:requestId/approve", c.boss.Approve)
		boss.POST("/signoff-requests/:requestId/reject", c.boss.Reject)

		boss.GET("/enrollment-requests", c.enrollment.GetPending)
		boss.POST("/enrollment-requests/:id/approve", c.enrollment.Approve)
		boss.POST("/enrollment-requests/:id/reject", c.enrollment.Reject)
	}
}

func (a *App) registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	admin := group.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/enrollment-requests", c.enrollment.GetPending)
		admin.POST("/enrollment-requests/:id/approve", c.enrollment.Approve)
		admin.POST("/enrollment-requests/:id/reject", c.enrollment.Reject)

		admin.POST("/cohorts/:id/pathways", c.enrollment.AssignCohort)
		admin.POST("/leaderboard/refresh", c.achievement.RefreshLeaderboard)
	}
}
