package controller

import (
	"ladder_backend/internal/service"
	"ladder_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
	StatsService       *service.StatsService
	LeaderboardService *service.LeaderboardService
}

func NewAchievementController(
	achievementService *service.AchievementService,
	statsService *service.StatsService,
	leaderboardService *service.LeaderboardService,
) *AchievementController {
	return &AchievementController{
		AchievementService: achievementService,
		StatsService:       statsService,
		LeaderboardService: leaderboardService,
	}
}

// @Summary 获取我的成就
// @Tags 成就
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.EarnedAchievement}
// @Router /api/consultant/achievements [get]
func (c *AchievementController) GetAchievements(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	earned, err := c.AchievementService.ListEarned(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, earned)
}

// @Summary 个人统计
// @Description 连续登录、成就、排行榜位置与最近积分流水
// @Tags 成就
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=service.UserStats}
// @Router /api/consultant/stats [get]
func (c *AchievementController) GetStats(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	stats, err := c.StatsService.ForUser(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 排行榜
// @Tags 成就
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.RankedEntry}
// @Router /api/consultant/leaderboard [get]
func (c *AchievementController) GetLeaderboard(ctx *gin.Context) {
	rows, err := c.LeaderboardService.Top(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// @Summary 刷新排行榜
// @Description 重新计算排名并清除缓存
// @Tags 管理
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/leaderboard/refresh [post]
func (c *AchievementController) RefreshLeaderboard(ctx *gin.Context) {
	if err := c.LeaderboardService.Refresh(ctx.Request.Context()); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
