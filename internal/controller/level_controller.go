package controller

import (
	"ladder_backend/internal/service"
	"ladder_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LevelController struct {
	ProgressService *service.ProgressService
}

func NewLevelController(progressService *service.ProgressService) *LevelController {
	return &LevelController{ProgressService: progressService}
}

// @Summary 获取晋升阶梯
// @Description 按顺序返回所有启用关卡及当前用户在每一级的状态
// @Tags 阶梯
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]service.LadderRung}
// @Router /api/consultant/ladder [get]
func (c *LevelController) GetLadder(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	ladder, err := c.ProgressService.Ladder(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, ladder)
}

// @Summary 获取关卡详情
// @Tags 阶梯
// @Security BearerAuth
// @Produce json
// @Param levelId path int true "关卡ID"
// @Success 200 {object} util.Response{data=service.LevelDetail}
// @Failure 404 {object} util.Response "关卡不存在"
// @Router /api/consultant/levels/{levelId} [get]
func (c *LevelController) GetLevel(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	levelID, ok := util.ParamID(ctx, "levelId")
	if !ok {
		return
	}

	detail, err := c.ProgressService.LevelDetail(ctx.Request.Context(), user.UserID, levelID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 开始关卡
// @Description 已解锁的关卡进入进行中状态，重复调用不改变状态
// @Tags 阶梯
// @Security BearerAuth
// @Produce json
// @Param levelId path int true "关卡ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "关卡未解锁"
// @Router /api/consultant/levels/{levelId}/start [post]
func (c *LevelController) StartLevel(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	levelID, ok := util.ParamID(ctx, "levelId")
	if !ok {
		return
	}

	status, err := c.ProgressService.StartLevel(ctx.Request.Context(), user.UserID, levelID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"levelId": levelID, "status": status})
}
