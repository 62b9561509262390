package controller

import (
	"ladder_backend/internal/service"
	"ladder_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// BossController serves team oversight and sign-off review.
type BossController struct {
	TeamService    *service.TeamService
	SignoffService *service.SignoffService
}

func NewBossController(teamService *service.TeamService, signoffService *service.SignoffService) *BossController {
	return &BossController{TeamService: teamService, SignoffService: signoffService}
}

// SignoffFeedback is the body of approve and reject.
type SignoffFeedback struct {
	Feedback string `json:"feedback" validate:"max=5000"`
}

// @Summary 我的团队
// @Tags 上级
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]service.TeamMember}
// @Router /api/boss/team [get]
func (c *BossController) GetTeam(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	team, err := c.TeamService.Team(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, team)
}

// @Summary 团队成员进度
// @Tags 上级
// @Security BearerAuth
// @Produce json
// @Param userId path int true "成员ID"
// @Success 200 {object} util.Response{data=[]service.LadderRung}
// @Failure 403 {object} util.Response "非直属下级"
// @Router /api/boss/team/{userId}/progress [get]
func (c *BossController) GetMemberProgress(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	memberID, ok := util.ParamID(ctx, "userId")
	if !ok {
		return
	}

	ladder, err := c.TeamService.MemberProgress(ctx.Request.Context(), user.UserID, memberID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, ladder)
}

// @Summary 待处理签核
// @Tags 上级
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.SignoffView}
// @Router /api/boss/signoff-requests [get]
func (c *BossController) GetPending(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	requests, err := c.SignoffService.ListPending(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, requests)
}

// @Summary 全部签核记录
// @Tags 上级
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.SignoffView}
// @Router /api/boss/signoff-requests/all [get]
func (c *BossController) GetAll(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	requests, err := c.SignoffService.ListAll(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, requests)
}

// @Summary 签核详情
// @Description 返回申请及申请人在该关卡的作答记录
// @Tags 上级
// @Security BearerAuth
// @Produce json
// @Param requestId path int true "申请ID"
// @Success 200 {object} util.Response{data=service.SignoffDetail}
// @Failure 404 {object} util.Response "申请不存在"
// @Router /api/boss/signoff-requests/{requestId} [get]
func (c *BossController) GetDetail(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	requestID, ok := util.ParamID(ctx, "requestId")
	if !ok {
		return
	}

	detail, err := c.SignoffService.Detail(ctx.Request.Context(), requestID, user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 批准签核
// @Tags 上级
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param requestId path int true "申请ID"
// @Param body body SignoffFeedback false "反馈"
// @Success 200 {object} util.Response{data=service.SignoffDecision}
// @Failure 400 {object} util.Response "申请已处理"
// @Router /api/boss/signoff-requests/{requestId}/approve [post]
func (c *BossController) Approve(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	requestID, ok := util.ParamID(ctx, "requestId")
	if !ok {
		return
	}

	var req SignoffFeedback
	if !bindOptional(ctx, &req) {
		return
	}

	decision, err := c.SignoffService.Approve(ctx.Request.Context(), requestID, user.UserID, req.Feedback)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, decision)
}

// @Summary 驳回签核
// @Description 驳回必须填写反馈，关卡回到进行中状态
// @Tags 上级
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param requestId path int true "申请ID"
// @Param body body SignoffFeedback true "反馈"
// @Success 200 {object} util.Response{data=model.SignoffRequest}
// @Failure 400 {object} util.Response "缺少反馈或申请已处理"
// @Router /api/boss/signoff-requests/{requestId}/reject [post]
func (c *BossController) Reject(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	requestID, ok := util.ParamID(ctx, "requestId")
	if !ok {
		return
	}

	var req SignoffFeedback
	if !bindOptional(ctx, &req) {
		return
	}

	signoff, err := c.SignoffService.Reject(ctx.Request.Context(), requestID, user.UserID, req.Feedback)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, signoff)
}
