package controller

import (
	"context"
	"ladder_backend/internal/model"
	"ladder_backend/internal/service"
	"ladder_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// EnrollmentController serves pathway enrollment for consultants, bosses and admins.
type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// ReviewNote is the body of an enrollment decision.
type ReviewNote struct {
	Note string `json:"note" validate:"max=2000"`
}

// @Summary 申请加入学习路径
// @Tags 学习路径
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "路径ID"
// @Param body body service.EnrollmentInput false "申请说明"
// @Success 201 {object} util.Response{data=model.PathwayEnrollment}
// @Failure 400 {object} util.Response "已申请或已加入"
// @Router /api/consultant/pathways/{id}/request [post]
func (c *EnrollmentController) RequestEnrollment(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	pathwayID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	var req service.EnrollmentInput
	if !bindOptional(ctx, &req) {
		return
	}

	enrollment, err := c.EnrollmentService.Request(ctx.Request.Context(), user.UserID, pathwayID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// @Summary 待审核的路径申请
// @Description 上级只看到直属下级的申请，管理员看到全部
// @Tags 学习路径
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.PathwayEnrollment}
// @Router /api/boss/enrollment-requests [get]
// @Router /api/admin/enrollment-requests [get]
func (c *EnrollmentController) GetPending(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	pending, err := c.EnrollmentService.ListPending(ctx.Request.Context(), user.UserID, user.Role)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, pending)
}

// @Summary 批准路径申请
// @Tags 学习路径
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "申请ID"
// @Param body body ReviewNote false "审核备注"
// @Success 200 {object} util.Response{data=model.PathwayEnrollment}
// @Router /api/boss/enrollment-requests/{id}/approve [post]
// @Router /api/admin/enrollment-requests/{id}/approve [post]
func (c *EnrollmentController) Approve(ctx *gin.Context) {
	c.review(ctx, c.EnrollmentService.Approve)
}

// @Summary 驳回路径申请
// @Tags 学习路径
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "申请ID"
// @Param body body ReviewNote false "审核备注"
// @Success 200 {object} util.Response{data=model.PathwayEnrollment}
// @Router /api/boss/enrollment-requests/{id}/reject [post]
// @Router /api/admin/enrollment-requests/{id}/reject [post]
func (c *EnrollmentController) Reject(ctx *gin.Context) {
	c.review(ctx, c.EnrollmentService.Reject)
}

type reviewFunc func(ctx context.Context, reviewerID uint, role model.UserRole, enrollmentID uint, note string) (*model.PathwayEnrollment, error)

func (c *EnrollmentController) review(ctx *gin.Context, decide reviewFunc) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	enrollmentID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	var req ReviewNote
	if !bindOptional(ctx, &req) {
		return
	}

	enrollment, err := decide(ctx.Request.Context(), user.UserID, user.Role, enrollmentID, req.Note)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// @Summary 为班级分配学习路径
// @Description 为班级全部成员解锁路径首个关卡
// @Tags 管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "班级ID"
// @Param body body service.CohortAssignInput true "路径"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "班级或路径不存在"
// @Router /api/admin/cohorts/{id}/pathways [post]
func (c *EnrollmentController) AssignCohort(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	cohortID, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	var req service.CohortAssignInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := validate.Struct(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	unlocked, err := c.EnrollmentService.AssignCohort(ctx.Request.Context(), user.UserID, cohortID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"cohortId": cohortID, "pathwayId": req.PathwayID, "unlocked": unlocked})
}
