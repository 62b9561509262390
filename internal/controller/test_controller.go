package controller

import (
	"encoding/json"
	"ladder_backend/internal/service"
	"ladder_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

// SubmitTestRequest carries answers keyed by question id.
type SubmitTestRequest struct {
	Answers map[string]json.RawMessage `json:"answers" binding:"required"`
}

// @Summary 获取测验
// @Description 返回测验题目，不包含答案
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Param testId path int true "测验ID"
// @Success 200 {object} util.Response{data=service.TestView}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/consultant/tests/{testId} [get]
func (c *TestController) GetTest(ctx *gin.Context) {
	testID, ok := util.ParamID(ctx, "testId")
	if !ok {
		return
	}

	view, err := c.TestService.GetTest(ctx.Request.Context(), testID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 提交测验
// @Description 评分并记录作答，通过后推进关卡进度与积分
// @Tags 测验
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param testId path int true "测验ID"
// @Param body body SubmitTestRequest true "答案"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "关卡未解锁"
// @Router /api/consultant/tests/{testId}/submit [post]
func (c *TestController) SubmitTest(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	testID, ok := util.ParamID(ctx, "testId")
	if !ok {
		return
	}

	var req SubmitTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answers := make(map[uint]json.RawMessage, len(req.Answers))
	for key, value := range req.Answers {
		id, err := strconv.ParseUint(key, 10, 32)
		if err != nil || id == 0 {
			util.BadRequest(ctx, "invalid question id "+strconv.Quote(key))
			return
		}
		answers[uint(id)] = value
	}

	result, err := c.TestService.SubmitTest(ctx.Request.Context(), user.UserID, testID, answers)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 测验历史
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.AttemptSummary}
// @Router /api/consultant/test-history [get]
func (c *TestController) GetHistory(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	history, err := c.TestService.History(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, history)
}
