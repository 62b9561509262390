package controller

import (
	"ladder_backend/internal/service"
	"ladder_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SignoffController serves the consultant side of boss level sign-off.
type SignoffController struct {
	SignoffService *service.SignoffService
	StorageService *service.StorageService
}

func NewSignoffController(signoffService *service.SignoffService, storageService *service.StorageService) *SignoffController {
	return &SignoffController{SignoffService: signoffService, StorageService: storageService}
}

// @Summary 申请签核
// @Description 通过Boss关卡全部测验后，向直属上级提交签核申请
// @Tags 签核
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param levelId path int true "关卡ID"
// @Param body body service.SignoffInput false "证明材料"
// @Success 201 {object} util.Response{data=model.SignoffRequest}
// @Failure 400 {object} util.Response "测验未全部通过或已有待处理申请"
// @Router /api/consultant/levels/{levelId}/request-signoff [post]
func (c *SignoffController) RequestSignoff(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	levelID, ok := util.ParamID(ctx, "levelId")
	if !ok {
		return
	}

	var req service.SignoffInput
	if !bindOptional(ctx, &req) {
		return
	}

	signoff, err := c.SignoffService.Request(ctx.Request.Context(), user.UserID, levelID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, signoff)
}

// @Summary 我的上级
// @Tags 签核
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.User}
// @Router /api/consultant/my-bosses [get]
func (c *SignoffController) GetMyBosses(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	bosses, err := c.SignoffService.MyBosses(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, bosses)
}

// @Summary 我的签核申请
// @Tags 签核
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.SignoffView}
// @Router /api/consultant/signoff-requests [get]
func (c *SignoffController) GetMyRequests(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	requests, err := c.SignoffService.ListMine(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, requests)
}

// UploadEvidence godoc
// @Summary 上传证明材料
// @Description 上传签核证明文件，返回可填入evidenceUrl的地址
// @Tags 签核
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "证明文件"
// @Success 201 {object} util.Response{data=object} "Created"
// @Failure 400 {object} util.Response "文件类型或大小不符"
// @Router /api/consultant/evidence [post]
func (c *SignoffController) UploadEvidence(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "File is required")
		return
	}

	url, err := c.StorageService.UploadEvidence(ctx.Request.Context(), user.UserID, file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"url": url})
}
