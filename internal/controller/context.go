package controller

import (
	"errors"
	"io"
	"ladder_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// currentUser returns the authenticated principal, answering 401 when there is none.
func currentUser(ctx *gin.Context) (*util.Claims, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return claims, true
}

// bindOptional binds an optional JSON body and validates it. An empty body leaves dst zeroed.
func bindOptional(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		util.BadRequest(ctx, err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		util.BadRequest(ctx, err.Error())
		return false
	}
	return true
}
