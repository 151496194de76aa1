package response

import (
	"HalalCalendar/internal/api/dto"
	"HalalCalendar/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	Created             = 201
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

// Success 成功返回封装
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// SuccessCreated 创建成功返回封装
func SuccessCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.Response{
		Code:    Created,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装，HTTP 状态码与业务码一致
func Fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, dto.Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// Error 处理错误
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, service.ErrParamInvalid.Error())
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeError) {
		Fail(c, BadRequest, "Json错误")
		return
	}

	for target, code := range service.ErrorMap {
		if errors.Is(err, target) {
			Fail(c, code, target.Error())
			return
		}
	}

	log.ErrorContext(c.Request.Context(), "unhandled error", "path", c.FullPath(), "err", err)
	Fail(c, InternalServerError, service.UnExpectedError.Error())
}
