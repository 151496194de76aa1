package handler

import (
	"HalalCalendar/internal/api/middleware"
	"HalalCalendar/internal/pkg/response"
	"HalalCalendar/internal/service"

	"github.com/gin-gonic/gin"
)

type PostActionHandler struct {
	actionSvc service.PostActionService
}

func NewPostActionHandler(actionSvc service.PostActionService) *PostActionHandler {
	return &PostActionHandler{
		actionSvc: actionSvc,
	}
}

// ToggleLike 点赞/取消点赞帖子
func (s *PostActionHandler) ToggleLike(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.actionSvc.ToggleLike(c.Request.Context(), middleware.CallerFrom(c), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// LikeStatus 当前用户是否已点赞
func (s *PostActionHandler) LikeStatus(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.actionSvc.LikeStatus(c.Request.Context(), middleware.CallerFrom(c), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
