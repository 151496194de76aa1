package handler

import (
	"HalalCalendar/internal/api/dto"
	"HalalCalendar/internal/api/middleware"
	"HalalCalendar/internal/pkg/consts"
	"HalalCalendar/internal/pkg/response"
	"HalalCalendar/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{
		userSvc: userSvc,
	}
}

func (s *UserHandler) Register(c *gin.Context) {
	var registerDTO dto.RegisterDTO
	if err := c.ShouldBindJSON(&registerDTO); err != nil {
		response.Error(c, err)
		return
	}

	user, err := s.userSvc.Register(c.Request.Context(), &registerDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessCreated(c, user)
}

func (s *UserHandler) Login(c *gin.Context) {
	var loginDTO dto.CredentialDTO
	if err := c.ShouldBindJSON(&loginDTO); err != nil {
		response.Error(c, err)
		return
	}

	token, err := s.userSvc.Login(c.Request.Context(), &loginDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, token)
}

func (s *UserHandler) Logout(c *gin.Context) {
	if err := s.userSvc.Logout(c.Request.Context(), c.GetString(consts.TokenKey)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) GetUserInfo(c *gin.Context) {
	user, err := s.userSvc.GetUserInfo(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}
