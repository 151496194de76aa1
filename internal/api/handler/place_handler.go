package handler

import (
	"HalalCalendar/internal/api/dto"
	"HalalCalendar/internal/api/middleware"
	"HalalCalendar/internal/pkg/response"
	"HalalCalendar/internal/pkg/util"
	"HalalCalendar/internal/service"

	"github.com/gin-gonic/gin"
)

type PlaceHandler struct {
	placeSvc service.PlaceService
}

func NewPlaceHandler(placeSvc service.PlaceService) *PlaceHandler {
	return &PlaceHandler{placeSvc: placeSvc}
}

// Suggest 地点联想
func (s *PlaceHandler) Suggest(c *gin.Context) {
	var query dto.PlaceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&query); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.placeSvc.Suggest(c.Request.Context(), middleware.CallerFrom(c), query.Q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
