package handler

import (
	"HalalCalendar/internal/api/middleware"
	"HalalCalendar/internal/pkg/response"
	"HalalCalendar/internal/service"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	mediaSvc service.MediaService
}

func NewMediaHandler(mediaSvc service.MediaService) *MediaHandler {
	return &MediaHandler{mediaSvc: mediaSvc}
}

// Upload 上传单张图片，返回公开 URL
func (s *MediaHandler) Upload(c *gin.Context) {
	upload, file, err := openUpload(c, "file")
	if err != nil || upload == nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer func() { _ = file.Close() }()

	res, err := s.mediaSvc.UploadImage(c.Request.Context(), middleware.CallerFrom(c), upload)
	if err != nil {
		response.Error(c, err)
		return
	}

	log.InfoContext(c.Request.Context(), "media upload success", "url", res.URL, "original", upload.Name)
	response.Success(c, res)
}
