package service

import (
	"HalalCalendar/internal/api/dto"
	"HalalCalendar/internal/pkg/consts"
	"HalalCalendar/internal/pkg/util"
	"bytes"
	"context"
	"fmt"
	"io"
	log "log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaHost 外部图片托管
type MediaHost interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, url string) error
}

type MediaService interface {
	UploadImage(ctx context.Context, caller *Caller, file *dto.UploadFile) (*dto.MediaUploadDTO, error)
	StoreImage(ctx context.Context, file *dto.UploadFile) (string, error)
	DiscardImage(ctx context.Context, url string)
}

type mediaServiceImpl struct {
	host     MediaHost
	maxWidth int
	maxSize  int64
}

func NewMediaService(host MediaHost, maxWidth int, maxSize int64) MediaService {
	return &mediaServiceImpl{
		host:     host,
		maxWidth: maxWidth,
		maxSize:  maxSize,
	}
}

// UploadImage 独立上传入口，仅管理员可用
func (s *mediaServiceImpl) UploadImage(ctx context.Context, caller *Caller, file *dto.UploadFile) (*dto.MediaUploadDTO, error) {
	if !IsAdmin(caller) {
		return nil, ErrUnauthorized
	}
	url, err := s.StoreImage(ctx, file)
	if err != nil {
		return nil, err
	}
	return &dto.MediaUploadDTO{URL: url}, nil
}

// StoreImage 校验类型、按最大宽度缩放后上传，返回公开 URL
func (s *mediaServiceImpl) StoreImage(ctx context.Context, file *dto.UploadFile) (string, error) {
	if file == nil || file.Reader == nil {
		return "", ErrParamInvalid
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, s.maxSize)
	}

	contentType, err := util.GetSafeContentType(file.Reader)
	if err != nil {
		return "", ErrParamInvalid
	}
	if !strings.HasPrefix(contentType, consts.MimePrefixImage) {
		return "", ErrFileNotSupported
	}

	var (
		reader io.Reader = file.Reader
		size             = file.Size
	)
	data, resized, err := util.ResizeImage(file.Reader, contentType, s.maxWidth)
	if err != nil {
		log.WarnContext(ctx, "image resize failed, uploading original", "name", file.Name, "err", err)
	}
	if resized {
		reader = bytes.NewReader(data)
		size = int64(len(data))
	} else if _, err = file.Reader.Seek(0, io.SeekStart); err != nil {
		return "", ErrParamInvalid
	}

	objectName := time.Now().Format("2006/01/02/") + uuid.NewString() + imageExt(file.Name, contentType)
	url, err := s.host.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		log.ErrorContext(ctx, "media host upload failed", "object", objectName, "err", err)
		return "", ErrExternalService
	}

	log.InfoContext(ctx, "image stored", "object", objectName, "type", contentType, "resized", resized)
	return url, nil
}

// DiscardImage 删除已上传但未被引用的图片，失败只记录日志
func (s *mediaServiceImpl) DiscardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.host.Remove(ctx, url); err != nil {
		log.WarnContext(ctx, "discard orphan image failed", "url", url, "err", err)
		return
	}
	log.InfoContext(ctx, "orphan image discarded", "url", url)
}

func imageExt(name, contentType string) string {
	if ext := strings.ToLower(path.Ext(name)); ext != "" {
		return ext
	}
	return "." + strings.TrimPrefix(contentType, consts.MimePrefixImage)
}
