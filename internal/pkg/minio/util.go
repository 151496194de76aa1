package minio

import (
	"HalalCalendar/internal/api/config"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// UploadFile 上传文件到MinIO
func UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if Client == nil {
		return "", fmt.Errorf("minio client is not initialized")
	}

	uploadInfo, err := Client.PutObject(ctx, MainBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return uploadInfo.Key, nil
}

// DeleteFile 删除MinIO中的文件
func DeleteFile(ctx context.Context, objectName string) error {
	if Client == nil {
		return fmt.Errorf("minio client is not initialized")
	}
	if err := Client.RemoveObject(ctx, MainBucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetPublicURL 获取文件的公共访问URL
func GetPublicURL(objectName string) string {
	cfg := config.Cfg.MinIO

	protocol := "http"
	if cfg.ExternalUseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, cfg.ExternalEndpoint, MainBucket, strings.TrimPrefix(objectName, "/"))
}

// Host 对外提供的媒体托管实现
type Host struct{}

func NewHost() *Host {
	return &Host{}
}

// Upload 上传并返回公开 URL
func (s *Host) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	key, err := UploadFile(ctx, objectName, reader, size, contentType)
	if err != nil {
		return "", err
	}
	return GetPublicURL(key), nil
}

// Remove 按公开 URL 删除对象
func (s *Host) Remove(ctx context.Context, url string) error {
	prefix := GetPublicURL("")
	if !strings.HasPrefix(url, prefix) {
		return fmt.Errorf("url %q is not hosted in bucket %s", url, MainBucket)
	}
	return DeleteFile(ctx, strings.TrimPrefix(url, prefix))
}
