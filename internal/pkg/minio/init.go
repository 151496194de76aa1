package minio

import (
	"HalalCalendar/internal/api/config"
	"context"
	"fmt"
	log "log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	// Client 全局 MinIO 客户端实例
	Client *minio.Client
	// MainBucket 主要存储桶
	MainBucket string
)

// publicReadPolicy 允许匿名读取对象，图片 URL 需要公开访问
const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

// Init 初始化 MinIO 客户端
func Init() error {
	cfg := config.Cfg.MinIO

	endpoint := cfg.InternalEndpoint
	useSSL := cfg.InternalUseSSL
	if endpoint == "" {
		endpoint = cfg.ExternalEndpoint
		useSSL = cfg.ExternalUseSSL
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize minio client: %w", err)
	}

	ctx := context.Background()
	Client = client
	MainBucket = cfg.MainBucket
	return EnsureBucket(ctx)
}

// EnsureBucket 确保主存储桶存在且可公开读取
func EnsureBucket(ctx context.Context) error {
	exists, err := Client.BucketExists(ctx, MainBucket)
	if err != nil {
		return fmt.Errorf("failed to connect to minio server: %w", err)
	}
	if exists {
		return nil
	}

	if err = Client.MakeBucket(ctx, MainBucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", MainBucket, err)
	}
	if err = Client.SetBucketPolicy(ctx, MainBucket, fmt.Sprintf(publicReadPolicy, MainBucket)); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}
	log.Info("MinIO bucket created", "bucket", MainBucket)
	return nil
}
