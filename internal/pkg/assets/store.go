package assets

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/opentender/backend/config"
)

// MinioStore 素材对象存储
type MinioStore struct {
	client *minio.Client
	bucket string
	config config.AssetConfig
}

// NewMinioStore 创建对象存储客户端，不会立即连接
func NewMinioStore(cfg config.AssetConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket 桶不存在时创建
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Upload 上传素材文件
func (s *MinioStore) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload asset: %w", err)
	}

	return nil
}

// URL 实现 URLSigner；配置了公开地址时直接拼接，否则生成预签名地址
func (s *MinioStore) URL(ctx context.Context, objectKey string) (string, error) {
	if s.config.PublicBaseURL != "" {
		return PublicURL(s.config.PublicBaseURL, objectKey), nil
	}

	expiry := s.config.URLExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

// PublicURL 拼接公开访问地址
func PublicURL(baseURL, objectKey string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(objectKey, "/")
}

// StaticSigner 只使用公开地址，未配置对象存储时使用
type StaticSigner struct {
	BaseURL string
}

func (s StaticSigner) URL(ctx context.Context, objectKey string) (string, error) {
	if s.BaseURL == "" {
		return "", fmt.Errorf("no public base url configured for %s", objectKey)
	}
	return PublicURL(s.BaseURL, objectKey), nil
}
