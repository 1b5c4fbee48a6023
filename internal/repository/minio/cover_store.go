package minio

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/fandom-project/back-end/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// CoverStore 社区封面图存储
type CoverStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// Open 连接 MinIO，bucket 不存在时创建
func Open(ctx context.Context, cfg config.MinIO) (*CoverStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio: bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio: make bucket: %w", err)
		}
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Endpoint
	}
	return &CoverStore{client: client, bucket: cfg.Bucket, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

// Upload 上传封面，返回对外访问地址
func (s *CoverStore) Upload(ctx context.Context, communityID uint64, fileName string, file io.Reader, size int64) (string, error) {
	objectName := ObjectName(communityID, fileName, time.Now())
	_, err := s.client.PutObject(ctx, s.bucket, objectName, file, size, minio.PutObjectOptions{
		ContentType: ContentType(fileName),
		UserMetadata: map[string]string{
			"original-filename": fileName,
			"community-id":      fmt.Sprint(communityID),
		},
	})
	if err != nil {
		return "", fmt.Errorf("minio: upload: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName), nil
}

// ObjectName communities/<id>/<yyyy>/<mm>/<uuid><ext>
func ObjectName(communityID uint64, fileName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("communities/%d/%d/%02d/%s%s", communityID, now.Year(), now.Month(), uuid.NewString(), ext)
}

func ContentType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".jpg"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
