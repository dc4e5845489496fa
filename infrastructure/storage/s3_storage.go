package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"taskboard/domain/ports"
	"taskboard/pkg/logger"
)

const s3OperationTimeout = 30 * time.Second

// S3Storage implements StoragePort สำหรับ S3-Compatible Storage (MinIO / R2)
type S3Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	endpoint  string
	useSSL    bool
}

type S3StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	PublicURL string // optional
}

// NewS3Storage สร้าง S3Storage instance และสร้าง bucket ถ้ายังไม่มี
func NewS3Storage(config S3StorageConfig) (*S3Storage, error) {
	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 20,
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure:    config.UseSSL,
		Region:    config.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		err = client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{
			Region: config.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("S3 bucket created", "bucket", config.Bucket)
	}

	logger.Info("S3 storage initialized",
		"endpoint", config.Endpoint,
		"bucket", config.Bucket,
		"ssl", config.UseSSL,
	)

	return &S3Storage{
		client:    client,
		bucket:    config.Bucket,
		publicURL: strings.TrimSuffix(config.PublicURL, "/"),
		endpoint:  config.Endpoint,
		useSSL:    config.UseSSL,
	}, nil
}

var _ ports.StoragePort = (*S3Storage)(nil)

func (s *S3Storage) UploadFile(file io.Reader, path string, size int64, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s3OperationTimeout)
	defer cancel()

	path = normalizeKey(path)

	// size ไม่ทราบ = -1 ให้ minio stream จนจบ
	if size <= 0 {
		size = -1
	}
	_, err := s.client.PutObject(ctx, s.bucket, path, file, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	logger.Debug("File uploaded to S3", "path", path, "content_type", contentType, "size", size)
	return s.GetFileURL(path), nil
}

// DeleteFile ลบ object; S3 ไม่ error เมื่อ key ไม่มีอยู่
func (s *S3Storage) DeleteFile(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s3OperationTimeout)
	defer cancel()

	path = normalizeKey(path)
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Debug("File deleted from S3", "path", path)
	return nil
}

func (s *S3Storage) Exists(path string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s3OperationTimeout)
	defer cancel()

	_, err := s.client.StatObject(ctx, s.bucket, normalizeKey(path), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat object: %w", err)
}

// GetFileURL สร้าง URL สำหรับเข้าถึงไฟล์
func (s *S3Storage) GetFileURL(path string) string {
	path = normalizeKey(path)

	if s.publicURL != "" {
		return s.publicURL + "/" + path
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, path)
}

// GetFileContent อ่านไฟล์จาก S3; caller ต้อง Close
func (s *S3Storage) GetFileContent(path string) (io.ReadCloser, string, error) {
	ctx := context.Background()

	obj, err := s.client.GetObject(ctx, s.bucket, normalizeKey(path), minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object: %w", err)
	}

	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, "", fmt.Errorf("failed to stat object: %w", err)
	}

	return obj, info.ContentType, nil
}

func (s *S3Storage) GetProviderName() string {
	return "s3"
}

func normalizeKey(path string) string {
	return strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "/")
}

// ListKeys คืน key ทั้งหมดที่ขึ้นต้นด้วย prefix
func (s *S3Storage) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    normalizeKey(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return keys, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
