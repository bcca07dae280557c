package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectExists is returned when an upload would overwrite an existing object
var ErrObjectExists = errors.New("object already exists")

// ImageStore defines the storage operations used for alert photos
type ImageStore interface {
	UploadImage(ctx context.Context, reader io.Reader, size int64, fileName, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, objectName string) error
	GetPublicURL(objectName string) string
}

// UploadResult contains the result of a file upload
type UploadResult struct {
	URL      string
	Key      string // object key in storage
	FileName string
	FileSize int64
	MimeType string
}

// MinIOStorage implements ImageStore using MinIO
type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	endpoint  string
	publicURL string // External URL
	useSSL    bool
	clock     clockwork.Clock
}

// Config holds MinIO connection configuration
type Config struct {
	Endpoint  string
	PublicURL string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinIO creates a new MinIO storage client
func NewMinIO(cfg Config, clock clockwork.Clock) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
	}

	// Ensure bucket exists
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("📦 Created MinIO bucket: %s", cfg.Bucket)

		// Alert photos are linked directly, so the bucket is public read
		if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket)); err != nil {
			log.Printf("⚠️  Failed to set bucket policy: %v", err)
		}
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &MinIOStorage{
		client:    client,
		bucket:    cfg.Bucket,
		endpoint:  cfg.Endpoint,
		publicURL: cfg.PublicURL,
		useSSL:    cfg.UseSSL,
		clock:     clock,
	}, nil
}

// UploadImage stores an image under a "<epoch-millis>.<ext>" key.
// Existing objects are never overwritten.
func (s *MinIOStorage) UploadImage(ctx context.Context, reader io.Reader, size int64, fileName, contentType string) (*UploadResult, error) {
	key := ObjectKey(s.clock, fileName)

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrObjectExists, key)
	} else if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return nil, fmt.Errorf("failed to check object: %w", err)
	}

	if contentType == "" {
		contentType = detectContentType(filepath.Ext(fileName))
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "max-age=3600",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return &UploadResult{
		URL:      s.GetPublicURL(key),
		Key:      key,
		FileName: fileName,
		FileSize: size,
		MimeType: contentType,
	}, nil
}

// Delete removes a file from MinIO
func (s *MinIOStorage) Delete(ctx context.Context, objectName string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

// GetPublicURL returns the public URL for an object
func (s *MinIOStorage) GetPublicURL(objectName string) string {
	return publicObjectURL(s.publicURL, s.endpoint, s.bucket, objectName, s.useSSL)
}

// ObjectKey derives the storage key from the current time and the original extension
func ObjectKey(clock clockwork.Clock, fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	millis := clock.Now().UnixMilli()
	if ext == "" {
		return fmt.Sprintf("%d", millis)
	}
	return fmt.Sprintf("%d.%s", millis, ext)
}

func publicObjectURL(publicURL, endpoint, bucket, objectName string, useSSL bool) string {
	if publicURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(publicURL, "/"), bucket, objectName)
	}

	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, bucket, objectName)
}

func publicReadPolicy(bucket string) string {
	return `{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"AWS": ["*"]},
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::` + bucket + `/*"]
		}]
	}`
}

// detectContentType returns the image MIME type for a file extension
func detectContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
