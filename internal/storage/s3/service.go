package s3

import (
	"context"
	"fmt"

	"github.com/consensuslabs/festival/backend/internal/storage"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// Service stores submission files in an S3-compatible bucket
type Service struct {
	client *minio.Client
	bucket string
	region string
	logger storage.Logger
}

// NewService creates a new S3 service instance
func NewService(cfg *storage.S3Config, logger storage.Logger) (*Service, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &Service{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.LogInfo("Created storage bucket", map[string]interface{}{
		"bucket": s.bucket,
	})
	return nil
}

// PutFile uploads a staged file
func (s *Service) PutFile(ctx context.Context, key, filePath, contentType string) (*storage.Object, error) {
	info, err := s.client.FPutObject(ctx, s.bucket, key, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	s.logger.LogInfo("Stored submission file", map[string]interface{}{
		"bucket": s.bucket,
		"key":    key,
		"size":   info.Size,
	})
	return &storage.Object{Key: key, Size: info.Size, Location: info.Location}, nil
}

// Remove deletes an object
func (s *Service) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove S3 object %s: %w", key, err)
	}
	return nil
}

// Close releases the client
func (s *Service) Close() error {
	return nil
}

var _ storage.ObjectStore = (*Service)(nil)
