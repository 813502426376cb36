/*
Package storage keeps exported room documents in S3-compatible object
storage and hands out time-limited download links for them.
*/
package storage

import (
	"context"
	"io"
	"time"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Service is the object store used by room export.
type Service interface {
	// Upload stores body under key.
	Upload(ctx context.Context, key, contentType string, body io.Reader) error

	// PresignDownload returns a URL that fetches key until duration elapses.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes key.
	Delete(ctx context.Context, key string) error
}

// NewService returns the S3-backed Service for cfg.
func NewService(ctx context.Context, cfg ServiceConfig) (Service, error) {
	// Currently, only S3 compatible implementations are supported.
	return newS3Client(ctx, cfg)
}
