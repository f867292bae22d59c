// Package storage provides S3-compatible object storage for booking
// attachments: vehicle condition photos and signed job sheets uploaded
// alongside a service booking.
package storage

import (
	"context"
	"io"
	"time"

	"carmantra_backend/platform/config"
)

// PresignedURL is a short-lived URL for a direct upload or download.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStore is the storage interface the bookings module depends on.
type ObjectStore interface {
	GenerateUploadURL(ctx context.Context, bucket, folder, fileName, contentType string, sizeBytes int64) (*PresignedURL, error)
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*PresignedURL, error)
	DownloadFile(ctx context.Context, bucket, fileKey string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, bucket, fileKey string) error
	EnsureBucketExists(ctx context.Context, bucket string) error
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}

// Config is the subset of application configuration storage needs.
type Config = config.MinIOConfig
