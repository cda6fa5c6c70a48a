/*
Package archive exports conversation transcripts to S3-compatible object storage.

This file defines the public ArchiveService interface and its factory.
*/
package archive

import (
	"context"
	"time"
)

// PresignedURLDuration is the fixed duration for which a transcript download URL is valid.
const PresignedURLDuration = 15 * time.Minute

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// ArchiveService defines the public interface for transcript storage.
type ArchiveService interface {
	// UploadTranscript writes a JSON transcript under the given object key.
	UploadTranscript(ctx context.Context, key string, body []byte) error

	// PresignDownload generates a pre-signed URL for downloading the transcript.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)
}

// NewArchiveService is the factory function for ArchiveService.
// It initializes and returns a concrete implementation based on the provided configuration.
func NewArchiveService(cfg ServiceConfig) (ArchiveService, error) {
	// Currently, only S3 compatible implementations are supported.
	return newS3Client(cfg)
}
