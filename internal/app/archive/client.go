package archive

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"relaychat/internal/pkg/logx"
)

// s3Client implements the ArchiveService interface, handling interactions with S3-compatible storage.
type s3Client struct {
	cfg      ServiceConfig
	s3Client *s3.Client
	uploader *manager.Uploader
}

// newS3Client initializes the S3 client using a custom configuration that supports S3-compatible endpoints.
func newS3Client(cfg ServiceConfig) (*s3Client, error) {
	// Load Configuration
	sdkCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		logx.Error(err, "Failed to load AWS SDK config")
		return nil, errors.New("failed to initialize S3 client configuration")
	}

	// Create S3 Client with Custom Endpoint Resolver.
	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3Client{
		cfg:      cfg,
		s3Client: client,
		uploader: manager.NewUploader(client),
	}, nil
}

// UploadTranscript writes the JSON transcript under the given object key.
func (c *s3Client) UploadTranscript(ctx context.Context, key string, body []byte) error {
	contentType := "application/json"

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &c.cfg.S3BucketName,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})

	if err != nil {
		logx.Error(err, "Failed to upload transcript", "key", key)
		return errors.New("failed to upload transcript to S3")
	}

	return nil
}

// PresignDownload generates a presigned URL for downloading the specified transcript key.
func (c *s3Client) PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(c.s3Client)

	presignInput := &s3.GetObjectInput{
		Bucket: &c.cfg.S3BucketName,
		Key:    &key,
	}

	resp, err := presignClient.PresignGetObject(ctx, presignInput, s3.WithPresignExpires(duration))
	if err != nil {
		logx.Error(err, "Failed to generate presigned URL", "key", key)
		return "", errors.New("failed to generate presigned URL")
	}

	return resp.URL, nil
}
