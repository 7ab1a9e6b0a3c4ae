package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"userauth/internal/config"
)

// ImageUploader stores a profile image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, contentType string, body io.Reader) (string, error)
}

// S3ImageUploader uploads profile images under the user_profile/ prefix of a
// single bucket.
type S3ImageUploader struct {
	uploader      *manager.Uploader
	bucket        string
	publicBaseURL string
}

func NewS3ImageUploader(cfg *config.S3Config) *S3ImageUploader {
	return &S3ImageUploader{
		uploader:      manager.NewUploader(cfg.Client),
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
	}
}

func (u *S3ImageUploader) Upload(ctx context.Context, filename string, contentType string, body io.Reader) (string, error) {
	key := path.Join("user_profile", uuid.NewString()+path.Ext(filename))

	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload profile image: %w", err)
	}
	return strings.TrimRight(u.publicBaseURL, "/") + "/" + key, nil
}
