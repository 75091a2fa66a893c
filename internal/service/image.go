package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/apperrors"
	applog "github.com/pageza/foodgram/backend/internal/log"
)

// ImageStore persists uploaded recipe images. Save returns the public URL of
// the stored image; Delete removes an image previously returned by Save.
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// S3Client is the part of the S3 client the image store needs.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore uploads images to an S3 compatible bucket under recipes/.
type S3ImageStore struct {
	client    S3Client
	bucket    string
	publicURL string
}

func NewS3ImageStore(cfg *config.S3Config) *S3ImageStore {
	return NewS3ImageStoreWithClient(cfg.Client, cfg.BucketName, cfg.PublicURL)
}

// NewS3ImageStoreWithClient is used when the client is not built from config.
func NewS3ImageStoreWithClient(client S3Client, bucket, publicURL string) *S3ImageStore {
	return &S3ImageStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

func (s *S3ImageStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", apperrors.Malformed("image", "unsupported content type "+contentType)
	}
	key := fmt.Sprintf("recipes/%s.%s", uuid.NewString(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	applog.Debug(ctx, "image uploaded", "key", key, "bytes", len(data))
	return s.publicURL + "/" + key, nil
}

// Delete removes the object behind url. URLs outside this store's public
// prefix are ignored.
func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	applog.Debug(ctx, "image deleted", "key", key)
	return nil
}

// DecodeDataURI splits a "data:<type>;base64,<payload>" string into its
// content type and decoded bytes.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, apperrors.Malformed("image", "must be a base64 data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, apperrors.Malformed("image", "must be a base64 data URI")
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || contentType == "" {
		return "", nil, apperrors.Malformed("image", "must be a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, apperrors.Malformed("image", "payload is not valid base64")
	}
	if len(data) == 0 {
		return "", nil, apperrors.Required("image")
	}
	return strings.ToLower(contentType), data, nil
}
