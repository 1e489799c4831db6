package s3storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"notary/internal/models"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const pkg = "s3Storage/"

type Config struct {
	Region   string
	Bucket   string
	Prefix   string
	Endpoint string
	// AccessKey and SecretKey are only used together with Endpoint (MinIO, LocalStack).
	AccessKey string
	SecretKey string
}

// Store implements storage.BlobStore on Amazon S3.
type Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	prefix    string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	op := pkg + "New"

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%s: s3 bucket is required", op)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" && cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: load aws config: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		prefix:    normalizePrefix(cfg.Prefix),
	}, nil
}

func (s *Store) Bucket() string {
	return s.bucket
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	op := pkg + "Put"

	objectKey := applyPrefix(s.prefix, key)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(objectKey),
		Body:                 r,
		ContentType:          aws.String(contentType),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return fmt.Errorf("%s: bucket=%s key=%s: %w", op, s.bucket, objectKey, mapError(err))
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	op := pkg + "Get"

	objectKey := applyPrefix(s.prefix, key)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: bucket=%s key=%s: %w", op, s.bucket, objectKey, mapError(err))
	}

	return out.Body, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	op := pkg + "Exists"

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(applyPrefix(s.prefix, key)),
	})
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, models.ErrObjectNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, mapped)
	}

	return true, nil
}

// Delete succeeds for absent keys; S3 treats DeleteObject as idempotent.
func (s *Store) Delete(ctx context.Context, key string) error {
	op := pkg + "Delete"

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(applyPrefix(s.prefix, key)),
	})
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, models.ErrObjectNotFound) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, mapped)
	}

	return nil
}

func (s *Store) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	op := pkg + "Presign"

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(applyPrefix(s.prefix, key)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return req.URL, nil
}

func (s *Store) CreateMultipartUpload(ctx context.Context, key string, contentType string) (string, error) {
	op := pkg + "CreateMultipartUpload"

	out, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(applyPrefix(s.prefix, key)),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, mapError(err))
	}

	return aws.ToString(out.UploadId), nil
}

// UploadPart buffers the part so the SDK can sign a seekable body of known length.
func (s *Store) UploadPart(ctx context.Context, key string, uploadID string, partNumber int32, r io.Reader) (string, error) {
	op := pkg + "UploadPart"

	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%s: read part: %w", op, err)
	}

	out, err := s.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(applyPrefix(s.prefix, key)),
		UploadId:      aws.String(uploadID),
		PartNumber:    aws.Int32(partNumber),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("%s: part=%d: %w", op, partNumber, mapError(err))
	}

	return aws.ToString(out.ETag), nil
}

func (s *Store) CompleteMultipartUpload(ctx context.Context, key string, uploadID string, parts []models.CompletedPart) error {
	op := pkg + "CompleteMultipartUpload"

	if len(parts) == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrIncompleteUpload)
	}

	completed := make([]s3types.CompletedPart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, s3types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(p.PartNumber),
		})
	}

	_, err := s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(applyPrefix(s.prefix, key)),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &s3types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}

	return nil
}

// ListParts pages through the parts S3 holds for uploadID.
func (s *Store) ListParts(ctx context.Context, key string, uploadID string) ([]models.CompletedPart, error) {
	op := pkg + "ListParts"

	paginator := s3.NewListPartsPaginator(s.client, &s3.ListPartsInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(applyPrefix(s.prefix, key)),
		UploadId: aws.String(uploadID),
	})

	var parts []models.CompletedPart
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, mapError(err))
		}

		for _, p := range page.Parts {
			parts = append(parts, models.CompletedPart{
				PartNumber: aws.ToInt32(p.PartNumber),
				ETag:       aws.ToString(p.ETag),
			})
		}
	}

	return parts, nil
}

func (s *Store) AbortMultipartUpload(ctx context.Context, key string, uploadID string) error {
	op := pkg + "AbortMultipartUpload"

	_, err := s.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(applyPrefix(s.prefix, key)),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}

	return nil
}

// mapError translates S3 error codes into the blob store sentinels.
func mapError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %s", models.ErrObjectNotFound, apiErr.ErrorMessage())
	case "NoSuchUpload":
		return fmt.Errorf("%w: %s", models.ErrUploadNotFound, apiErr.ErrorMessage())
	case "InvalidPart", "InvalidPartOrder", "EntityTooSmall":
		return fmt.Errorf("%w: %s", models.ErrIncompleteUpload, apiErr.ErrorMessage())
	}

	return err
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}
