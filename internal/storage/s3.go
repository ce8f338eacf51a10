package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/config"
)

// Presigner issues presigned PUT requests
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ObjectAPI is the subset of the S3 client used for reads and deletes
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage implements Storage on an S3-compatible bucket. Uploads go
// through a presigned PUT URL so the body is streamed by a plain HTTP client.
type S3Storage struct {
	objects    ObjectAPI
	presigner  Presigner
	httpClient *http.Client
	bucket     string
	ttl        time.Duration
	logger     *zap.Logger
}

// NewS3Storage loads AWS configuration and builds the S3 clients. Static
// credentials are used when both keys are set, otherwise the default chain.
// A custom endpoint switches to path-style addressing (MinIO, LocalStack).
func NewS3Storage(ctx context.Context, cfg *config.S3Config, logger *zap.Logger) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else if cfg.UsePathStyle {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3opts...)

	logger.Info("S3 storage initialized",
		zap.String("bucket", cfg.Bucket),
		zap.String("region", cfg.Region),
	)

	return NewS3StorageWithClients(client, s3.NewPresignClient(client), http.DefaultClient, cfg.Bucket, cfg.PresignTTLDuration(), logger), nil
}

// NewS3StorageWithClients assembles an S3Storage from prebuilt clients
func NewS3StorageWithClients(objects ObjectAPI, presigner Presigner, httpClient *http.Client, bucket string, ttl time.Duration, logger *zap.Logger) *S3Storage {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &S3Storage{
		objects:    objects,
		presigner:  presigner,
		httpClient: httpClient,
		bucket:     bucket,
		ttl:        ttl,
		logger:     logger,
	}
}

// PresignUpload returns a URL that accepts a single PUT of key
func (s *S3Storage) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, nil
}

// Upload presigns a PUT for key and sends data to it
func (s *S3Storage) Upload(ctx context.Context, key string, contentType string, data io.Reader) (int64, error) {
	url, err := s.PresignUpload(ctx, key, contentType)
	if err != nil {
		return 0, err
	}

	body := &countingReader{r: data}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return 0, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if sized, ok := data.(interface{ Size() int64 }); ok {
		req.ContentLength = sized.Size()
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to upload object: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("failed to upload object: status %d", resp.StatusCode)
	}

	s.logger.Debug("Object uploaded",
		zap.String("key", key),
		zap.String("bucket", s.bucket),
		zap.Int64("size", body.count),
	)
	return body.count, nil
}

// Download opens the object named by key
func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return out.Body, nil
}

// Delete removes the object named by key. S3 treats missing keys as success.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	s.logger.Debug("Object deleted",
		zap.String("key", key),
		zap.String("bucket", s.bucket),
	)
	return nil
}
