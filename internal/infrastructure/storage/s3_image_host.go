package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	catalogapp "github.com/brewline/storefront/internal/application/catalog"
	"github.com/brewline/storefront/internal/domain/shared"
	infraconfig "github.com/brewline/storefront/internal/infrastructure/config"
	"github.com/brewline/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var _ catalogapp.ImageHost = (*S3ImageHost)(nil)

// S3ImageHost uploads images to any S3-compatible bucket (AWS S3, MinIO, R2...)
type S3ImageHost struct {
	client        *s3.Client
	bucket        string
	endpoint      string
	pathStyle     bool
	publicBaseURL string
	policy        imagePolicy
	logger        *zap.Logger
}

// S3ImageHostOption is a functional option for S3ImageHost
type S3ImageHostOption func(*S3ImageHost)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) S3ImageHostOption {
	return func(h *S3ImageHost) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewS3ImageHost creates an image host from configuration
func NewS3ImageHost(cfg *infraconfig.ImageHostConfig, opts ...S3ImageHostOption) (*S3ImageHost, error) {
	if cfg == nil {
		return nil, errors.New("image host configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("image host bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("image host access key and secret key are required")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid image host endpoint: %w", err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	h := &S3ImageHost{
		client:        client,
		bucket:        cfg.Bucket,
		endpoint:      endpoint,
		pathStyle:     cfg.PathStyle,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		policy:        newImagePolicy(cfg.MaxBytes, cfg.AllowedTypes),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (h *S3ImageHost) EnsureBucket(ctx context.Context) error {
	_, err := h.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(h.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	h.logger.Info("Creating image bucket", zap.String("bucket", h.bucket))
	_, err = h.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(h.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload validates the image, stores it and returns its public URL
func (h *S3ImageHost) Upload(ctx context.Context, img catalogapp.ImageUpload) (string, error) {
	mt, err := h.policy.check(img)
	if err != nil {
		return "", err
	}
	key := objectKey(img, mt)

	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentLength: aws.Int64(int64(len(img.Data))),
		ContentType:   aws.String(mt.String()),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		mapped := mapS3Error(err)
		logger.WithLogger(ctx, h.logger).Warn("Image upload failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return "", mapped
	}

	logger.WithLogger(ctx, h.logger).Info("Image uploaded",
		zap.String("key", key),
		zap.String("content_type", mt.String()),
		zap.Int("bytes", len(img.Data)),
	)
	return h.publicURL(key), nil
}

// Bucket returns the bucket name
func (h *S3ImageHost) Bucket() string {
	return h.bucket
}

func (h *S3ImageHost) publicURL(key string) string {
	switch {
	case h.publicBaseURL != "":
		return h.publicBaseURL + "/" + key
	case h.endpoint == "":
		return "https://" + h.bucket + ".s3.amazonaws.com/" + key
	case h.pathStyle:
		return strings.TrimRight(h.endpoint, "/") + "/" + h.bucket + "/" + key
	default:
		u, err := url.Parse(h.endpoint)
		if err != nil {
			return strings.TrimRight(h.endpoint, "/") + "/" + h.bucket + "/" + key
		}
		return u.Scheme + "://" + h.bucket + "." + u.Host + "/" + key
	}
}

// mapS3Error translates S3 API error codes into image host failure reasons
func mapS3Error(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "InvalidToken":
			return shared.WrapDomainError(catalogapp.ErrImageHostUnauthorized.Code, catalogapp.ErrImageHostUnauthorized.Message, err)
		case "EntityTooLarge":
			return shared.WrapDomainError(catalogapp.ErrImageTooLarge.Code, catalogapp.ErrImageTooLarge.Message, err)
		}
	}
	return shared.WrapDomainError(catalogapp.ErrImageHostFailure.Code, catalogapp.ErrImageHostFailure.Message, err)
}
