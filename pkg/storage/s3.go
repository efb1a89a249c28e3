package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/JaimeStill/warden/pkg/lifecycle"
)

type s3Store struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
	baseURL  string
	logger   *slog.Logger
}

// newS3 loads the default AWS credential chain. A custom endpoint switches
// the client to path-style addressing for S3-compatible servers.
func newS3(cfg *Config, logger *slog.Logger) (*s3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Store{
		client:   client,
		bucket:   cfg.ContainerName,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
		baseURL:  cfg.PublicBaseURL,
		logger:   logger,
	}, nil
}

func (s *s3Store) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting storage system")

	lc.OnStartup(func() {
		ctx := lc.Context()
		if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket}); err == nil {
			s.logger.Info("storage bucket ready", "bucket", s.bucket)
			return
		}

		input := &s3.CreateBucketInput{Bucket: &s.bucket}
		if s.region != "us-east-1" {
			input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
				LocationConstraint: types.BucketLocationConstraint(s.region),
			}
		}

		if _, err := s.client.CreateBucket(ctx, input); err != nil {
			var owned *types.BucketAlreadyOwnedByYou
			if !errors.As(err, &owned) {
				s.logger.Error("storage bucket initialization failed", "error", err)
				return
			}
		}
		s.logger.Info("storage bucket ready", "bucket", s.bucket)
	})

	return nil
}

func (s *s3Store) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	body, ok := reader.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("read upload %s: %w", key, err)
		}
		body = bytes.NewReader(data)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("upload object %s: %w", key, err)
	}
	return nil
}

// Delete checks existence first since S3 reports success for missing keys.
func (s *s3Store) Delete(ctx context.Context, key string) error {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *s3Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("check object existence %s: %w", key, err)
	}
	return true, nil
}

func (s *s3Store) URL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()

	switch {
	case s.baseURL != "":
		return joinURL(s.baseURL, escaped)
	case s.endpoint != "":
		return joinURL(joinURL(s.endpoint, s.bucket), escaped)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
	}
}
