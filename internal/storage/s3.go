package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// presignTTL is how long a signed GET URL stays valid.
const presignTTL = 15 * time.Minute

// S3Config points at any S3-compatible store (AWS, MinIO, R2).
type S3Config struct {
	Region    string
	Endpoint  string // empty for real AWS
	AccessKey string
	SecretKey string
	Bucket    string

	// PublicBaseURL is the address objects are served from, e.g. a CDN
	// or the bucket's public endpoint. Defaults to Endpoint/Bucket.
	PublicBaseURL string
}

func (c S3Config) validate() error {
	switch {
	case c.Region == "":
		return fmt.Errorf("storage: region is required")
	case c.AccessKey == "" || c.SecretKey == "":
		return fmt.Errorf("storage: credentials are required")
	case c.Bucket == "":
		return fmt.Errorf("storage: bucket is required")
	}
	return nil
}

// S3Store implements ObjectStore on top of the AWS SDK.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	baseURL string
}

// NewS3 builds the client once at startup; construction validates the
// config so a misconfigured store fails the boot, not the first upload.
func NewS3(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // MinIO and friends
		}
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
	}

	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// newStorageKey buckets objects by upload date so the store stays
// browseable; the uuid makes keys unguessable.
func newStorageKey() string {
	d := time.Now().UTC()
	return fmt.Sprintf("memories/%d/%02d/%02d/%v", d.Year(), int(d.Month()), d.Day(), uuid.New())
}

func (s *S3Store) Put(ctx context.Context, contentType string, body io.Reader) (UploadResult, error) {
	key := newStorageKey()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("storage: put object: %w", err)
	}

	return UploadResult{
		URL: fmt.Sprintf("%s/%s", s.baseURL, key),
		Key: key,
	}, nil
}

func (s *S3Store) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("storage: presign get: %w", err)
	}
	return req.URL, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete object: %w", err)
	}
	return nil
}
