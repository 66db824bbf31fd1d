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
)

type CloudflareR2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
	// Endpoint overrides the account endpoint, e.g. for a local S3-compatible server.
	Endpoint string
}

// Enabled reports whether enough is configured to talk to a bucket.
func (c CloudflareR2Config) Enabled() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != "" && c.BucketName != "" &&
		(c.AccountID != "" || c.Endpoint != "")
}

func (c CloudflareR2Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

type r2ObjectStore struct {
	s3Client      *s3.Client
	bucketName    string
	publicBaseURL *url.URL
}

func NewCloudflareR2Store(ctx context.Context, cfg CloudflareR2Config) (ObjectStore, error) {
	if !cfg.Enabled() {
		return nil, errors.New("invalid Cloudflare R2 configuration: account or endpoint, credentials and bucket are required")
	}

	var publicBase *url.URL
	if cfg.PublicBaseURL != "" {
		u, err := url.Parse(cfg.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid R2 public base URL %q: %w", cfg.PublicBaseURL, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		publicBase = u
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"), // R2 signs with the "auto" region
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	endpoint := cfg.endpoint()
	s3Client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.Endpoint != ""
	})

	return &r2ObjectStore{
		s3Client:      s3Client,
		bucketName:    cfg.BucketName,
		publicBaseURL: publicBase,
	}, nil
}

func (u *r2ObjectStore) Put(ctx context.Context, obj Object) (*StoredObject, error) {
	if obj.Key == "" {
		return nil, errors.New("object key is required")
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucketName),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(obj.Body),
		ContentLength: aws.Int64(int64(len(obj.Body))),
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if obj.CacheControl != "" {
		input.CacheControl = aws.String(obj.CacheControl)
	}

	result, err := u.s3Client.PutObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to put object to R2 (key: %s): %w", obj.Key, err)
	}

	stored := &StoredObject{Key: obj.Key, URL: u.URL(obj.Key)}
	if result.ETag != nil {
		// ETag приходит в кавычках
		stored.ETag = strings.Trim(*result.ETag, "\"")
	}
	return stored, nil
}

func (u *r2ObjectStore) Remove(ctx context.Context, key string) error {
	_, err := u.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to remove object from R2 (key: %s): %w", key, err)
	}
	return nil
}

func (u *r2ObjectStore) URL(key string) string {
	return publicURL(u.publicBaseURL, key)
}

func publicURL(base *url.URL, key string) string {
	if base == nil || key == "" {
		return ""
	}
	ref := &url.URL{Path: strings.TrimPrefix(key, "/")}
	return base.ResolveReference(ref).String()
}
