package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrNotConfigured = errors.New("s3: uploader is not configured")
	ErrEmptyObject   = errors.New("s3: object reader is required")
	ErrKeyRequired   = errors.New("s3: object key is required")
	ErrForeignObject = errors.New("s3: url does not point into the bucket")
)

// Uploader stores listing images and returns the URL they are served from.
// Remove deletes an object by the URL Upload returned.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (publicURL string, err error)
	Remove(ctx context.Context, publicURL string) error
}

type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	UseSSL        bool
}

// Enabled reports whether enough settings are present to build a client.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != "" && strings.TrimSpace(c.Bucket) != ""
}

// Client uploads to an S3 compatible bucket through minio-go. The bucket is
// created on first use and made publicly readable.
type Client struct {
	bucket     string
	publicBase string
	client     *minio.Client
	logger     *slog.Logger

	bucketOnce sync.Once
	bucketErr  error
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	mc, err := minio.New(hostOf(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	base := strings.TrimSpace(cfg.PublicBaseURL)
	if base == "" {
		base = endpoint
	}
	return &Client{
		bucket:     strings.TrimSpace(cfg.Bucket),
		publicBase: strings.TrimRight(base, "/"),
		client:     mc,
		logger:     logger,
	}, nil
}

func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if reader == nil {
		return "", ErrEmptyObject
	}
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrKeyRequired
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if size <= 0 {
		size = -1
	}
	info, err := c.client.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}
	publicURL := ObjectURL(c.publicBase, c.bucket, key)
	if c.logger != nil {
		c.logger.Info("image uploaded", "bucket", c.bucket, "key", key, "size", info.Size)
	}
	return publicURL, nil
}

func (c *Client) Remove(ctx context.Context, publicURL string) error {
	key, ok := ObjectKeyFromURL(c.publicBase, c.bucket, publicURL)
	if !ok {
		return ErrForeignObject
	}
	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("s3: remove object: %w", err)
	}
	if c.logger != nil {
		c.logger.Info("image removed", "bucket", c.bucket, "key", key)
	}
	return nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.bucketOnce.Do(func() {
		exists, err := c.client.BucketExists(ctx, c.bucket)
		if err != nil {
			c.bucketErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			c.bucketErr = fmt.Errorf("s3: create bucket: %w", err)
			return
		}
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, c.bucket)
		if err := c.client.SetBucketPolicy(ctx, c.bucket, policy); err != nil {
			c.bucketErr = fmt.Errorf("s3: set bucket policy: %w", err)
		}
	})
	return c.bucketErr
}

// Disabled rejects every upload; it stands in when no bucket is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Remove(context.Context, string) error {
	return ErrNotConfigured
}

// ObjectKey builds a collision free key for an image of a listing, keeping the
// original file extension.
func ObjectKey(kind, listingID, filename string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(filename)))
	return path.Join(kind, listingID, uuid.NewString()+ext)
}

func ObjectURL(base, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, strings.TrimLeft(key, "/"))
}

// ObjectKeyFromURL reverses ObjectURL. It reports false for URLs outside the
// bucket.
func ObjectKeyFromURL(base, bucket, publicURL string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/" + bucket + "/"
	key, ok := strings.CutPrefix(strings.TrimSpace(publicURL), prefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var (
	_ Uploader = (*Client)(nil)
	_ Uploader = Disabled{}
)
