// Package objstore wraps S3 for fetching and publishing run artifacts
// (datasets, pretrained weights, exported metrics).
package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// api is the slice of the S3 client the wrapper uses. Tests substitute a
// fake.
type api interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Options struct {
	Region string
	// Anonymous disables request signing, for public research buckets.
	Anonymous bool
}

type Client struct {
	s3     api
	logger *slog.Logger
}

func New(ctx context.Context, opts Options, logger *slog.Logger) (*Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.Anonymous {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &Client{
		s3:     s3.NewFromConfig(cfg),
		logger: logger,
	}, nil
}

// NewWithAPI wires a prebuilt S3 API, used by tests.
func NewWithAPI(s3api api, logger *slog.Logger) *Client {
	return &Client{s3: s3api, logger: logger}
}

// DownloadIfNewer fetches bucket/key into dest unless the local file is
// newer than the object's LastModified. Returns whether a download
// happened. Parent directories are created as needed.
func (c *Client) DownloadIfNewer(ctx context.Context, bucket, key, dest string) (bool, error) {
	head, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, fmt.Errorf("head s3://%s/%s: %w", bucket, key, err)
	}

	if info, err := os.Stat(dest); err == nil && head.LastModified != nil {
		if info.ModTime().After(*head.LastModified) {
			c.logger.Info("file already downloaded", "path", dest)
			return false, nil
		}
	}

	c.logger.Info("downloading object",
		"bucket", bucket,
		"key", key,
		"path", dest,
	)

	obj, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer obj.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return false, err
	}

	tmp := dest + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(file, obj.Body); err != nil {
		file.Close()
		os.Remove(tmp)
		return false, err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return false, err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return false, err
	}

	c.logger.Info("download complete", "path", dest)
	return true, nil
}

// UploadBytes puts a payload at bucket/key.
func (c *Client) UploadBytes(ctx context.Context, payload []byte, bucket, key string) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(payload),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}

	c.logger.Info("upload complete", "bucket", bucket, "key", key, "bytes", len(payload))
	return nil
}
