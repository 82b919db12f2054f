package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options configures the S3-backed Store.
type S3Options struct {
	Region          string
	Endpoint        string // optional custom endpoint (MinIO, localstack)
	AccessKeyID     string
	SecretAccessKey string
}

// S3Store implements Store on top of S3-compatible object storage.
type S3Store struct {
	client *s3.Client
}

// NewS3Store builds the S3 client with static credentials and an optional
// custom endpoint. Custom endpoints use path-style addressing.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if opts.Endpoint != "" {
		endpoint := opts.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
			o.UsePathStyle = true
		})
	}

	return &S3Store{client: s3.NewFromConfig(cfg, s3Opts...)}, nil
}

// Read fetches the object body.
func (s *S3Store) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, Address{bucket, key})
		}
		return nil, fmt.Errorf("get object %s: %w", Address{bucket, key}, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object body %s: %w", Address{bucket, key}, err)
	}
	return data, nil
}

// Write puts the object.
func (s *S3Store) Write(ctx context.Context, bucket, key string, data []byte) error {
	contentType := "application/octet-stream"
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", Address{bucket, key}, err)
	}
	return nil
}

// Copy performs a server-side copy within the bucket.
func (s *S3Store) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	source := bucket + "/" + url.PathEscape(srcKey)
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     &bucket,
		CopySource: &source,
		Key:        &dstKey,
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return fmt.Errorf("%w: %s", ErrNotFound, Address{bucket, srcKey})
		}
		return fmt.Errorf("copy object %s -> %s: %w", Address{bucket, srcKey}, Address{bucket, dstKey}, err)
	}
	return nil
}
