// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/leseb/docprep/pkg/filestore"
)

func init() {
	filestore.Providers.Register("s3", func(ctx context.Context, params map[string]string) (filestore.Store, error) {
		concurrency, _ := strconv.Atoi(params["concurrency"])
		return New(ctx, Options{
			Bucket:      params["bucket"],
			Region:      params["region"],
			Prefix:      params["prefix"],
			Endpoint:    params["endpoint"],
			Concurrency: concurrency,
		})
	})
}

// compile-time check
var _ filestore.Store = (*Store)(nil)

// Options configures the S3 backend.
type Options struct {
	Bucket      string // default bucket when a call passes ""
	Region      string // e.g. "us-east-1"
	Prefix      string // key prefix, e.g. "processed_docs/"
	Endpoint    string // custom endpoint for MinIO compatibility
	Concurrency int    // parts transferred in parallel; 0 uses the SDK default
}

// Store implements filestore.Store backed by S3 (or MinIO). Large objects
// are fetched and written in parallel parts through the transfer manager.
//
// Object layout:
//
//	<bucket>/<prefix><key>
type Store struct {
	client     *s3.Client
	downloader *manager.Downloader
	uploader   *manager.Uploader
	bucket     string
	prefix     string
}

// New creates an S3-backed Store.
func New(ctx context.Context, opts Options) (*Store, error) {
	optFns := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Opts := []func(*s3.Options){}
	if opts.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true // required for MinIO
		})
	}

	client := s3.NewFromConfig(cfg, s3Opts...)

	return &Store{
		client: client,
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) {
			if opts.Concurrency > 0 {
				d.Concurrency = opts.Concurrency
			}
		}),
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			if opts.Concurrency > 0 {
				u.Concurrency = opts.Concurrency
			}
		}),
		bucket: opts.Bucket,
		prefix: opts.Prefix,
	}, nil
}

func (s *Store) resolve(bucket, key string) (string, string, error) {
	if bucket == "" {
		bucket = s.bucket
	}
	if bucket == "" {
		return "", "", errors.New("s3 filestore: bucket is required")
	}
	if key == "" {
		return "", "", fmt.Errorf("key %q: %w", key, filestore.ErrInvalidKey)
	}
	return bucket, s.prefix + key, nil
}

// GetObject downloads the whole object into memory.
func (s *Store) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	bucket, fullKey, err := s.resolve(bucket, key)
	if err != nil {
		return nil, err
	}

	buf := manager.NewWriteAtBuffer(nil)
	_, err = s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("object %s/%s: %w", bucket, fullKey, filestore.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, fullKey, err)
	}
	return buf.Bytes(), nil
}

// PutObject uploads content, replacing any existing object.
func (s *Store) PutObject(ctx context.Context, bucket, key string, content []byte, contentType string) error {
	bucket, fullKey, err := s.resolve(bucket, key)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(fullKey),
		Body:   bytes.NewReader(content),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("put object %s/%s: %w", bucket, fullKey, err)
	}
	return nil
}

// ListObjects pages through ListObjectsV2 until limit keys are collected.
// Returned keys have the store prefix removed.
func (s *Store) ListObjects(ctx context.Context, bucket, prefix string, limit int) ([]filestore.Object, error) {
	if bucket == "" {
		bucket = s.bucket
	}
	if bucket == "" {
		return nil, errors.New("s3 filestore: bucket is required")
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(s.prefix + prefix),
	})

	var out []filestore.Object
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isNoSuchBucket(err) {
				return nil, fmt.Errorf("bucket %s: %w", bucket, filestore.ErrObjectNotFound)
			}
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			out = append(out, filestore.Object{
				Bucket:       bucket,
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// Close is a no-op for the S3 store.
func (s *Store) Close(_ context.Context) error {
	return nil
}

// isNotFound checks whether the error indicates a missing S3 object.
func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	// Some S3-compatible services return a generic "NotFound" status.
	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound")
}

func isNoSuchBucket(err error) bool {
	var nsb *s3types.NoSuchBucket
	return errors.As(err, &nsb)
}
