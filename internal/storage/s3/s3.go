// Package s3 implements storage.Store on Amazon S3 or any S3-compatible
// server (MinIO, Ceph, ...) through aws-sdk-go-v2.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/recordfiles/internal/common"
	"github.com/dmitrijs2005/recordfiles/internal/storage"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
)

var _ storage.Store = (*Store)(nil)

// Config configures an S3 store.
//
// Fields:
//   - Bucket: bucket holding the objects.
//   - Region: signing region.
//   - AccessKeyID / SecretAccessKey: static credentials. When empty the
//     default AWS credential chain is used.
//   - BaseEndpoint: custom endpoint for S3-compatible servers.
//   - UsePathStyle: address buckets as http://host/bucket/key.
type Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BaseEndpoint    string
	UsePathStyle    bool
}

// Store is an S3-backed storage.Store.
type Store struct {
	bucket  string
	client  *s3.Client
	presign *s3.PresignClient
}

// New builds the SDK clients. It loads configuration but makes no requests.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket name is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &Store{
		bucket:  cfg.Bucket,
		client:  client,
		presign: newS3PresignClient(client),
	}, nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*storage.Object, error) {
	body, size, err := seekableBody(r, size)
	if err != nil {
		return nil, err
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	out, err := s.client.PutObject(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("put %q: %w", key, err)
	}

	return &storage.Object{
		Key:         key,
		Size:        size,
		ContentType: contentType,
		ETag:        strings.Trim(aws.ToString(out.ETag), `"`),
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, *storage.Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, nil, mapError("get", key, err)
	}

	return out.Body, &storage.Object{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         strings.Trim(aws.ToString(out.ETag), `"`),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// Delete removes key. S3 does not report a missing key on delete.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return mapError("delete", key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var out []storage.Object
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, err)
		}
		for _, o := range page.Contents {
			out = append(out, storage.Object{
				Key:          aws.ToString(o.Key),
				Size:         aws.ToInt64(o.Size),
				ETag:         strings.Trim(aws.ToString(o.ETag), `"`),
				LastModified: aws.ToTime(o.LastModified),
			})
		}
	}
	return out, nil
}

func (s *Store) PresignURL(ctx context.Context, method storage.Method, key string, expiry time.Duration) (string, error) {
	bucket := aws.String(s.bucket)
	k := aws.String(key)
	expires := s3.WithPresignExpires(expiry)

	var (
		req *v4.PresignedHTTPRequest
		err error
	)
	switch method {
	case storage.MethodGet:
		req, err = s.presign.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: bucket, Key: k}, expires)
	case storage.MethodPut:
		req, err = s.presign.PresignPutObject(ctx, &s3.PutObjectInput{Bucket: bucket, Key: k}, expires)
	case storage.MethodDelete:
		req, err = s.presign.PresignDeleteObject(ctx, &s3.DeleteObjectInput{Bucket: bucket, Key: k}, expires)
	default:
		return "", fmt.Errorf("presign: unsupported method %q", method)
	}
	if err != nil {
		return "", fmt.Errorf("presign %s %q: %w", method, key, err)
	}
	return req.URL, nil
}

// seekableBody returns a body the SDK can sign over plain HTTP, together
// with its length. Non-seekable readers are spooled into memory.
func seekableBody(r io.Reader, size int64) (io.ReadSeeker, int64, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		if size >= 0 {
			return rs, size, nil
		}
		cur, err := rs.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, 0, err
		}
		end, err := rs.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, err
		}
		if _, err := rs.Seek(cur, io.SeekStart); err != nil {
			return nil, 0, err
		}
		return rs, end - cur, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read payload: %w", err)
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

func mapError(op, key string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return fmt.Errorf("%s %q: %w: %w", op, key, common.ErrorNotFound, err)
		}
	}
	return fmt.Errorf("%s %q: %w", op, key, err)
}
