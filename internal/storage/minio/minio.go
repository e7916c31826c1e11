// Package minio implements storage.Store with the MinIO client, for MinIO
// deployments and other S3-compatible servers.
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dmitrijs2005/recordfiles/internal/common"
	"github.com/dmitrijs2005/recordfiles/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Config configures a MinIO store. Endpoint is host[:port] without scheme.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
	Bucket          string
}

type Store struct {
	client *minio.Client
	bucket string
}

// New creates the client. Setting Region avoids a bucket-location lookup
// on first use.
func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("minio: bucket name is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*storage.Object, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put %q: %w", key, err)
	}

	return &storage.Object{
		Key:          key,
		Size:         info.Size,
		ContentType:  contentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, *storage.Object, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, mapError("get", key, err)
	}

	// GetObject is lazy; Stat issues the request and surfaces NoSuchKey.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, nil, mapError("get", key, err)
	}

	return obj, toObject(info), nil
}

// Delete removes key. MinIO does not report a missing key on delete.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return mapError("delete", key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out []storage.Object
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, info.Err)
		}
		out = append(out, *toObject(info))
	}
	return out, nil
}

func (s *Store) PresignURL(ctx context.Context, method storage.Method, key string, expiry time.Duration) (string, error) {
	switch method {
	case storage.MethodGet, storage.MethodPut, storage.MethodDelete:
	default:
		return "", fmt.Errorf("presign: unsupported method %q", method)
	}

	u, err := s.client.Presign(ctx, string(method), s.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s %q: %w", method, key, err)
	}
	return u.String(), nil
}

func toObject(info minio.ObjectInfo) *storage.Object {
	return &storage.Object{
		Key:          info.Key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}
}

func mapError(op, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %q: %w: %w", op, key, common.ErrorNotFound, err)
	}
	return fmt.Errorf("%s %q: %w", op, key, err)
}
