// Package gcs implements storage.Store on Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/dmitrijs2005/recordfiles/internal/common"
	rfstorage "github.com/dmitrijs2005/recordfiles/internal/storage"
)

var newStorageClient = storage.NewClient

var _ rfstorage.Store = (*Store)(nil)

// Config configures a GCS store.
//
// CredentialsFile points to a service-account JSON key; when empty the
// application default credentials are used. GoogleAccessID and PrivateKey
// override the signer used for presigned URLs. Endpoint and
// WithoutAuthentication exist for emulators.
type Config struct {
	Bucket                string
	CredentialsFile       string
	Endpoint              string
	WithoutAuthentication bool
	GoogleAccessID        string
	PrivateKey            []byte
}

type Store struct {
	client         *storage.Client
	bucket         *storage.BucketHandle
	googleAccessID string
	privateKey     []byte
}

// New creates the GCS client. Credentials are resolved lazily by the SDK.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs: bucket name is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.WithoutAuthentication {
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := newStorageClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &Store{
		client:         client,
		bucket:         client.Bucket(cfg.Bucket),
		googleAccessID: cfg.GoogleAccessID,
		privateKey:     cfg.PrivateKey,
	}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*rfstorage.Object, error) {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	length, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("put %q: wrote %d bytes before error: %w", key, length, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("put %q: closing writer: %w", key, err)
	}
	if size >= 0 && length != size {
		return nil, fmt.Errorf("put %q: wrote %d bytes, declared %d", key, length, size)
	}

	obj := &rfstorage.Object{Key: key, Size: length, ContentType: contentType}
	if attrs := w.Attrs(); attrs != nil {
		obj.ETag = attrs.Etag
		obj.LastModified = attrs.Updated
	}
	return obj, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, *rfstorage.Object, error) {
	r, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return nil, nil, mapError("get", key, err)
	}

	return r, &rfstorage.Object{
		Key:          key,
		Size:         r.Attrs.Size,
		ContentType:  r.Attrs.ContentType,
		LastModified: r.Attrs.LastModified,
	}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		return mapError("delete", key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]rfstorage.Object, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var out []rfstorage.Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, err)
		}
		out = append(out, rfstorage.Object{
			Key:          attrs.Name,
			Size:         attrs.Size,
			ContentType:  attrs.ContentType,
			ETag:         attrs.Etag,
			LastModified: attrs.Updated,
		})
	}
	return out, nil
}

func (s *Store) PresignURL(ctx context.Context, method rfstorage.Method, key string, expiry time.Duration) (string, error) {
	switch method {
	case rfstorage.MethodGet, rfstorage.MethodPut, rfstorage.MethodDelete:
	default:
		return "", fmt.Errorf("presign: unsupported method %q", method)
	}

	u, err := s.bucket.SignedURL(key, &storage.SignedURLOptions{
		GoogleAccessID: s.googleAccessID,
		PrivateKey:     s.privateKey,
		Method:         string(method),
		Expires:        time.Now().Add(expiry),
		Scheme:         storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("presign %s %q: %w", method, key, err)
	}
	return u, nil
}

func mapError(op, key string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%s %q: %w: %w", op, key, common.ErrorNotFound, err)
	}
	return fmt.Errorf("%s %q: %w", op, key, err)
}
