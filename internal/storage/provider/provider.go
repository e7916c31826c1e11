// Package provider builds a storage.Store from configuration.
package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/recordfiles/internal/common"
	"github.com/dmitrijs2005/recordfiles/internal/storage"
	"github.com/dmitrijs2005/recordfiles/internal/storage/gcs"
	"github.com/dmitrijs2005/recordfiles/internal/storage/memory"
	"github.com/dmitrijs2005/recordfiles/internal/storage/minio"
	"github.com/dmitrijs2005/recordfiles/internal/storage/s3"
)

// Supported provider kinds.
const (
	KindS3     = "s3"
	KindMinio  = "minio"
	KindGCS    = "gcs"
	KindMemory = "memory"
)

// Config holds the settings shared by all connections using a provider.
// The bucket comes from each connection.
type Config struct {
	Kind string

	// S3 and MinIO.
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BaseEndpoint    string
	UsePathStyle    bool

	// GCS.
	CredentialsFile string
}

// New returns a store for bucket. It only constructs clients and performs
// no network requests.
func New(ctx context.Context, cfg Config, bucket string) (storage.Store, error) {
	switch strings.ToLower(cfg.Kind) {
	case KindS3, "":
		return s3.New(ctx, s3.Config{
			Bucket:          bucket,
			Region:          cfg.Region,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			BaseEndpoint:    cfg.BaseEndpoint,
			UsePathStyle:    cfg.UsePathStyle,
		})
	case KindMinio:
		host, secure, err := splitEndpoint(cfg.BaseEndpoint)
		if err != nil {
			return nil, err
		}
		return minio.New(minio.Config{
			Endpoint:        host,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			UseSSL:          secure,
			Region:          cfg.Region,
			Bucket:          bucket,
		})
	case KindGCS:
		return gcs.New(ctx, gcs.Config{
			Bucket:          bucket,
			CredentialsFile: cfg.CredentialsFile,
		})
	case KindMemory:
		return memory.New(bucket), nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownProvider, cfg.Kind)
	}
}

// splitEndpoint turns "http://host:9000/" into ("host:9000", false).
// A bare host:port is accepted as plain HTTP.
func splitEndpoint(endpoint string) (string, bool, error) {
	if endpoint == "" {
		return "", false, fmt.Errorf("minio: endpoint is required")
	}
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), false, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("minio: endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("minio: endpoint %q has no host", endpoint)
	}
	return u.Host, u.Scheme == "https", nil
}
