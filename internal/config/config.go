// Package config handles configuration for the recordfiles command,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/recordfiles/internal/backend"
	"github.com/dmitrijs2005/recordfiles/internal/storage/provider"
)

// Config holds runtime settings.
//
// Fields:
//   - BackendURL / ApplicationKey: the mobile backend connection.
//   - Container: bucket holding the backend's record files.
//   - StorageProvider: s3, minio, gcs or memory.
//   - S3RootUser / S3RootPassword: credentials for S3 and MinIO.
//   - S3Region / S3BaseEndpoint / S3UsePathStyle: object storage settings.
//   - GCSCredentialsFile: service account JSON for gcs.
//   - URLValidity: lifetime of generated access URIs.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	BackendURL         string
	ApplicationKey     string
	Container          string
	StorageProvider    string
	S3RootUser         string
	S3RootPassword     string
	S3Region           string
	S3BaseEndpoint     string
	S3UsePathStyle     bool
	GCSCredentialsFile string
	URLValidity        time.Duration
	LogLevel           string
}

// LoadDefaults populates Config with development defaults matching a local
// MinIO server.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:8080/"
	c.ApplicationKey = ""
	c.Container = "recordfiles"
	c.StorageProvider = provider.KindS3
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3UsePathStyle = true
	c.GCSCredentialsFile = ""
	c.URLValidity = 15 * time.Minute
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Provider returns the storage settings shared by every connection.
func (c *Config) Provider() provider.Config {
	return provider.Config{
		Kind:            c.StorageProvider,
		Region:          c.S3Region,
		AccessKeyID:     c.S3RootUser,
		SecretAccessKey: c.S3RootPassword,
		BaseEndpoint:    c.S3BaseEndpoint,
		UsePathStyle:    c.S3UsePathStyle,
		CredentialsFile: c.GCSCredentialsFile,
	}
}

// Backend returns the connection settings for the configured backend.
func (c *Config) Backend() backend.Config {
	return backend.Config{
		URL:            c.BackendURL,
		ApplicationKey: c.ApplicationKey,
		Container:      c.Container,
	}
}
