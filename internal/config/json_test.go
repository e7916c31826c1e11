package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"backend_url":          "https://api.example.com",
		"application_key":      "app-key",
		"container":            "bucket",
		"storage_provider":     "gcs",
		"s3_root_user":         "user",
		"s3_root_password":     "password",
		"s3_region":            "region",
		"s3_base_endpoint":     "base_endpoint",
		"s3_use_path_style":    false,
		"gcs_credentials_file": "/etc/sa.json",
		"url_validity":         "1h",
		"log_level":            "debug",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{S3UsePathStyle: true}
		parseJson(cfg)

		assert.Equal(t, &Config{
			BackendURL:         "https://api.example.com",
			ApplicationKey:     "app-key",
			Container:          "bucket",
			StorageProvider:    "gcs",
			S3RootUser:         "user",
			S3RootPassword:     "password",
			S3Region:           "region",
			S3BaseEndpoint:     "base_endpoint",
			S3UsePathStyle:     false,
			GCSCredentialsFile: "/etc/sa.json",
			URLValidity:        time.Hour,
			LogLevel:           "debug",
		}, cfg)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"log_level": "warn"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "recordfiles", cfg.Container)
		assert.Equal(t, 15*time.Minute, cfg.URLValidity)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		want := *cfg
		parseJson(cfg)

		assert.Equal(t, want, *cfg)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("invalid json panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"url_validity": "soon"}`), 0o600))
		os.Args = []string{"testbin", "-c", bad}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}
