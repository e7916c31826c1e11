package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/recordfiles/internal/flagx"
	"github.com/dmitrijs2005/recordfiles/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Pointer fields distinguish an
// absent key from an explicit zero value, so a partial file only overrides
// what it names.
type JsonConfig struct {
	BackendURL         *string         `json:"backend_url"`
	ApplicationKey     *string         `json:"application_key"`
	Container          *string         `json:"container"`
	StorageProvider    *string         `json:"storage_provider"`
	S3RootUser         *string         `json:"s3_root_user"`
	S3RootPassword     *string         `json:"s3_root_password"`
	S3Region           *string         `json:"s3_region"`
	S3BaseEndpoint     *string         `json:"s3_base_endpoint"`
	S3UsePathStyle     *bool           `json:"s3_use_path_style"`
	GCSCredentialsFile *string         `json:"gcs_credentials_file"`
	URLValidity        *timex.Duration `json:"url_validity"`
	LogLevel           *string         `json:"log_level"`
}

// parseJson overlays the file named by -c or -config onto config.
// Without either flag nothing is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	set(&config.BackendURL, c.BackendURL)
	set(&config.ApplicationKey, c.ApplicationKey)
	set(&config.Container, c.Container)
	set(&config.StorageProvider, c.StorageProvider)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.S3UsePathStyle, c.S3UsePathStyle)
	set(&config.GCSCredentialsFile, c.GCSCredentialsFile)
	set(&config.LogLevel, c.LogLevel)
	if c.URLValidity != nil {
		config.URLValidity = c.URLValidity.Duration
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
