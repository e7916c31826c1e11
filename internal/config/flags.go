package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/recordfiles/internal/flagx"
)

var (
	valueFlags = []string{"-c", "-config", "-b", "-k", "-n", "-s", "-u", "-p", "-g", "-e", "-gcs-credentials", "-t", "-l"}
	boolFlags  = []string{"-path-style"}
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-b string          backend URL
//	-k string          application key
//	-n string          container (bucket) name
//	-s string          storage provider: s3, minio, gcs, memory
//	-u string          S3 root user
//	-p string          S3 root password
//	-g string          S3 region
//	-e string          S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-path-style        use path-style S3 addressing
//	-gcs-credentials   GCS service account file
//	-t int             access URI validity, minutes
//	-l string          log level
//
// Flags may be mixed with the command's positional arguments, which are
// skipped here. A malformed flag panics.
func parseFlags(config *Config) {
	args, _ := flagx.SplitArgs(os.Args[1:], valueFlags, boolFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	// -c/-config are handled by parseJson; declare them so Parse accepts them.
	fs.String("c", "", "path to config file (short)")
	fs.String("config", "", "path to config file")

	fs.StringVar(&config.BackendURL, "b", config.BackendURL, "backend URL")
	fs.StringVar(&config.ApplicationKey, "k", config.ApplicationKey, "application key")
	fs.StringVar(&config.Container, "n", config.Container, "container (bucket) name")
	fs.StringVar(&config.StorageProvider, "s", config.StorageProvider, "storage provider: s3, minio, gcs, memory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.BoolVar(&config.S3UsePathStyle, "path-style", config.S3UsePathStyle, "use path-style S3 addressing")
	fs.StringVar(&config.GCSCredentialsFile, "gcs-credentials", config.GCSCredentialsFile, "GCS service account file")

	urlValidity := fs.Int("t", int(config.URLValidity.Minutes()), "access URI validity (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only an explicit -t replaces a sub-minute validity from JSON.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.URLValidity = time.Duration(*urlValidity) * time.Minute
		}
	})
}

// PositionalArgs returns the command-line arguments that are not flags
// understood by LoadConfig.
func PositionalArgs(args []string) []string {
	_, positional := flagx.SplitArgs(args, valueFlags, boolFlags)
	return positional
}
