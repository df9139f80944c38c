package profile

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the font tool server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Data is the data directory
	Data string
	// OutDir is the directory generated font artifacts are written to.
	// Defaults to <Data>/out.
	OutDir string
	// Version is the current version of the server
	Version string

	// CacheTTL is the default lifetime of memoized lookup results.
	CacheTTL time.Duration // FONTS_CACHE_TTL (default: 300s)
	// CacheSweepInterval is how often expired cache entries are swept.
	CacheSweepInterval time.Duration // FONTS_CACHE_SWEEP_INTERVAL (default: 60s)

	// ArtifactMaxAge is the age beyond which generated artifacts are evicted.
	ArtifactMaxAge time.Duration // FONTS_ARTIFACT_MAX_AGE (default: 24h)
	// ArtifactMaxCount bounds the number of files kept in OutDir.
	ArtifactMaxCount int // FONTS_ARTIFACT_MAX_COUNT (default: 1000)
	// ArtifactMaxBytes bounds the total size of OutDir.
	ArtifactMaxBytes int64 // FONTS_ARTIFACT_MAX_BYTES (default: 500MB)
	// ArtifactSweepInterval is how often the artifact directory is swept.
	ArtifactSweepInterval time.Duration // FONTS_ARTIFACT_SWEEP_INTERVAL (default: 1800s)

	// UploadMaxRetries bounds upload attempts per publish call.
	UploadMaxRetries int // FONTS_UPLOAD_MAX_RETRIES (default: 3)
	// UploadConcurrency bounds concurrent in-flight uploads.
	UploadConcurrency int // FONTS_UPLOAD_CONCURRENCY (default: 4)

	// Object storage endpoint configuration.
	S3Endpoint  string // FONTS_S3_ENDPOINT (default: s3.amazonaws.com)
	S3AccessKey string // FONTS_S3_ACCESS_KEY
	S3SecretKey string // FONTS_S3_SECRET_KEY
	S3UseSSL    bool   // FONTS_S3_USE_SSL (default: true)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv accepts Go duration strings; bare integers are read as
// seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

// FromEnv loads configuration from FONTS_* environment variables, filling
// unset fields with their defaults.
func (p *Profile) FromEnv() {
	p.CacheTTL = getDurationEnv("FONTS_CACHE_TTL", 300*time.Second)
	p.CacheSweepInterval = getDurationEnv("FONTS_CACHE_SWEEP_INTERVAL", 60*time.Second)
	p.ArtifactMaxAge = getDurationEnv("FONTS_ARTIFACT_MAX_AGE", 24*time.Hour)
	p.ArtifactMaxCount = getIntEnv("FONTS_ARTIFACT_MAX_COUNT", 1000)
	p.ArtifactMaxBytes = getInt64Env("FONTS_ARTIFACT_MAX_BYTES", 500*1024*1024)
	p.ArtifactSweepInterval = getDurationEnv("FONTS_ARTIFACT_SWEEP_INTERVAL", 1800*time.Second)
	p.UploadMaxRetries = getIntEnv("FONTS_UPLOAD_MAX_RETRIES", 3)
	p.UploadConcurrency = getIntEnv("FONTS_UPLOAD_CONCURRENCY", 4)

	p.S3Endpoint = getEnvOrDefault("FONTS_S3_ENDPOINT", "s3.amazonaws.com")
	p.S3AccessKey = os.Getenv("FONTS_S3_ACCESS_KEY")
	p.S3SecretKey = os.Getenv("FONTS_S3_SECRET_KEY")
	p.S3UseSSL = getEnvOrDefault("FONTS_S3_USE_SSL", "true") == "true"
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if err := os.MkdirAll(dataDir, 0o770); err != nil {
		return "", errors.Wrapf(err, "unable to create data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Data == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "unable to resolve home directory")
		}
		p.Data = filepath.Join(home, ".macos-fonts-mcp")
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.OutDir == "" {
		p.OutDir = filepath.Join(p.Data, "out")
	}
	if err := os.MkdirAll(p.OutDir, 0o770); err != nil {
		return errors.Wrapf(err, "unable to create output folder %s", p.OutDir)
	}

	return nil
}
