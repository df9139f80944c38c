package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	apperr "github.com/akari2600/macos-fonts-mcp/internal/errors"
)

// Target describes one publish destination. Supplied per call, never
// persisted.
type Target struct {
	Bucket       string `json:"bucket"`
	Prefix       string `json:"prefix,omitempty"`
	Region       string `json:"region,omitempty"`
	Public       bool   `json:"public"`
	CacheSeconds int    `json:"cacheSeconds"`
	Overwrite    bool   `json:"overwrite"`
}

// Validate checks the target for malformed fields.
func (t Target) Validate() error {
	if t.Bucket == "" {
		return apperr.InvalidArgument("publish target bucket is required")
	}
	if t.CacheSeconds < 0 {
		return apperr.InvalidArgument("cacheSeconds must not be negative")
	}
	return nil
}

// Result is the outcome of one publish call. Constructed fresh every time;
// it reflects remote state that may change between calls.
type Result struct {
	URL         string `json:"url"`
	CSS         string `json:"css"`
	SizeBytes   int64  `json:"sizeBytes"`
	ContentHash string `json:"contentHash"`
	SampleHTML  string `json:"sampleHtml"`
}

// Pipeline publishes local artifacts to an ObjectStore. Uploads run under
// a weighted semaphore so slow transfers never stall the background
// schedulers sharing the process.
type Pipeline struct {
	store      ObjectStore
	maxRetries int
	uploadSem  *semaphore.Weighted
	logger     *slog.Logger

	// sleep is swappable for tests.
	sleep func(time.Duration)
}

// NewPipeline creates a publish pipeline over the given store.
func NewPipeline(store ObjectStore, maxRetries, uploadConcurrency int) *Pipeline {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if uploadConcurrency <= 0 {
		uploadConcurrency = 4
	}
	return &Pipeline{
		store:      store,
		maxRetries: maxRetries,
		uploadSem:  semaphore.NewWeighted(int64(uploadConcurrency)),
		logger:     slog.Default(),
		sleep:      time.Sleep,
	}
}

// SetLogger sets a custom logger.
func (p *Pipeline) SetLogger(logger *slog.Logger) {
	p.logger = logger
}

// RemoteKey derives the content-addressed object key. Identical content
// under an identical prefix always yields the identical key.
func RemoteKey(prefix, contentHash, baseName string) string {
	key := contentHash[:8] + "-" + baseName
	if prefix != "" {
		key = strings.TrimRight(prefix, "/") + "/" + key
	}
	return key
}

// hashFile computes the sha256 digest of the file's full content.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// publicURL builds the public object URL from the bucket/region/key
// convention.
func publicURL(bucket, region, key string) string {
	if region != "" && region != "us-east-1" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}

// Publish uploads the artifact at localPath to the target, skipping the
// transfer when an object with the same content-addressed key already
// exists and overwrite is off.
func (p *Pipeline) Publish(ctx context.Context, localPath string, target Target) (*Result, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("artifact not found: %s", localPath)
		}
		return nil, err
	}

	contentHash, err := hashFile(localPath)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(localPath)
	key := RemoteKey(target.Prefix, contentHash, base)
	url := publicURL(target.Bucket, target.Region, key)

	if !target.Overwrite {
		_, probeErr := p.store.StatObject(ctx, target.Bucket, key)
		if probeErr == nil {
			p.logger.Info("object already published, skipping upload", "bucket", target.Bucket, "key", key)
			return p.buildResult(base, url, info.Size(), contentHash), nil
		}
		// A missing object is the only probe outcome that permits upload.
		if !apperr.IsNotFound(probeErr) {
			return nil, probeErr
		}
	}

	if err := p.uploadWithRetry(ctx, localPath, target, key); err != nil {
		return nil, err
	}

	p.logger.Info("published artifact", "bucket", target.Bucket, "key", key, "size_bytes", info.Size())
	return p.buildResult(base, url, info.Size(), contentHash), nil
}

// uploadWithRetry attempts the transfer up to maxRetries times, sleeping
// 2^attempt seconds between attempts. The final error is fatal.
func (p *Pipeline) uploadWithRetry(ctx context.Context, localPath string, target Target, key string) error {
	opts := PutOptions{
		ContentType:  "font/woff2",
		CacheControl: fmt.Sprintf("public, max-age=%d, immutable", target.CacheSeconds),
		PublicRead:   target.Public,
	}

	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if err := p.uploadSem.Acquire(ctx, 1); err != nil {
			return apperr.TransientTransport("upload cancelled", err)
		}
		err := p.store.PutObject(ctx, target.Bucket, key, localPath, opts)
		p.uploadSem.Release(1)

		if err == nil {
			return nil
		}
		lastErr = err
		p.logger.Warn("upload attempt failed", "bucket", target.Bucket, "key", key, "attempt", attempt+1, "error", err)

		if attempt < p.maxRetries-1 {
			p.sleep(time.Duration(1<<attempt) * time.Second)
		}
	}

	return apperr.PublishFailed(fmt.Sprintf("upload failed after %d attempts", p.maxRetries), lastErr)
}

func (p *Pipeline) buildResult(base, url string, size int64, contentHash string) *Result {
	family := strings.TrimSuffix(base, filepath.Ext(base))
	css := FontFaceCSS(family, url, "", "")
	return &Result{
		URL:         url,
		CSS:         css,
		SizeBytes:   size,
		ContentHash: contentHash,
		SampleHTML:  SampleHTML(family, css),
	}
}
