package publish

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apperr "github.com/akari2600/macos-fonts-mcp/internal/errors"
)

// MinioStore implements ObjectStore for MinIO/S3-compatible storage.
type MinioStore struct {
	client *minio.Client
}

// MinioConfig holds connection settings for an S3-compatible endpoint.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewMinioStore creates an ObjectStore backed by a MinIO client.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, apperr.TransientTransport("failed to create object storage client", err)
	}
	return &MinioStore{client: client}, nil
}

// translate converts MinIO error responses to the coded taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	errResp := minio.ToErrorResponse(err)
	switch errResp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return apperr.NotFound("remote object not found")
	}
	return apperr.TransientTransport("object storage request failed", err)
}

func (s *MinioStore) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, translate(err)
	}
	return ObjectInfo{Key: info.Key, Size: info.Size}, nil
}

func (s *MinioStore) PutObject(ctx context.Context, bucket, key, filePath string, opts PutOptions) error {
	putOpts := minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		CacheControl: opts.CacheControl,
	}
	if opts.PublicRead {
		putOpts.UserMetadata = map[string]string{"x-amz-acl": "public-read"}
	}

	if _, err := s.client.FPutObject(ctx, bucket, key, filePath, putOpts); err != nil {
		return translate(err)
	}
	return nil
}
