package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hugh/recipe-api/pkg/config"
)

var ErrUnsupportedBackend = errors.New("unsupported storage backend")

// Storage persists uploaded media under slash-separated keys.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// URL returns the public URL clients use to fetch the object.
	URL(key string) string
}

// New returns the backend selected by cfg.Backend.
func New(ctx context.Context, cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocal(cfg.MediaRoot, cfg.MediaURL)
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "gcs":
		return NewGCS(ctx, GCSOptions{
			Bucket:          cfg.GCSBucket,
			CredentialsFile: cfg.GCSCredentialsFile,
			BaseURL:         cfg.GCSBaseURL,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
}

func joinURL(base, key string) string {
	if base == "" {
		return key
	}
	if base[len(base)-1] != '/' {
		base += "/"
	}
	return base + key
}
