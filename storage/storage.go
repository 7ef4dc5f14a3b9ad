// Package storage keeps run artifacts (screenshots and rendered reports) in
// a blob store, either a local directory or an S3 bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// BlobStorage defines the interface for storing and retrieving artifacts.
type BlobStorage interface {
	// Upload stores data from the reader at the specified path.
	Upload(ctx context.Context, path string, reader io.Reader) error

	// Download retrieves data from the specified path.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the data at the specified path.
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the specified path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the paths stored under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// GetURL returns a URL for accessing the data at the specified path.
	// Local storage returns a file:// URL, S3 a presigned URL.
	GetURL(ctx context.Context, path string) (string, error)
}

// Config selects and configures a BlobStorage.
type Config struct {
	// Type is "local" or "s3".
	Type string

	BaseDir string

	Bucket        string
	Region        string
	Prefix        string
	Endpoint      string
	PresignExpiry time.Duration
}

// New creates a BlobStorage implementation based on configuration.
func New(ctx context.Context, cfg Config) (BlobStorage, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "local":
		if cfg.BaseDir == "" {
			return nil, fmt.Errorf("%w: base_dir is required for local storage", ErrInvalidConfig)
		}
		return NewLocalStorage(cfg.BaseDir)

	case "s3":
		s, err := NewS3Storage(ctx, S3Config{
			Bucket:        cfg.Bucket,
			Region:        cfg.Region,
			Prefix:        cfg.Prefix,
			Endpoint:      cfg.Endpoint,
			PresignExpiry: cfg.PresignExpiry,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("%w: unsupported storage type %q", ErrInvalidConfig, cfg.Type)
	}
}

// Put uploads data at p.
func Put(ctx context.Context, s BlobStorage, p string, data []byte) error {
	return s.Upload(ctx, p, bytes.NewReader(data))
}

// Join builds a storage path from slash separated elements.
func Join(elem ...string) string {
	return path.Join(elem...)
}

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".json": "application/json",
	".html": "text/html; charset=utf-8",
	".txt":  "text/plain; charset=utf-8",
	".csv":  "text/csv",
}

// ContentType guesses the media type of an artifact from its extension.
func ContentType(p string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(p))]; ok {
		return ct
	}
	return "application/octet-stream"
}
