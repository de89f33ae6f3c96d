// Package storage persists run artifacts on the local disk or in an object
// store.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/feichai0017/pdf-ocr/config"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
	"github.com/feichai0017/pdf-ocr/pkg/storage/local"
	"github.com/feichai0017/pdf-ocr/pkg/storage/minio"
	"github.com/feichai0017/pdf-ocr/pkg/storage/s3"
)

// Storage stores artifacts under slash-separated keys. Store overwrites
// an existing object with the same key.
type Storage interface {
	// Store writes reader to key and returns the location it was written to.
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewStorage builds the backend selected by cfg.Output.Storage.
func NewStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (Storage, error) {
	switch cfg.Output.Storage {
	case config.StorageLocal, "":
		return local.New(cfg.Output.Dir, log)
	case config.StorageMinio:
		store, err := minio.NewMinioStorage(ctx, cfg.Minio, log)
		if err != nil {
			return nil, err
		}
		return WithPrefix(store, cfg.Output.Prefix), nil
	case config.StorageS3:
		store, err := s3.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			return nil, err
		}
		return WithPrefix(store, cfg.Output.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Output.Storage)
	}
}

type prefixed struct {
	Storage
	prefix string
}

// WithPrefix places every key of s under prefix. An empty prefix returns s
// unchanged.
func WithPrefix(s Storage, prefix string) Storage {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return s
	}
	return &prefixed{Storage: s, prefix: prefix}
}

func (p *prefixed) key(key string) string {
	return path.Join(p.prefix, key)
}

func (p *prefixed) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	return p.Storage.Store(ctx, reader, p.key(key))
}

func (p *prefixed) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return p.Storage.Get(ctx, p.key(key))
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.Storage.Delete(ctx, p.key(key))
}
