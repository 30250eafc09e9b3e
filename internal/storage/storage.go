// Package storage persists the signature images captured on the public
// signing page. Blobs are immutable once written; quotations reference
// them by the opaque path Save returns.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/config"
	"go.uber.org/zap"
)

// Storage stores and retrieves signature images
type Storage interface {
	// Save writes the image and returns the path to reference it by
	Save(ctx context.Context, name string, data []byte) (string, error)
	// Open streams a previously saved image
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes an image. Deleting an unknown path is a no-op.
	Delete(ctx context.Context, path string) error
}

// NewStorage picks the backend from config: local filesystem for
// development, Azure Blob for deployed environments.
func NewStorage(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalStorage(cfg.LocalBasePath)
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStorage(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// LocalStorage keeps signature images on the local filesystem
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(basePath, "signatures"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes the image under a fresh unique path. The caller's name is
// kept as a suffix so files on disk stay recognizable.
func (s *LocalStorage) Save(ctx context.Context, name string, data []byte) (string, error) {
	path := filepath.Join("signatures", uuid.NewString()+"-"+filepath.Base(name))
	if err := os.WriteFile(filepath.Join(s.basePath, path), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write signature: %w", err)
	}
	return path, nil
}

func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(s.basePath, path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("signature not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open signature: %w", err)
	}
	return file, nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if err := os.Remove(filepath.Join(s.basePath, path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete signature: %w", err)
	}
	return nil
}
