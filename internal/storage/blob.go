package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"lexvault/internal/domain"
)

// WriteResult reports what a streaming write produced: the byte size and
// the SHA-256 hex fingerprint, both computed in the single copy pass.
type WriteResult struct {
	Size        int64
	ContentHash string
}

// BlobStore is the narrow filesystem contract the repository core needs:
// recursive directory creation, streaming byte copy to a named path,
// deletion, and size query. Paths produced by PathFor are write-once and
// immutable for the lifetime of a version.
type BlobStore interface {
	// Write streams src to path, creating parent directories as needed.
	// The path must not already exist (versioned paths are never reused).
	Write(ctx context.Context, path string, src io.Reader) (*WriteResult, error)

	// Open opens the blob at path for reading. The caller closes it.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Remove deletes the blob at path. Removing a missing blob is not an
	// error so permanent deletes stay idempotent.
	Remove(ctx context.Context, path string) error

	// Size returns the byte size of the blob at path.
	Size(ctx context.Context, path string) (int64, error)
}

// FileStore is the local-filesystem BlobStore.
type FileStore struct{}

// NewFileStore creates a filesystem-backed blob store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Write implements BlobStore. Cancellation is honored before the copy
// begins; once the copy has started it runs to completion and the caller's
// transaction decides whether the row side commits.
func (s *FileStore) Write(ctx context.Context, path string, src io.Reader) (*WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w: %v", domain.ErrStorageIO, err)
	}

	// O_EXCL enforces write-once: a version path is written exactly once.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create blob %s: %w: %v", path, domain.ErrStorageIO, err)
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, hasher), src)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("copy blob %s: %w: %v", path, domain.ErrStorageIO, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close blob %s: %w: %v", path, domain.ErrStorageIO, err)
	}

	return &WriteResult{
		Size:        size,
		ContentHash: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Open implements BlobStore.
func (s *FileStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open blob %s: %w: %v", path, domain.ErrStorageIO, err)
	}
	return f, nil
}

// Remove implements BlobStore.
func (s *FileStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove blob %s: %w: %v", path, domain.ErrStorageIO, err)
	}
	return nil
}

// Size implements BlobStore.
func (s *FileStore) Size(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("blob %s: %w", path, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("stat blob %s: %w: %v", path, domain.ErrStorageIO, err)
	}
	return info.Size(), nil
}
