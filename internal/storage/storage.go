package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nikhilbhutani/docchat/internal/config"
)

var (
	// ErrAlreadyExists is returned by Write when a blob with the same name is present.
	ErrAlreadyExists = errors.New("blob already exists")
	ErrNotFound      = errors.New("blob not found")
	ErrInvalidName   = errors.New("invalid blob name")
)

// BlobStore keeps raw uploaded files keyed by their original filename.
// Writes are create-only: a name is written once and later deleted, never overwritten.
type BlobStore interface {
	Write(ctx context.Context, name string, data io.Reader) error
	Read(ctx context.Context, name string) ([]byte, error)
	Exists(ctx context.Context, name string) (bool, error)
	// Delete is a no-op when the blob is absent.
	Delete(ctx context.Context, name string) error
}

// MaxNameLength is the longest blob name in bytes. It matches the documents.name column.
const MaxNameLength = 255

// ValidateName rejects names that would escape the flat library namespace or
// exceed MaxNameLength.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || len(name) > MaxNameLength {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// New returns the blob backend selected by cfg.Backend.
func New(cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.LibraryPath)
	case "supabase":
		return NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
