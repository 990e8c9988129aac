package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nikhilbhutani/docchat/internal/models"
	"github.com/nikhilbhutani/docchat/internal/storage"
)

// Service coordinates the registry and the blob store for the library operations.
type Service struct {
	registry Registry
	blobs    storage.BlobStore
}

func NewService(registry Registry, blobs storage.BlobStore) *Service {
	return &Service{registry: registry, blobs: blobs}
}

type UploadRequest struct {
	Filename string
	Data     io.Reader
}

// Upload validates the extension, writes the blob and then registers the document.
// The blob is written before the registry commit and removed again if the
// insert fails, so a registry row never points at a missing blob.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*models.Document, error) {
	name := req.Filename
	if err := ValidateExtension(name); err != nil {
		return nil, err
	}
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}

	exists, err := s.registry.NameExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	if err := s.blobs.Write(ctx, name, req.Data); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		return nil, fmt.Errorf("store file: %w", err)
	}

	doc, err := s.registry.Register(ctx, name)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, name); delErr != nil {
			slog.Error("failed to remove blob after registry error", "name", name, "error", delErr)
		}
		return nil, err
	}

	slog.Info("document uploaded", "document_id", doc.ID, "name", doc.Name)
	return doc, nil
}

func (s *Service) List(ctx context.Context) ([]models.Document, error) {
	return s.registry.List(ctx)
}

// Delete removes the registry row and then the blob. Active documents are
// refused with ReasonDocumentInUse and nothing is touched.
func (s *Service) Delete(ctx context.Context, id int64) (*DeleteResult, error) {
	res, err := s.registry.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !res.Removed {
		return res, nil
	}

	if err := s.blobs.Delete(ctx, res.Name); err != nil {
		slog.Warn("document row removed but blob delete failed", "document_id", id, "name", res.Name, "error", err)
	}
	return res, nil
}

// ValidateExtension accepts only the file kinds the pipeline can extract.
func ValidateExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(models.AllowedExtensions, ext) {
		return fmt.Errorf("%w. Allowed types are: %s", ErrUnsupportedFileType, strings.Join(models.AllowedExtensions, ", "))
	}
	return nil
}
