package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore stores blobs as files in a single flat directory.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, name)
}

func (s *LocalStore) Write(_ context.Context, name string, data io.Reader) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	// O_EXCL makes the existence check and the create a single step.
	f, err := os.OpenFile(s.path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
		}
		return fmt.Errorf("create blob %s: %w", name, err)
	}

	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(s.path(name))
		return fmt.Errorf("write blob %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(s.path(name))
		return fmt.Errorf("close blob %s: %w", name, err)
	}
	return nil
}

func (s *LocalStore) Read(_ context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read blob %s: %w", name, err)
	}
	return data, nil
}

func (s *LocalStore) Exists(_ context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	_, err := os.Stat(s.path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat blob %s: %w", name, err)
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob %s: %w", name, err)
	}
	return nil
}
