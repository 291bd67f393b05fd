// Package storage is the content-addressed blob store for uploaded
// statement documents. Documents are keyed by their fingerprint, so
// storing the same bytes twice is a no-op.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrBlobNotFound = errors.New("there is no stored document for this fingerprint")

// Store writes blobs below a root directory, sharded by the first two
// characters of the fingerprint.
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	dir := filepath.Join(root, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create blob store root: %w", err)
	}

	return &Store{root: dir}, nil
}

// Save writes the document under its fingerprint. Existing blobs are left
// untouched since identical fingerprints mean identical content.
func (s *Store) Save(fingerprint string, content []byte) error {
	path, err := s.path(fingerprint)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create blob directory: %w", err)
	}

	// Write to a temp file first so a crash never leaves a partial blob
	// under the final name
	tmp, err := os.CreateTemp(filepath.Dir(path), ".blob-*")
	if err != nil {
		return fmt.Errorf("could not create blob: %w", err)
	}

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("could not write blob: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not close blob: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}

// Load reads the document stored under the fingerprint.
func (s *Store) Load(fingerprint string) ([]byte, error) {
	path, err := s.path(fingerprint)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}

	return content, nil
}

// Delete removes the document stored under the fingerprint. Deleting a
// missing blob is not an error.
func (s *Store) Delete(fingerprint string) error {
	path, err := s.path(fingerprint)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

func (s *Store) path(fingerprint string) (string, error) {
	if len(fingerprint) < 8 {
		return "", fmt.Errorf("invalid fingerprint %q", fingerprint)
	}

	return filepath.Join(s.root, fingerprint[:2], fingerprint), nil
}
