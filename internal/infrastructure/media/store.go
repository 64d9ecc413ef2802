// Package media handles the temporary photo intake for enrollment.
//
// Files are addressed deterministically: one scratch directory, one
// uuid-derived name per upload. There is no fallback probing of alternate
// locations; a path either exists under the scratch dir or the photo is gone.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store keeps uploaded photos in a single scratch directory until the
// enrollment pipeline has extracted an embedding and removed them.
type Store struct {
	dir string
}

// NewStore creates the scratch directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save streams an upload into the scratch directory and returns its path.
func (s *Store) Save(r io.Reader) (string, error) {
	path := filepath.Join(s.dir, uuid.NewString()+".img")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create temp photo: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write temp photo: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close temp photo: %w", err)
	}
	return path, nil
}

// Read returns the photo bytes. Paths outside the scratch directory are
// rejected rather than probed.
func (s *Store) Read(path string) ([]byte, error) {
	if !s.owns(path) {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(path)
}

// Remove deletes the temporary copy. Removing an already-removed file is not
// an error for callers running cleanup on every exit path.
func (s *Store) Remove(path string) error {
	if !s.owns(path) {
		return os.ErrNotExist
	}
	return os.Remove(path)
}

func (s *Store) owns(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return false
	}
	return strings.HasPrefix(abs, dir+string(filepath.Separator))
}
