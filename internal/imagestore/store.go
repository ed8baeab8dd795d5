package imagestore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes uploaded meter images into the public static-asset
// directory, named by their measure identifier.
type Store struct {
	publicDir string
}

// NewStore creates a new image store rooted at publicDir.
func NewStore(publicDir string) *Store {
	return &Store{publicDir: publicDir}
}

// Save writes the decoded image bytes to <publicDir>/<id>.png, creating the
// directory if needed.
func (s *Store) Save(id uuid.UUID, data []byte) error {
	if err := os.MkdirAll(s.publicDir, 0o755); err != nil {
		return fmt.Errorf("failed to create public directory: %w", err)
	}

	path := filepath.Join(s.publicDir, FileName(id))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	return nil
}

// FileName returns the public file name for a measure image.
func FileName(id uuid.UUID) string {
	return id.String() + ".png"
}
