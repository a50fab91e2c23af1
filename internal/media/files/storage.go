// Package files provides disk storage for book media: cover images and
// epub files.
package files

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage manages media filesystem operations for one kind of file.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	ext      string
	mu       sync.RWMutex // Protects file operations
}

// NewCoverStorage creates a Storage for book cover images.
// basePath should be the media directory (e.g., ~/Ebookd/data/media).
// Covers are stored in {basePath}/covers/{bookID}.jpg.
func NewCoverStorage(basePath string) (*Storage, error) {
	return newStorage(basePath, "covers", ".jpg")
}

// NewEpubStorage creates a Storage for epub files.
// Files are stored in {basePath}/epubs/{bookID}.epub.
func NewEpubStorage(basePath string) (*Storage, error) {
	return newStorage(basePath, "epubs", ".epub")
}

func newStorage(basePath, subdir, ext string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	storagePath := filepath.Join(basePath, subdir)

	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
	}

	return &Storage{
		basePath: storagePath,
		ext:      ext,
	}, nil
}

// Save stores data for a book.
func (s *Storage) Save(bookID string, data []byte) error {
	if bookID == "" {
		return fmt.Errorf("book ID cannot be empty")
	}
	if len(data) == 0 {
		return fmt.Errorf("data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.Path(bookID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Get retrieves stored data for a book.
func (s *Storage) Get(bookID string) ([]byte, error) {
	if bookID == "" {
		return nil, fmt.Errorf("book ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(bookID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found for %s: %w", bookID, err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// Exists checks if a file exists for a book.
func (s *Storage) Exists(bookID string) bool {
	if bookID == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(bookID))
	return err == nil
}

// Delete removes a book's file. Deleting a missing file is not an error.
func (s *Storage) Delete(bookID string) error {
	if bookID == "" {
		return fmt.Errorf("book ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(bookID)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// Hash computes the SHA256 hash of a book's file.
// Returns hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(bookID string) (string, error) {
	data, err := s.Get(bookID)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the full filesystem path for a book's file.
func (s *Storage) Path(bookID string) string {
	return filepath.Join(s.basePath, bookID+s.ext)
}
