package preview

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Handle is a revocable reference to the current preview image. It stays
// valid until the selection it belongs to is replaced or cleared.
type Handle struct {
	Token       string
	FileName    string
	ContentType string
}

// Store keeps at most one preview image on disk. Replacing or clearing the
// selection releases the previous file exactly once.
type Store struct {
	basePath string

	mu      sync.Mutex
	current *Handle
	path    string
}

func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preview directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Set writes the image to disk and issues a fresh handle. The previous
// handle, if any, is released after the new file is in place so a write
// failure never loses the existing preview.
func (s *Store) Set(fileName, contentType string, r io.Reader) (*Handle, error) {
	ext := filepath.Ext(fileName)
	token := uuid.New().String()
	fullPath := filepath.Join(s.basePath, token+ext)

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write preview file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write preview file: %w", err)
	}

	handle := &Handle{Token: token, FileName: fileName, ContentType: contentType}

	s.mu.Lock()
	oldPath := s.path
	s.current = handle
	s.path = fullPath
	s.mu.Unlock()

	if oldPath != "" {
		os.Remove(oldPath)
	}

	return handle, nil
}

// Clear releases the current handle. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	oldPath := s.path
	s.current = nil
	s.path = ""
	s.mu.Unlock()

	if oldPath == "" {
		return nil
	}
	if err := os.Remove(oldPath); err != nil {
		return fmt.Errorf("failed to remove preview file: %w", err)
	}
	return nil
}

// Open returns the preview bytes for the given token. Tokens from released
// handles are rejected.
func (s *Store) Open(token string) (io.ReadSeekCloser, *Handle, error) {
	if strings.Contains(filepath.Clean(token), "..") {
		return nil, nil, fmt.Errorf("invalid token")
	}

	s.mu.Lock()
	handle := s.current
	path := s.path
	s.mu.Unlock()

	if handle == nil || handle.Token != token {
		return nil, nil, fmt.Errorf("no preview for token")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open preview file: %w", err)
	}
	return file, handle, nil
}

// Current returns the live handle, or nil when no preview exists.
func (s *Store) Current() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close releases whatever handle is still live.
func (s *Store) Close() error {
	return s.Clear()
}
