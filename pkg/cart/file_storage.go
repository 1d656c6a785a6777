package cart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStorage persists the cart document as one JSON file under a base
// directory, so a restarted process picks the cart back up.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage creates the base directory if missing. name is the file
// name inside it, defaulting to cart.json.
func NewFileStorage(basePath, name string) (*FileStorage, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("cart storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create cart storage dir: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "cart.json"
	}
	return &FileStorage{path: filepath.Join(basePath, filepath.Base(name))}, nil
}

// Load reads the cart file; a missing file means nothing was persisted.
func (f *FileStorage) Load(_ context.Context) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cart file: %w", err)
	}
	return data, true, nil
}

// Save writes the document through a temp file and rename so a crashed
// write cannot leave a truncated cart behind.
func (f *FileStorage) Save(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cart file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace cart file: %w", err)
	}
	return nil
}

// Clear deletes the cart file; a missing file is not an error.
func (f *FileStorage) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cart file: %w", err)
	}
	return nil
}
