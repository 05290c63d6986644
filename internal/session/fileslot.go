package session

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSlot persists the credential record as a JSON file.
//
// The default location is ~/.tempo/session.json.
type FileSlot struct {
	path string
}

// NewFileSlot creates a FileSlot at the given path. An empty path resolves to
// the default location under the user's home directory.
func NewFileSlot(path string) (*FileSlot, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".tempo", "session.json")
	}
	return &FileSlot{path: path}, nil
}

// Read returns the file contents, or (nil, nil) when the file does not exist.
func (f *FileSlot) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return data, nil
}

// Write replaces the file contents via a temp file and rename, so a partial
// write is never observable.
func (f *FileSlot) Write(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to set session file mode: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	return nil
}

// Clear removes the file. Removing a missing file is a no-op.
func (f *FileSlot) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session file: %w", err)
	}
	return nil
}

// Path returns the slot's file location.
func (f *FileSlot) Path() string {
	return f.path
}
