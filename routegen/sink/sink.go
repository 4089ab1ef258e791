// Package sink provides output destinations for generated route modules.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// OutputSink receives generated file content.
// Implementations must be safe for concurrent calls.
type OutputSink interface {
	// WriteFile writes content to the specified path.
	// The path is relative and slash-separated; the sink determines the actual location.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// Remover is implemented by sinks that can delete previously written files.
// Removing a missing file is not an error.
type Remover interface {
	RemoveFile(ctx context.Context, path string) error
}

// Lister is implemented by sinks that can enumerate the files below a
// directory, used to prune modules of routes that no longer exist.
type Lister interface {
	// List returns the slash-separated paths of the regular files directly
	// inside dir, sorted. A missing dir yields no paths.
	List(ctx context.Context, dir string) ([]string, error)
}

// FilesystemSink writes to a directory on the local filesystem.
type FilesystemSink struct {
	// Root is the base directory for all writes.
	Root string

	// Mode is the file permission mode (default: 0644).
	Mode os.FileMode

	// SkipUnchanged leaves a file untouched when it already holds the
	// content being written, so file watchers do not see spurious changes.
	SkipUnchanged bool
}

// NewFilesystemSink creates a FilesystemSink writing to root that skips
// unchanged files.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{
		Root:          root,
		Mode:          0644,
		SkipUnchanged: true,
	}
}

// resolve validates p and returns its location below Root.
func (s *FilesystemSink) resolve(p string) (string, error) {
	if err := ValidatePath(p); err != nil {
		return "", fmt.Errorf("invalid path %q: %w", p, err)
	}

	fullPath := filepath.Join(s.Root, filepath.FromSlash(p))

	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root directory: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes root directory: %q", p)
	}

	return fullPath, nil
}

// WriteFile writes content to p within the root directory.
// Parent directories are created as needed and the write is atomic (temp file + rename).
func (s *FilesystemSink) WriteFile(ctx context.Context, p string, content []byte) error {
	fullPath, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.SkipUnchanged {
		old, err := os.ReadFile(fullPath)
		if err == nil && bytes.Equal(old, content) {
			return nil
		}
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}

	tempFile, err := os.CreateTemp(dir, ".genroutes-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	_, writeErr := tempFile.Write(content)
	closeErr := tempFile.Close()

	// Leftover temp files keep the .genroutes-*.tmp pattern.
	cleanup := func() { _ = os.Remove(tempPath) }

	switch {
	case writeErr != nil:
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", writeErr)
	case closeErr != nil:
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", closeErr)
	}

	if err := os.Chmod(tempPath, mode); err != nil {
		cleanup()
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := ctx.Err(); err != nil {
		cleanup()
		return err
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		cleanup()
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// RemoveFile deletes p within the root directory.
func (s *FilesystemSink) RemoveFile(ctx context.Context, p string) error {
	fullPath, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// List returns the regular files directly inside dir.
func (s *FilesystemSink) List(ctx context.Context, dir string) ([]string, error) {
	fullPath, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			paths = append(paths, path.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// MemorySink stores generated files in memory.
// All operations are thread-safe.
type MemorySink struct {
	mu     sync.RWMutex
	files  map[string][]byte
	writes int
}

// NewMemorySink creates a new MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		files: make(map[string][]byte),
	}
}

// WriteFile stores a copy of content. Unchanged content is not counted as
// a write.
func (s *MemorySink) WriteFile(ctx context.Context, p string, content []byte) error {
	if err := ValidatePath(p); err != nil {
		return fmt.Errorf("invalid path %q: %w", p, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.files[p]; ok && bytes.Equal(old, content) {
		return nil
	}
	s.files[p] = bytes.Clone(content)
	s.writes++
	return nil
}

// RemoveFile deletes p from the store.
func (s *MemorySink) RemoveFile(ctx context.Context, p string) error {
	if err := ValidatePath(p); err != nil {
		return fmt.Errorf("invalid path %q: %w", p, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files, p)
	return nil
}

// List returns the stored files directly inside dir.
func (s *MemorySink) List(ctx context.Context, dir string) ([]string, error) {
	if err := ValidatePath(dir); err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", dir, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var paths []string
	for p := range s.files {
		if path.Dir(p) == dir {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// Files returns a copy of all stored files.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte, len(s.files))
	for p, content := range s.files {
		result[p] = bytes.Clone(content)
	}
	return result
}

// Get returns the content of a single file, or nil if not found.
func (s *MemorySink) Get(p string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[p]
	if !ok {
		return nil
	}
	return bytes.Clone(content)
}

// Writes returns the number of writes that changed the store.
func (s *MemorySink) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Reset clears all stored files and the write counter.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files = make(map[string][]byte)
	s.writes = 0
}

// ValidatePath checks if a path is valid for output.
// Paths must be relative, slash-separated, clean and free of ".." components.
func ValidatePath(p string) error {
	if p == "" {
		return errors.New("path is empty")
	}

	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return errors.New("absolute paths not allowed")
	}

	// Windows drive letters are rejected on every platform.
	if len(p) >= 2 && p[1] == ':' && ((p[0] >= 'A' && p[0] <= 'Z') || (p[0] >= 'a' && p[0] <= 'z')) {
		return errors.New("absolute paths not allowed")
	}

	if slices.Contains(strings.Split(p, "/"), "..") {
		return errors.New("path traversal not allowed")
	}

	if cleaned := path.Clean(p); cleaned != p {
		return fmt.Errorf("path is not clean (expected %q, got %q)", cleaned, p)
	}

	return nil
}
