// Package artifacts persists generated reports and diagrams under a single
// output directory and serves them back safely for download.
package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when a requested artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// ErrBadName is returned for artifact names that are empty, contain path
// separators, or otherwise attempt to escape the output directory.
var ErrBadName = errors.New("invalid artifact name")

// Store writes and reads files inside one output directory. Concurrent
// writers get deduplicated filenames instead of overwriting each other.
type Store struct {
	dir string

	mu   sync.Mutex
	used map[string]int
}

// NewStore creates the output directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", dir, err)
	}
	return &Store{dir: dir, used: make(map[string]int)}, nil
}

// Dir returns the store's output directory.
func (s *Store) Dir() string { return s.dir }

// Save writes data under name, returning the name actually used. When the
// name was already handed out this session a numeric suffix is appended.
func (s *Store) Save(name string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	s.mu.Lock()
	final := name
	if count, exists := s.used[name]; exists {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		final = fmt.Sprintf("%s-%d%s", base, count+1, ext)
		s.used[name] = count + 1
	} else {
		s.used[name] = 0
	}
	s.mu.Unlock()

	if err := os.WriteFile(filepath.Join(s.dir, final), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact %q: %w", final, err)
	}
	return final, nil
}

// Open returns the contents of a stored artifact.
func (s *Store) Open(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read artifact %q: %w", name, err)
	}
	return data, nil
}

// List returns the stored artifact names in sorted order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list output directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// checkName rejects anything that could resolve outside the output directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	if filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}
