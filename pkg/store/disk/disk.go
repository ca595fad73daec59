package disk

import (
	"os"
	"path/filepath"

	"shareit/pkg/log"
	"shareit/pkg/naming"
	"shareit/pkg/store"
)

const (
	dirPerm  = 0750
	filePerm = 0644
	// TempDirName is the staging subdirectory for in-flight uploads.
	// It lives inside the storage directory so the final rename never
	// crosses filesystems.
	TempDirName = ".tmp"
)

// Store implements store.Store on a single flat directory.
type Store struct {
	storageDir string
	tempDir    string
	maxSize    int64
	generate   func(original string) string
}

// Option configures a Store.
type Option func(*Store)

// WithMaxSize caps the size of a single upload; zero or negative disables the cap.
func WithMaxSize(limit int64) Option {
	return func(s *Store) {
		s.maxSize = limit
	}
}

// WithNameGenerator replaces naming.Generate. Used by tests to force collisions.
func WithNameGenerator(generate func(original string) string) Option {
	return func(s *Store) {
		s.generate = generate
	}
}

// New creates a disk store rooted at storageDir. Call Init before use.
func New(storageDir string, opts ...Option) *Store {
	s := &Store{
		storageDir: storageDir,
		tempDir:    filepath.Join(storageDir, TempDirName),
		generate:   naming.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the storage and staging directories if they are absent.
func (s *Store) Init() error {
	for _, dir := range []string{s.storageDir, s.tempDir} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("Failed to create storage directory")
			return err
		}
	}
	return nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.storageDir
}

// MaxSize returns the per-upload limit in bytes, 0 meaning unlimited.
func (s *Store) MaxSize() int64 {
	if s.maxSize < 0 {
		return 0
	}
	return s.maxSize
}

// ValidateName checks if name is a generated stored name.
func (s *Store) ValidateName(name string) bool {
	return naming.Valid(name)
}

// getFilePath returns the path for name, or "" if name is not valid.
func (s *Store) getFilePath(name string) string {
	if !s.ValidateName(name) {
		return ""
	}
	return filepath.Join(s.storageDir, name)
}

// lookup resolves name to the path of an existing regular file.
func (s *Store) lookup(name string) (string, os.FileInfo, error) {
	filePath := s.getFilePath(name)
	if filePath == "" {
		return "", nil, store.InvalidNameError{Name: name}
	}

	info, err := os.Lstat(filePath)
	if os.IsNotExist(err) {
		return "", nil, store.FileNotFoundError{Name: name}
	} else if err != nil {
		return "", nil, err
	}

	if !info.Mode().IsRegular() {
		return "", nil, store.FileNotFoundError{Name: name}
	}
	return filePath, info, nil
}

var _ store.Store = (*Store)(nil)
