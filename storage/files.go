package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalFileStore stores uploaded files in a single directory, each under a
// UUID-prefixed name so repeated uploads of the same file never collide.
type LocalFileStore struct {
	dir    string
	logger *slog.Logger
}

var _ FileStore = (*LocalFileStore)(nil)

// LocalFileStoreOption configures a LocalFileStore.
type LocalFileStoreOption func(*LocalFileStore)

// WithLogger sets the logger used by the file store.
func WithLogger(logger *slog.Logger) LocalFileStoreOption {
	return func(s *LocalFileStore) {
		if logger != nil {
			s.logger = logger.With("component", "filestore")
		}
	}
}

// NewLocalFileStore creates a file store rooted at dir, creating the
// directory if needed.
func NewLocalFileStore(dir string, opts ...LocalFileStoreOption) (*LocalFileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("file store: directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("file store: creating %s: %w", dir, err)
	}
	s := &LocalFileStore{
		dir:    dir,
		logger: slog.Default().With("component", "filestore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Write stores the content under "<uuid>_<basename>". The stored name is
// what later Open, Exists, and Delete calls expect.
func (s *LocalFileStore) Write(originalName string, r io.Reader) (string, string, int64, error) {
	storedName := uuid.New().String() + "_" + sanitizeName(originalName)
	path := filepath.Join(s.dir, storedName)

	f, err := os.Create(path)
	if err != nil {
		return "", "", 0, fmt.Errorf("file store: creating %s: %w", path, err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", "", 0, fmt.Errorf("file store: writing %s: %w", path, err)
	}

	s.logger.Debug("file stored", "name", storedName, "bytes", size)
	return storedName, path, size, nil
}

// Open opens a stored file for reading.
func (s *LocalFileStore) Open(storedName string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, storedName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: file %s", ErrNotFound, storedName)
		}
		return nil, err
	}
	return f, nil
}

// Exists reports whether the stored file is present.
func (s *LocalFileStore) Exists(storedName string) bool {
	_, err := os.Stat(filepath.Join(s.dir, storedName))
	return err == nil
}

// Path returns the absolute path of a stored file without checking that it
// exists.
func (s *LocalFileStore) Path(storedName string) string {
	return filepath.Join(s.dir, storedName)
}

// Delete removes a stored file. An absent file is not an error.
func (s *LocalFileStore) Delete(storedName string) error {
	err := os.Remove(filepath.Join(s.dir, storedName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file store: removing %s: %w", storedName, err)
	}
	return nil
}

// sanitizeName reduces an upload name to a safe path component.
func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}
	return base
}
