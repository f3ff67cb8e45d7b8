package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxKeyAttempts = 5

// Local stores resumes as flat files inside one root directory.
type Local struct {
	root   string
	policy Policy
	now    func() time.Time
}

// NewLocal creates the root directory if needed and returns a local store.
func NewLocal(root string, policy Policy) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Local{root: abs, policy: policy, now: time.Now}, nil
}

// Root returns the absolute storage root.
func (s *Local) Root() string { return s.root }

func (s *Local) Save(ctx context.Context, ownerID uuid.UUID, filename string, data io.Reader) (string, error) {
	if !s.policy.Allows(filename) {
		return "", ErrValidation("unsupported file format")
	}
	now := s.now()
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key := generateKey(ownerID, filename, now, attempt)
		fullPath, err := s.Resolve(key)
		if err != nil {
			return "", err
		}
		// O_EXCL: an existing object is never overwritten.
		file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create file: %w", err)
		}
		if _, err := copyLimited(file, data, s.policy.MaxBytes); err != nil {
			file.Close()
			os.Remove(fullPath) // Clean up on error
			return "", err
		}
		if err := file.Close(); err != nil {
			os.Remove(fullPath)
			return "", fmt.Errorf("failed to close file: %w", err)
		}
		return key, nil
	}
	return "", fmt.Errorf("failed to allocate a unique name for %q", filename)
}

// Resolve maps a key to an absolute path that is guaranteed to live directly
// inside the storage root.
func (s *Local) Resolve(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.root, key)
	rel, err := filepath.Rel(s.root, fullPath)
	if err != nil || rel != key || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidReference
	}
	if fi, err := os.Lstat(fullPath); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		return "", ErrInvalidReference
	}
	return fullPath, nil
}

func (s *Local) Stat(ctx context.Context, key string) (Info, error) {
	fullPath, err := s.Resolve(key)
	if err != nil {
		return Info{}, err
	}
	fi, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, ErrNotFound
		}
		return Info{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return Info{}, ErrNotFound
	}
	return Info{Key: key, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

func (s *Local) Open(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	fullPath, err := s.Resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to seek file: %w", err)
		}
	}
	if length < 0 {
		return file, nil
	}
	return limitedReadCloser{Reader: io.LimitReader(file, length), Closer: file}, nil
}

func (s *Local) Delete(ctx context.Context, key string) error {
	fullPath, err := s.Resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Check makes sure the root is still writable.
func (s *Local) Check(ctx context.Context) error {
	probe, err := os.CreateTemp(s.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("storage root not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

type limitedReadCloser struct {
	io.Reader
	io.Closer
}
