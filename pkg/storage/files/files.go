// Package files stores resume documents addressed by an opaque key.
//
// Keys are bare file names generated by Save. Every operation re-validates
// the key so that nothing outside the storage root (a directory or a bucket
// prefix) can ever be read, written or removed.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/recruitment/pkg/config"
)

var (
	ErrNotFound         = errors.New("file not found")
	ErrInvalidReference = errors.New("invalid storage reference")
)

// ErrValidation is returned when the submitted bytes can never be stored.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

// Storage is the resume byte store.
type Storage interface {
	// Save writes data under a freshly generated unique key and returns it.
	Save(ctx context.Context, ownerID uuid.UUID, filename string, data io.Reader) (string, error)
	// Stat returns metadata of a stored object.
	Stat(ctx context.Context, key string) (Info, error)
	// Open streams length bytes starting at offset; a negative length reads to the end.
	// The caller must close the returned reader.
	Open(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error)
	// Delete removes an object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
	// Check verifies the backend is usable (readiness probes).
	Check(ctx context.Context) error
}

type Info struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Policy describes which uploads may become resumes.
type Policy struct {
	MaxBytes   int64
	Extensions []string
}

func DefaultPolicy() Policy {
	return Policy{MaxBytes: 5 << 20, Extensions: []string{".pdf", ".doc", ".docx"}}
}

// Check validates the name and size of an upload before any byte is stored.
func (p Policy) Check(filename string, size int64) error {
	if size <= 0 {
		return ErrValidation("resume file is empty")
	}
	if size > p.MaxBytes {
		return ErrValidation(fmt.Sprintf("file too large: limit is %d bytes", p.MaxBytes))
	}
	if !p.Allows(filename) {
		return ErrValidation("unsupported file format: allowed " + strings.Join(p.Extensions, ", "))
	}
	return nil
}

func (p Policy) Allows(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	for _, allowed := range p.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// New creates a storage instance based on configuration
func New(ctx context.Context, cfg config.StorageConfig, policy Policy) (Storage, error) {
	switch cfg.Type {
	case config.StorageLocal:
		return NewLocal(cfg.Root, policy)
	case config.StorageS3:
		return NewS3(ctx, cfg, policy)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

const maxBaseLen = 64

// generateKey builds resume_{owner}_{millis}_{base}{ext}.
// attempt > 0 adds a suffix for the rare same-millisecond collision.
func generateKey(ownerID uuid.UUID, filename string, now time.Time, attempt int) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "_")
	if len(base) > maxBaseLen {
		base = base[:maxBaseLen]
	}
	if base == "" {
		base = "resume"
	}
	key := fmt.Sprintf("resume_%s_%d_%s", ownerID, now.UnixMilli(), base)
	if attempt > 0 {
		key = fmt.Sprintf("%s-%d", key, attempt)
	}
	return key + ext
}

// ValidateKey accepts only bare file names produced by Save.
func ValidateKey(key string) error {
	switch {
	case key == "", key == ".", key == "..":
		return ErrInvalidReference
	case strings.ContainsAny(key, "/\\\x00"):
		return ErrInvalidReference
	case strings.Contains(key, ".."):
		return ErrInvalidReference
	case strings.Contains(key, "://"):
		return ErrInvalidReference
	case filepath.IsAbs(key):
		return ErrInvalidReference
	}
	return nil
}

// ContentType determines content type from filename
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// copyLimited copies at most max+1 bytes so oversize input is detected
// without buffering it completely.
func copyLimited(dst io.Writer, src io.Reader, max int64) (int64, error) {
	n, err := io.Copy(dst, io.LimitReader(src, max+1))
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}
	if n > max {
		return n, ErrValidation(fmt.Sprintf("file too large: limit is %d bytes", max))
	}
	if n == 0 {
		return n, ErrValidation("resume file is empty")
	}
	return n, nil
}
