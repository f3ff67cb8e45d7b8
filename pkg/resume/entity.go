package resume

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/recruitment/pkg/auth"
	"github.com/artem13815/recruitment/pkg/storage/files"
)

var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("access denied")
	ErrNotFound     = errors.New("application not found")
	// ErrFileMissing: the record exists but its bytes are gone; the candidate has to re-upload.
	ErrFileMissing        = errors.New("resume file not found; please re-upload")
	ErrUnsupportedPreview = errors.New("preview is available for PDF files only; download the file instead")
	// ErrNeedsMigration: the reference was written by an older storage generation.
	ErrNeedsMigration = errors.New("resume data needs migration")
	ErrStorage        = errors.New("failed to read resume file")
)

// Mode задаёт способ отдачи файла: встроенный просмотр или скачивание.
type Mode int

const (
	View Mode = iota + 1
	Download
)

// Caller описывает, кто запрашивает резюме.
type Caller struct {
	User auth.User
	// TicketApplicationID is set when the credential is a resume ticket; it
	// grants access to that one application only.
	TicketApplicationID uuid.UUID
}

// File описывает готовый к отдаче файл резюме.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	ModTime     time.Time

	key   string
	store files.Storage
}

// Open streams length bytes from offset; a negative length reads to the end.
func (f *File) Open(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	rc, err := f.store.Open(ctx, f.key, offset, length)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return rc, nil
}
