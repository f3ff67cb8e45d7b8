package resume

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/artem13815/recruitment/pkg/application"
	"github.com/artem13815/recruitment/pkg/auth"
	"github.com/artem13815/recruitment/pkg/job"
	"github.com/artem13815/recruitment/pkg/storage/files"
)

// UseCase authorizes resume access and resolves the stored bytes.
type UseCase interface {
	// Authorize returns the application when caller may read its resume.
	Authorize(ctx context.Context, caller Caller, applicationID uuid.UUID) (application.Application, error)
	// Prepare runs every check that does not need the bytes themselves, so
	// failures are reported before a response starts streaming.
	Prepare(ctx context.Context, caller Caller, applicationID uuid.UUID, mode Mode) (*File, error)
}

type service struct {
	apps     application.Repository
	jobs     job.Repository
	store    files.Storage
	hrAnyJob bool
}

// NewService wires the delivery use case. With hrAnyJob every approved HR may
// read every resume; otherwise only resumes sent to the HR's own jobs.
func NewService(apps application.Repository, jobs job.Repository, store files.Storage, hrAnyJob bool) UseCase {
	return &service{apps: apps, jobs: jobs, store: store, hrAnyJob: hrAnyJob}
}

func (s *service) Authorize(ctx context.Context, caller Caller, applicationID uuid.UUID) (application.Application, error) {
	u := caller.User
	if u.ID == uuid.Nil {
		return application.Application{}, ErrUnauthorized
	}
	if !u.Active() {
		return application.Application{}, ErrForbidden
	}
	if caller.TicketApplicationID != uuid.Nil && caller.TicketApplicationID != applicationID {
		return application.Application{}, ErrForbidden
	}
	a, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			return application.Application{}, ErrNotFound
		}
		return application.Application{}, err
	}

	switch u.Role {
	case auth.RoleCandidate:
		if a.CandidateID == u.ID {
			return a, nil
		}
	case auth.RoleHR:
		if s.hrAnyJob {
			return a, nil
		}
		j, err := s.jobs.GetByID(ctx, a.JobID)
		if err != nil && !errors.Is(err, job.ErrNotFound) {
			return application.Application{}, err
		}
		if err == nil && j.OwnerID == u.ID {
			return a, nil
		}
	}
	return application.Application{}, ErrForbidden
}

func (s *service) Prepare(ctx context.Context, caller Caller, applicationID uuid.UUID, mode Mode) (*File, error) {
	a, err := s.Authorize(ctx, caller, applicationID)
	if err != nil {
		return nil, err
	}

	ref, err := application.ParseReference(a.ResumeReference)
	if err != nil {
		return nil, ErrForbidden
	}
	if ref.Kind == application.LegacyRemoteURL {
		return nil, ErrNeedsMigration
	}

	filename := a.ResumeFilename
	if filename == "" {
		filename = ref.Name
	}
	contentType := files.ContentType(ref.Name)
	if mode == View && !isPDF(ref.Name) {
		return nil, ErrUnsupportedPreview
	}

	info, err := s.store.Stat(ctx, ref.Name)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return &File{
		Filename:    filename,
		ContentType: contentType,
		Size:        info.Size,
		ModTime:     info.ModTime,
		key:         ref.Name,
		store:       s.store,
	}, nil
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

func mapStorageErr(err error) error {
	switch {
	case errors.Is(err, files.ErrNotFound):
		return ErrFileMissing
	case errors.Is(err, files.ErrInvalidReference):
		return ErrForbidden
	default:
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
}
