package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusApplied     Status = "applied"
	StatusShortlisted Status = "shortlisted"
	StatusRejected    Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusShortlisted, StatusRejected:
		return true
	}
	return false
}

var (
	ErrNotFound         = errors.New("application not found")
	ErrAlreadyApplied   = errors.New("already applied to this job")
	ErrJobClosed        = errors.New("job not found or closed")
	ErrForbidden        = errors.New("access denied")
	ErrReferenceChanged = errors.New("resume reference changed concurrently")
)

// ErrValidation простая ошибка валидации.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

// Application хранит отклик кандидата на вакансию вместе со ссылкой на файл резюме.
type Application struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"jobId"`
	CandidateID uuid.UUID `json:"candidateId"`
	Status      Status    `json:"status"`
	// ResumeReference is meaningful only to the storage backend and never leaves the server.
	ResumeReference string    `json:"-"`
	ResumeFilename  string    `json:"resumeFilename"`
	AppliedAt       time.Time `json:"appliedAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// filled by list queries
	JobTitle       string `json:"jobTitle,omitempty"`
	CandidateName  string `json:"candidateName,omitempty"`
	CandidateEmail string `json:"candidateEmail,omitempty"`
}

// Repository описывает порт доступа к откликам.
type Repository interface {
	// Create fails with ErrAlreadyApplied when the candidate already applied to the job.
	Create(ctx context.Context, a Application) error
	GetByID(ctx context.Context, id uuid.UUID) (Application, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID, limit, offset int) ([]Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	CountByJobAndStatus(ctx context.Context, jobID uuid.UUID, status Status) (int, error)
	// migration of references written by older storage generations
	ListLegacyReferences(ctx context.Context) ([]Application, error)
	// ReplaceResumeReference swaps old for new and fails with ErrReferenceChanged
	// when the stored value is no longer old.
	ReplaceResumeReference(ctx context.Context, id uuid.UUID, old, new string) error
}
