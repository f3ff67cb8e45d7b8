package application

import (
	"bytes"
	"context"
	"errors"
	"log"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/artem13815/recruitment/pkg/auth"
	"github.com/artem13815/recruitment/pkg/job"
	"github.com/artem13815/recruitment/pkg/storage/files"
)

// UseCase описывает сценарии работы с откликами.
type UseCase interface {
	// Apply stores the resume and records the application. Either both happen or neither.
	Apply(ctx context.Context, actor auth.User, in ApplyInput) (Application, error)
	Get(ctx context.Context, id uuid.UUID) (Application, error)
	ListMine(ctx context.Context, actor auth.User, limit, offset int) ([]Application, error)
	ListForJob(ctx context.Context, actor auth.User, jobID uuid.UUID, limit, offset int) ([]Application, error)
	UpdateStatus(ctx context.Context, actor auth.User, id uuid.UUID, status Status) (StatusChange, error)
}

type ApplyInput struct {
	JobID       uuid.UUID
	Filename    string
	ContentType string
	Data        []byte
}

type StatusChange struct {
	Application Application
	JobClosed   bool
}

type service struct {
	repo   Repository
	jobs   job.Repository
	store  files.Storage
	policy files.Policy
}

func NewService(repo Repository, jobs job.Repository, store files.Storage, policy files.Policy) UseCase {
	return &service{repo: repo, jobs: jobs, store: store, policy: policy}
}

func (s *service) Apply(ctx context.Context, actor auth.User, in ApplyInput) (Application, error) {
	if actor.Role != auth.RoleCandidate {
		return Application{}, ErrForbidden
	}
	filename := cleanFilename(in.Filename)
	if err := s.checkResume(filename, in.ContentType, in.Data); err != nil {
		return Application{}, err
	}
	j, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return Application{}, ErrJobClosed
		}
		return Application{}, err
	}
	if !j.IsOpen {
		return Application{}, ErrJobClosed
	}

	key, err := s.store.Save(ctx, actor.ID, filename, bytes.NewReader(in.Data))
	if err != nil {
		return Application{}, err
	}
	now := time.Now().UTC()
	a := Application{
		ID:              uuid.New(),
		JobID:           j.ID,
		CandidateID:     actor.ID,
		Status:          StatusApplied,
		ResumeReference: key,
		ResumeFilename:  filename,
		AppliedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		// no record may point at a missing file and no file may outlive a failed record
		if derr := s.store.Delete(context.WithoutCancel(ctx), key); derr != nil {
			log.Printf("application: orphaned resume %s: %v", key, derr)
		}
		return Application{}, err
	}
	a.JobTitle = j.Title
	return a, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Application, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListMine(ctx context.Context, actor auth.User, limit, offset int) ([]Application, error) {
	if actor.Role != auth.RoleCandidate {
		return nil, ErrForbidden
	}
	return s.repo.ListByCandidate(ctx, actor.ID, limit, offset)
}

func (s *service) ListForJob(ctx context.Context, actor auth.User, jobID uuid.UUID, limit, offset int) ([]Application, error) {
	if _, err := s.ownedJob(ctx, actor, jobID); err != nil {
		return nil, err
	}
	return s.repo.ListByJob(ctx, jobID, limit, offset)
}

func (s *service) UpdateStatus(ctx context.Context, actor auth.User, id uuid.UUID, status Status) (StatusChange, error) {
	if actor.Role != auth.RoleHR {
		return StatusChange{}, ErrForbidden
	}
	if !status.Valid() {
		return StatusChange{}, ErrValidation("invalid status")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return StatusChange{}, err
	}
	j, err := s.ownedJob(ctx, actor, a.JobID)
	if err != nil {
		return StatusChange{}, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return StatusChange{}, err
	}
	a.Status = status
	out := StatusChange{Application: a}

	// Auto-close job when shortlisted count reaches vacancies
	if status == StatusShortlisted && j.IsOpen {
		n, err := s.repo.CountByJobAndStatus(ctx, j.ID, StatusShortlisted)
		if err != nil {
			return out, err
		}
		if n >= j.Vacancies {
			if err := s.jobs.SetOpen(ctx, j.ID, false); err != nil {
				return out, err
			}
			out.JobClosed = true
		}
	}
	return out, nil
}

func (s *service) ownedJob(ctx context.Context, actor auth.User, jobID uuid.UUID) (job.Job, error) {
	if actor.Role != auth.RoleHR {
		return job.Job{}, ErrForbidden
	}
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return job.Job{}, err
	}
	if j.OwnerID != actor.ID {
		return job.Job{}, ErrForbidden
	}
	return j, nil
}

// sniffed lists the detected types accepted for each extension. Parents in the
// mimetype tree count too, so .docx matches a plain zip and .doc an OLE container.
var sniffed = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
}

// declared lists what browsers send in the part header besides a generic type.
var declared = map[string][]string{
	".pdf":  {"application/pdf", "application/x-pdf"},
	".doc":  {"application/msword"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

func (s *service) checkResume(filename, contentType string, data []byte) error {
	if err := s.policy.Check(filename, int64(len(data))); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !declaredMatches(ext, contentType) {
		return files.ErrValidation("declared content type does not match the file extension")
	}
	accepted, ok := sniffed[ext]
	if !ok {
		return nil
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		for _, want := range accepted {
			if m.Is(want) {
				return nil
			}
		}
	}
	return files.ErrValidation("file content does not match its extension")
}

func declaredMatches(ext, contentType string) bool {
	ct, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	ct = strings.TrimSpace(ct)
	if ct == "" || ct == "application/octet-stream" {
		return true
	}
	allowed, ok := declared[ext]
	if !ok {
		return true
	}
	for _, a := range allowed {
		if a == ct {
			return true
		}
	}
	return false
}

const maxFilenameLen = 255

// cleanFilename keeps the name the user picked, minus any client-side path.
func cleanFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	if len(name) > maxFilenameLen {
		name = strings.ToValidUTF8(name[:maxFilenameLen], "")
	}
	return name
}
