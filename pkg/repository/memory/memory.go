// Package memory keeps users, jobs and applications in process memory.
// It backs tests and DATABASE_URL=memory runs; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/artem13815/recruitment/pkg/application"
	"github.com/artem13815/recruitment/pkg/auth"
	"github.com/artem13815/recruitment/pkg/job"
)

// DB is shared by the three repositories so list views can join across them.
type DB struct {
	mu    sync.RWMutex
	users map[uuid.UUID]auth.User
	jobs  map[uuid.UUID]job.Job
	apps  map[uuid.UUID]application.Application
}

func New() *DB {
	return &DB{
		users: make(map[uuid.UUID]auth.User),
		jobs:  make(map[uuid.UUID]job.Job),
		apps:  make(map[uuid.UUID]application.Application),
	}
}

func (db *DB) Users() *UserRepository               { return &UserRepository{db: db} }
func (db *DB) Jobs() *JobRepository                 { return &JobRepository{db: db} }
func (db *DB) Applications() *ApplicationRepository { return &ApplicationRepository{db: db} }

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type UserRepository struct{ db *DB }

func (r *UserRepository) Create(_ context.Context, u auth.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return auth.ErrUserAlreadyExists
		}
	}
	r.db.users[u.ID] = u
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (auth.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (auth.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) ListByRole(_ context.Context, role auth.Role) ([]auth.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []auth.User{}
	for _, u := range r.db.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) SetApproved(_ context.Context, id uuid.UUID, approved bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.Approved = approved
	r.db.users[id] = u
	return nil
}

type JobRepository struct{ db *DB }

func (r *JobRepository) Create(_ context.Context, j job.Job) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	j.RequiredSkills = append([]string(nil), j.RequiredSkills...)
	r.db.jobs[j.ID] = j
	return nil
}

func (r *JobRepository) GetByID(_ context.Context, id uuid.UUID) (job.Job, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	j, ok := r.db.jobs[id]
	if !ok {
		return job.Job{}, job.ErrNotFound
	}
	return j, nil
}

func (r *JobRepository) list(keep func(job.Job) bool, limit, offset int) []job.Job {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []job.Job{}
	for _, j := range r.db.jobs {
		if keep(j) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return page(out, limit, offset)
}

func (r *JobRepository) ListOpen(_ context.Context, limit, offset int) ([]job.Job, error) {
	return r.list(func(j job.Job) bool { return j.IsOpen }, limit, offset), nil
}

func (r *JobRepository) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]job.Job, error) {
	return r.list(func(j job.Job) bool { return j.OwnerID == ownerID }, limit, offset), nil
}

func (r *JobRepository) ListAll(_ context.Context, limit, offset int) ([]job.Job, error) {
	return r.list(func(job.Job) bool { return true }, limit, offset), nil
}

func (r *JobRepository) SetOpen(_ context.Context, id uuid.UUID, open bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	j, ok := r.db.jobs[id]
	if !ok {
		return job.ErrNotFound
	}
	j.IsOpen = open
	r.db.jobs[id] = j
	return nil
}

type ApplicationRepository struct{ db *DB }

func (r *ApplicationRepository) Create(_ context.Context, a application.Application) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.apps {
		if existing.JobID == a.JobID && existing.CandidateID == a.CandidateID {
			return application.ErrAlreadyApplied
		}
	}
	a.JobTitle, a.CandidateName, a.CandidateEmail = "", "", ""
	r.db.apps[a.ID] = a
	return nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, id uuid.UUID) (application.Application, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	a, ok := r.db.apps[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	return a, nil
}

// list must be called with the read lock held.
func (r *ApplicationRepository) list(keep func(application.Application) bool, limit, offset int) []application.Application {
	out := []application.Application{}
	for _, a := range r.db.apps {
		if !keep(a) {
			continue
		}
		a.JobTitle = r.db.jobs[a.JobID].Title
		if u, ok := r.db.users[a.CandidateID]; ok {
			a.CandidateName, a.CandidateEmail = u.Username, u.Email
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return page(out, limit, offset)
}

func (r *ApplicationRepository) ListByCandidate(_ context.Context, candidateID uuid.UUID, limit, offset int) ([]application.Application, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.list(func(a application.Application) bool { return a.CandidateID == candidateID }, limit, offset), nil
}

func (r *ApplicationRepository) ListByJob(_ context.Context, jobID uuid.UUID, limit, offset int) ([]application.Application, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.list(func(a application.Application) bool { return a.JobID == jobID }, limit, offset), nil
}

func (r *ApplicationRepository) UpdateStatus(_ context.Context, id uuid.UUID, status application.Status) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.apps[id]
	if !ok {
		return application.ErrNotFound
	}
	a.Status = status
	r.db.apps[id] = a
	return nil
}

func (r *ApplicationRepository) CountByJobAndStatus(_ context.Context, jobID uuid.UUID, status application.Status) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	n := 0
	for _, a := range r.db.apps {
		if a.JobID == jobID && a.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *ApplicationRepository) ListLegacyReferences(_ context.Context) ([]application.Application, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.list(func(a application.Application) bool {
		ref, err := application.ParseReference(a.ResumeReference)
		return err == nil && ref.Kind == application.LegacyRemoteURL
	}, 0, 0), nil
}

func (r *ApplicationRepository) ReplaceResumeReference(_ context.Context, id uuid.UUID, old, new string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.apps[id]
	if !ok {
		return application.ErrNotFound
	}
	if a.ResumeReference != old {
		return application.ErrReferenceChanged
	}
	a.ResumeReference = new
	r.db.apps[id] = a
	return nil
}

// PutApplication stores a as is, bypassing the uniqueness check. Used to seed
// rows written by older storage generations.
func (r *ApplicationRepository) PutApplication(a application.Application) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.apps[a.ID] = a
}
