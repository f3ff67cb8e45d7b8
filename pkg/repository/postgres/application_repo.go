package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/recruitment/pkg/application"
)

// ApplicationRepository хранит отклики кандидатов.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// list views join the job title and candidate contact
const applicationSelect = `
SELECT a.id, a.job_id, a.candidate_id, a.status, a.resume_reference, a.resume_filename,
	a.applied_at, a.updated_at, COALESCE(j.title, ''), COALESCE(u.username, ''), COALESCE(u.email, '')
FROM applications a
LEFT JOIN jobs j ON j.id = a.job_id
LEFT JOIN users u ON u.id = a.candidate_id
`

func (r *ApplicationRepository) Create(ctx context.Context, a application.Application) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO applications (id, job_id, candidate_id, status, resume_reference, resume_filename, applied_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, a.ID, a.JobID, a.CandidateID, string(a.Status), a.ResumeReference, a.ResumeFilename, a.AppliedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return application.ErrAlreadyApplied
		}
		return err
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (application.Application, error) {
	a, err := scanApplication(r.pool.QueryRow(ctx, applicationSelect+`WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}
	return a, nil
}

func (r *ApplicationRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID, limit, offset int) ([]application.Application, error) {
	return r.list(ctx, applicationSelect+`WHERE a.candidate_id = $1
ORDER BY a.applied_at DESC LIMIT $2 OFFSET $3`, candidateID, limit, offset)
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]application.Application, error) {
	return r.list(ctx, applicationSelect+`WHERE a.job_id = $1
ORDER BY a.applied_at DESC LIMIT $2 OFFSET $3`, jobID, limit, offset)
}

func (r *ApplicationRepository) ListLegacyReferences(ctx context.Context) ([]application.Application, error) {
	return r.list(ctx, applicationSelect+`WHERE a.resume_reference ~* '^https?://'
ORDER BY a.applied_at`)
}

func (r *ApplicationRepository) list(ctx context.Context, query string, args ...any) ([]application.Application, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []application.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status application.Status) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1
`, id, string(status), time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) CountByJobAndStatus(ctx context.Context, jobID uuid.UUID, status application.Status) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM applications WHERE job_id = $1 AND status = $2
`, jobID, string(status)).Scan(&n)
	return n, err
}

func (r *ApplicationRepository) ReplaceResumeReference(ctx context.Context, id uuid.UUID, old, new string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE applications SET resume_reference = $3, updated_at = $4
WHERE id = $1 AND resume_reference = $2
`, id, old, new, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return application.ErrReferenceChanged
	}
	return nil
}

func scanApplication(row pgx.Row) (application.Application, error) {
	var a application.Application
	var status string
	var applied, updated time.Time
	if err := row.Scan(&a.ID, &a.JobID, &a.CandidateID, &status, &a.ResumeReference, &a.ResumeFilename,
		&applied, &updated, &a.JobTitle, &a.CandidateName, &a.CandidateEmail); err != nil {
		return application.Application{}, err
	}
	a.Status = application.Status(status)
	a.AppliedAt = applied.UTC()
	a.UpdatedAt = updated.UTC()
	return a, nil
}
