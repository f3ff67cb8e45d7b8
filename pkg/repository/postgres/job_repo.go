package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/recruitment/pkg/job"
)

// JobRepository хранит вакансии.
type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `id, owner_id, title, description, required_skills, experience, location, job_type, vacancies, is_open, created_at`

func (r *JobRepository) Create(ctx context.Context, j job.Job) error {
	skills := j.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO jobs (`+jobColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`, j.ID, j.OwnerID, j.Title, j.Description, skills, j.Experience, j.Location, j.JobType, j.Vacancies, j.IsOpen, j.CreatedAt)
	return err
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	j, err := scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, err
	}
	return j, nil
}

func (r *JobRepository) ListOpen(ctx context.Context, limit, offset int) ([]job.Job, error) {
	return r.list(ctx, `SELECT `+jobColumns+` FROM jobs WHERE is_open
ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *JobRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]job.Job, error) {
	return r.list(ctx, `SELECT `+jobColumns+` FROM jobs WHERE owner_id = $3
ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset, ownerID)
}

func (r *JobRepository) ListAll(ctx context.Context, limit, offset int) ([]job.Job, error) {
	return r.list(ctx, `SELECT `+jobColumns+` FROM jobs
ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *JobRepository) list(ctx context.Context, query string, limit, offset int, args ...any) ([]job.Job, error) {
	rows, err := r.pool.Query(ctx, query, append([]any{limit, offset}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []job.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *JobRepository) SetOpen(ctx context.Context, id uuid.UUID, open bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE jobs SET is_open = $2 WHERE id = $1`, id, open)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return job.ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (job.Job, error) {
	var j job.Job
	var created time.Time
	if err := row.Scan(&j.ID, &j.OwnerID, &j.Title, &j.Description, &j.RequiredSkills, &j.Experience,
		&j.Location, &j.JobType, &j.Vacancies, &j.IsOpen, &created); err != nil {
		return job.Job{}, err
	}
	j.CreatedAt = created.UTC()
	return j, nil
}
