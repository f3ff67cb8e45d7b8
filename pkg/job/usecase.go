package job

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/recruitment/pkg/auth"
)

var ErrForbidden = errors.New("access denied")

// UseCase инкапсулирует приложение для работы с вакансиями.
type UseCase interface {
	Create(ctx context.Context, actor auth.User, j Job) (Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (Job, error)
	ListOpen(ctx context.Context, limit, offset int) ([]Job, error)
	ListMine(ctx context.Context, actor auth.User, limit, offset int) ([]Job, error)
	ListAll(ctx context.Context, actor auth.User, limit, offset int) ([]Job, error)
	Close(ctx context.Context, actor auth.User, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) UseCase { return &service{repo: repo} }

func (s *service) Create(ctx context.Context, actor auth.User, j Job) (Job, error) {
	if actor.Role != auth.RoleHR || !actor.Active() {
		return Job{}, ErrForbidden
	}
	j.Title = strings.TrimSpace(j.Title)
	j.Description = strings.TrimSpace(j.Description)
	j.Location = strings.TrimSpace(j.Location)
	j.JobType = strings.TrimSpace(j.JobType)
	j.RequiredSkills = cleanSkills(j.RequiredSkills)
	switch {
	case j.Title == "", j.Description == "", j.Location == "", j.JobType == "":
		return Job{}, ErrValidation("all fields are required")
	case len(j.RequiredSkills) == 0:
		return Job{}, ErrValidation("at least one required skill is needed")
	case j.Experience < 0:
		return Job{}, ErrValidation("experience must not be negative")
	}
	if j.Vacancies <= 0 {
		j.Vacancies = 1
	}
	j.ID = uuid.New()
	j.OwnerID = actor.ID
	j.IsOpen = true
	j.CreatedAt = time.Now().UTC()
	if err := s.repo.Create(ctx, j); err != nil {
		return Job{}, err
	}
	return j, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (Job, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListOpen(ctx context.Context, limit, offset int) ([]Job, error) {
	return s.repo.ListOpen(ctx, limit, offset)
}

func (s *service) ListMine(ctx context.Context, actor auth.User, limit, offset int) ([]Job, error) {
	if actor.Role != auth.RoleHR {
		return nil, ErrForbidden
	}
	return s.repo.ListByOwner(ctx, actor.ID, limit, offset)
}

func (s *service) ListAll(ctx context.Context, actor auth.User, limit, offset int) ([]Job, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.repo.ListAll(ctx, limit, offset)
}

// Close закрывает вакансию: владелец-HR или админ.
func (s *service) Close(ctx context.Context, actor auth.User, id uuid.UUID) error {
	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case actor.Role == auth.RoleAdmin:
	case actor.Role == auth.RoleHR && j.OwnerID == actor.ID:
	default:
		return ErrForbidden
	}
	return s.repo.SetOpen(ctx, id, false)
}

// ErrValidation простая ошибка валидации.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }
