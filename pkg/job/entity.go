package job

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("job not found")

// Job описывает вакансию, опубликованную HR.
type Job struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"createdBy"`
	Title          string    `json:"jobTitle"`
	Description    string    `json:"jobDescription"`
	RequiredSkills []string  `json:"requiredSkills"`
	Experience     int       `json:"experience"`
	Location       string    `json:"location"`
	JobType        string    `json:"jobType"`
	// Vacancies: сколько кандидатов нужно отобрать до автоматического закрытия.
	Vacancies int       `json:"vacancies"`
	IsOpen    bool      `json:"isOpen"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository описывает порт для работы с вакансиями.
type Repository interface {
	Create(ctx context.Context, j Job) error
	GetByID(ctx context.Context, id uuid.UUID) (Job, error)
	ListOpen(ctx context.Context, limit, offset int) ([]Job, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]Job, error)
	// Админ-доступ без фильтра владельца
	ListAll(ctx context.Context, limit, offset int) ([]Job, error)
	SetOpen(ctx context.Context, id uuid.UUID, open bool) error
}
