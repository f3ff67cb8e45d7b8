package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/recruitment/api/http/presenter"
	"github.com/artem13815/recruitment/pkg/job"
	"github.com/artem13815/recruitment/pkg/security/jwt"
)

type JobHandler struct {
	uc job.UseCase
}

func NewJobHandler(uc job.UseCase) *JobHandler { return &JobHandler{uc: uc} }

type createJobRequest struct {
	Title          string   `json:"jobTitle"`
	Description    string   `json:"jobDescription"`
	RequiredSkills []string `json:"requiredSkills"`
	Experience     int      `json:"experience"`
	Location       string   `json:"location"`
	JobType        string   `json:"jobType"`
	Vacancies      int      `json:"vacancies"`
}

// @Summary Создать вакансию
// @Description Доступно одобренным HR. Вакансия закрывается сама, когда отобрано vacancies кандидатов.
// @Tags        Вакансии
// @Accept      json
// @Produce     json
// @Param       input body createJobRequest true "Данные вакансии"
// @Security    BearerAuth
// @Success     201 {object} job.Job
// @Failure     400 {object} presenter.ErrorResponse
// @Failure     403 {object} presenter.ErrorResponse
// @Router      /jobs [post]
func (h *JobHandler) Create(c *fiber.Ctx) error {
	user, ok := jwt.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req createJobRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
	}
	j, err := h.uc.Create(c.UserContext(), user, job.Job{
		Title:          req.Title,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		Experience:     req.Experience,
		Location:       req.Location,
		JobType:        req.JobType,
		Vacancies:      req.Vacancies,
	})
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, j)
}

// @Summary Открытые вакансии
// @Tags    Вакансии
// @Produce json
// @Param   limit  query int false "page size (1..200)"
// @Param   offset query int false "offset"
// @Success 200 {array} job.Job
// @Router  /jobs [get]
func (h *JobHandler) ListOpen(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c, defaultPageSize)
	jobs, err := h.uc.ListOpen(c.UserContext(), limit, offset)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, jobs)
}

// @Summary Получить вакансию по ID
// @Tags    Вакансии
// @Produce json
// @Param   id path string true "ID вакансии (UUID)"
// @Success 200 {object} job.Job
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /jobs/{id} [get]
func (h *JobHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "id")
	}
	j, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, j)
}

// @Summary Вакансии текущего HR
// @Tags    Вакансии
// @Produce json
// @Security BearerAuth
// @Success 200 {array} job.Job
// @Router  /jobs/my [get]
func (h *JobHandler) ListMine(c *fiber.Ctx) error {
	user, ok := jwt.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	limit, offset := parseLimitOffset(c, defaultPageSize)
	jobs, err := h.uc.ListMine(c.UserContext(), user, limit, offset)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, jobs)
}

// @Summary Все вакансии (админ)
// @Tags    Вакансии
// @Produce json
// @Security BearerAuth
// @Success 200 {array} job.Job
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /jobs/all [get]
func (h *JobHandler) ListAll(c *fiber.Ctx) error {
	user, ok := jwt.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	limit, offset := parseLimitOffset(c, defaultPageSize)
	jobs, err := h.uc.ListAll(c.UserContext(), user, limit, offset)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, jobs)
}

// @Summary Закрыть вакансию
// @Tags    Вакансии
// @Produce json
// @Param   id path string true "ID вакансии (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /jobs/{id}/close [patch]
func (h *JobHandler) Close(c *fiber.Ctx) error {
	user, ok := jwt.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "id")
	}
	if err := h.uc.Close(c.UserContext(), user, id); err != nil {
		return presenter.Fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
