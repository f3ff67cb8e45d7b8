package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/recruitment/api/http/presenter"
	"github.com/artem13815/recruitment/pkg/application"
	"github.com/artem13815/recruitment/pkg/security/jwt"
	"github.com/artem13815/recruitment/pkg/storage/files"
)

// ResumeField is the multipart field carrying the resume file.
const ResumeField = "resume"

type ApplicationHandler struct {
	uc       application.UseCase
	maxBytes int64
}

func NewApplicationHandler(uc application.UseCase, maxBytes int64) *ApplicationHandler {
	return &ApplicationHandler{uc: uc, maxBytes: maxBytes}
}

// Apply отправляет отклик с файлом резюме.
// @Summary Откликнуться на вакансию
// @Description Принимает PDF/DOC/DOCX до 5 МиБ в поле resume. Файл сохраняется до создания отклика и удаляется, если отклик создать не удалось. Слишком большой файл даёт 400 VALIDATION_ERROR, в том числе когда тело запроса превышает общий лимит сервера.
// @Tags    Отклики
// @Accept  multipart/form-data
// @Produce json
// @Param   jobId  path     string true "ID вакансии (UUID)"
// @Param   resume formData file   true "Файл резюме"
// @Security BearerAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /application/apply/{jobId} [post]
func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	user, ok := jwt.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return invalidParam(c, "jobId")
	}
	fh, err := c.FormFile(ResumeField)
	if err != nil || fh == nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "VALIDATION_ERROR", "resume file is required (pdf, doc or docx)")
	}
	if fh.Size > h.maxBytes {
		return presenter.Fail(c, files.ErrValidation(fmt.Sprintf("file too large: limit is %d bytes", h.maxBytes)))
	}
	file, err := fh.Open()
	if err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "VALIDATION_ERROR", "failed to open uploaded file")
	}
	defer file.Close()

	data, err := readAtMost(file, h.maxBytes)
	if err != nil {
		return presenter.Fail(c, err)
	}
	a, err := h.uc.Apply(c.UserContext(), user, application.ApplyInput{
		JobID:       jobID,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, fiber.Map{
		"message":     "application submitted",
		"application": a,
	})
}

// @Summary Мои отклики
// @Tags    Отклики
// @Produce json
// @Security BearerAuth
// @Success 200 {array} application.Application
// @Router  /application/my [get]
func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	user, ok := jwt.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	limit, offset := parseLimitOffset(c, defaultPageSize)
	apps, err := h.uc.ListMine(c.UserContext(), user, limit, offset)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, apps)
}

// @Summary Отклики на вакансию
// @Description Только HR, создавший вакансию.
// @Tags    Отклики
// @Produce json
// @Param   jobId path string true "ID вакансии (UUID)"
// @Security BearerAuth
// @Success 200 {array} application.Application
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /application/job/{jobId} [get]
func (h *ApplicationHandler) ListForJob(c *fiber.Ctx) error {
	user, ok := jwt.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return invalidParam(c, "jobId")
	}
	limit, offset := parseLimitOffset(c, defaultPageSize)
	apps, err := h.uc.ListForJob(c.UserContext(), user, jobID, limit, offset)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, apps)
}

type statusRequest struct {
	Status string `json:"status"`
}

// @Summary Изменить статус отклика
// @Description applied, shortlisted или rejected. Вакансия закрывается, когда число отобранных достигает vacancies.
// @Tags    Отклики
// @Accept  json
// @Produce json
// @Param   id    path string        true "ID отклика (UUID)"
// @Param   input body statusRequest true "Новый статус"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /application/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	user, ok := jwt.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "id")
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	res, err := h.uc.UpdateStatus(c.UserContext(), user, id, application.Status(req.Status))
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"application": res.Application,
		"jobClosed":   res.JobClosed,
	})
}

func readAtMost(f multipart.File, max int64) ([]byte, error) {
	limited := io.LimitReader(f, max+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(b)) > max {
		return nil, files.ErrValidation(fmt.Sprintf("file too large: limit is %d bytes", max))
	}
	return b, nil
}
