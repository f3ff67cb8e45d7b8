package presenter

import (
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/recruitment/pkg/application"
	"github.com/artem13815/recruitment/pkg/auth"
	"github.com/artem13815/recruitment/pkg/job"
	"github.com/artem13815/recruitment/pkg/resume"
	"github.com/artem13815/recruitment/pkg/storage/files"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

func ErrorCode(c *fiber.Ctx, status int, code, message string) error {
	return JSON(c, status, ErrorResponse{Message: message, Code: code})
}

type mapping struct {
	err    error
	status int
	code   string
}

var known = []mapping{
	{auth.ErrUserAlreadyExists, http.StatusConflict, "USER_EXISTS"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{auth.ErrPendingApproval, http.StatusForbidden, "PENDING_APPROVAL"},
	{auth.ErrInvalidRole, http.StatusBadRequest, "VALIDATION_ERROR"},
	{auth.ErrNotHR, http.StatusBadRequest, "VALIDATION_ERROR"},
	{auth.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{job.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{job.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{application.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{application.ErrAlreadyApplied, http.StatusConflict, "ALREADY_APPLIED"},
	{application.ErrJobClosed, http.StatusBadRequest, "JOB_CLOSED"},
	{application.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{resume.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{resume.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{resume.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{resume.ErrFileMissing, http.StatusNotFound, "RESUME_FILE_MISSING"},
	{resume.ErrUnsupportedPreview, http.StatusUnsupportedMediaType, "UNSUPPORTED_PREVIEW"},
	{resume.ErrNeedsMigration, http.StatusConflict, "RESUME_NEEDS_MIGRATION"},
}

// Fail writes the response for a use-case error. Unknown errors are logged and
// reported as a generic 500 so storage paths and driver messages stay internal.
func Fail(c *fiber.Ctx, err error) error {
	status, code, msg := Classify(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return ErrorCode(c, status, code, msg)
}

// Classify maps err to an HTTP status, a stable code and a client-safe message.
func Classify(err error) (status int, code, message string) {
	var (
		fileErr files.ErrValidation
		appErr  application.ErrValidation
		jobErr  job.ErrValidation
	)
	switch {
	case errors.As(err, &fileErr):
		return http.StatusBadRequest, "VALIDATION_ERROR", fileErr.Error()
	case errors.As(err, &appErr):
		return http.StatusBadRequest, "VALIDATION_ERROR", appErr.Error()
	case errors.As(err, &jobErr):
		return http.StatusBadRequest, "VALIDATION_ERROR", jobErr.Error()
	case errors.Is(err, resume.ErrStorage):
		return http.StatusInternalServerError, "STORAGE_ERROR", resume.ErrStorage.Error()
	}
	for _, m := range known {
		if errors.Is(err, m.err) {
			return m.status, m.code, m.err.Error()
		}
	}
	return http.StatusInternalServerError, "INTERNAL", "internal error"
}
